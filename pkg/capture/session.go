package capture

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/asadnewbie/livecap/internal/ring"
	"github.com/asadnewbie/livecap/pkg/pcm"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateRunning
	stateStopping
)

// Session is one open, negotiated capture stream. It is created by
// Engine.Open, runs between Start and Stop, and cannot be restarted: a new
// run needs a fresh Session.
type Session struct {
	log  zerolog.Logger
	kind DeviceKind
	dev  Device
	cfg  StreamConfig
	buf  *ring.Buffer
	st   stream

	chunkSamples int
	tick         time.Duration

	mu       sync.Mutex
	state    sessionState
	consumed bool
	closed   bool
	done     chan struct{}

	stopFlag atomic.Bool
}

// Device returns the resolved capture device.
func (s *Session) Device() Device { return s.dev }

// Config returns the negotiated stream format.
func (s *Session) Config() StreamConfig { return s.cfg }

// SampleRate returns the negotiated sample rate in Hz.
func (s *Session) SampleRate() int { return s.cfg.SampleRate }

// Channels returns the negotiated interleaved channel count.
func (s *Session) Channels() int { return s.cfg.Channels }

// Start activates the device stream and spawns the delivery loop. It fails
// with ErrAlreadyStarted if the session is running or has already been
// consumed by a previous run.
func (s *Session) Start(deliver DeliveryFunc) error {
	if deliver == nil {
		return errors.New("capture: nil delivery callback")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateIdle || s.consumed || s.closed {
		return ErrAlreadyStarted
	}

	s.stopFlag.Store(false)
	if err := s.st.start(); err != nil {
		return fmt.Errorf("%w: device %q: %v", ErrStreamOpenFailed, s.dev.Name, err)
	}

	s.consumed = true
	s.state = stateRunning
	s.done = make(chan struct{})
	go s.deliveryLoop(deliver)

	s.log.Info().
		Stringer("kind", s.kind).
		Str("device", s.dev.Name).
		Msg("Capture started")
	return nil
}

// deliveryLoop is the single consumer of the transfer ring and the single
// caller of the delivery callback. Each tick drains at most
// chunkSamples×channels samples, encodes them and hands the chunk off; the
// callback may block here without stalling the audio driver.
func (s *Session) deliveryLoop(deliver DeliveryFunc) {
	defer close(s.done)

	maxSamples := s.chunkSamples * s.cfg.Channels
	scratch := make([]float32, 0, maxSamples)

	for !s.stopFlag.Load() {
		scratch = scratch[:0]
		for len(scratch) < maxSamples {
			v, ok := s.buf.TryPop()
			if !ok {
				break
			}
			scratch = append(scratch, v)
		}

		if len(scratch) > 0 {
			deliver(Chunk(pcm.EncodeS16LE(scratch)))
		}

		time.Sleep(s.tick)
	}
}

// Stop signals the delivery loop, waits for it to exit and tears down the
// device stream. It is idempotent; extra calls are no-ops. Stop takes effect
// within one tick plus any in-flight delivery callback, so it must not be
// called from the delivery callback itself (the join would deadlock).
//
// Calling Stop on a session that was opened but never started releases the
// stream handle; the session can then no longer be started.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != stateRunning {
		s.teardownLocked()
		s.mu.Unlock()
		return
	}
	s.state = stateStopping
	done := s.done
	s.mu.Unlock()

	s.stopFlag.Store(true)
	<-done

	if err := s.st.stop(); err != nil {
		s.log.Error().Err(err).Str("device", s.dev.Name).Msg("Stream stop failed")
	}

	s.mu.Lock()
	s.teardownLocked()
	s.state = stateIdle
	s.mu.Unlock()

	s.log.Info().Str("device", s.dev.Name).Msg("Capture stopped")
}

func (s *Session) teardownLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.st.close()
}
