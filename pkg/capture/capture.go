// Package capture records live audio from hardware input or loopback-output
// devices and delivers it as signed 16-bit little-endian PCM chunks.
//
// A Session bridges two scheduling domains: the audio driver's data callback,
// which normalizes samples and pushes them into a non-blocking ring, and a
// delivery goroutine that drains the ring on a fixed tick and hands encoded
// chunks to the caller. The delivery callback may block freely; the driver
// callback never does.
package capture

import (
	"errors"
	"time"

	"github.com/asadnewbie/livecap/pkg/pcm"
)

// DeviceKind selects which side of the audio stack to capture from.
type DeviceKind int

const (
	// KindInput captures from a microphone or other hardware input.
	KindInput DeviceKind = iota
	// KindLoopback captures what the system is playing on an output device.
	KindLoopback
)

func (k DeviceKind) String() string {
	if k == KindLoopback {
		return "loopback"
	}
	return "input"
}

// Device describes a capture-capable device. ID is the device name and is
// assumed stable for the duration of a session, not across re-enumeration.
type Device struct {
	ID      string
	Name    string
	Default bool
}

// StreamConfig is the format negotiated with a device. It is fixed once per
// session and never renegotiated.
type StreamConfig struct {
	SampleRate int
	Channels   int
	Encoding   pcm.Encoding
}

// Chunk is a block of interleaved signed 16-bit little-endian PCM produced
// by one delivery tick. It is freshly allocated per tick; the callback may
// retain it.
type Chunk []byte

// DeliveryFunc receives chunks on the delivery goroutine. It may block
// without affecting the audio driver.
type DeliveryFunc func(Chunk)

var (
	ErrDeviceNotFound    = errors.New("capture device not found")
	ErrNoDefaultDevice   = errors.New("no default capture device")
	ErrUnsupportedFormat = errors.New("unsupported sample format")
	ErrStreamOpenFailed  = errors.New("audio stream open failed")
	ErrAlreadyStarted    = errors.New("capture session already started")
)

const (
	// DefaultBufferCapacity is the transfer ring size in samples.
	DefaultBufferCapacity = 32768
	// DefaultChunkSamples bounds one chunk to 100ms of 48kHz audio per channel.
	DefaultChunkSamples = 4800
	// DefaultTickInterval is the delivery loop cadence.
	DefaultTickInterval = 10 * time.Millisecond
)

type sessionOptions struct {
	bufferCapacity int
	chunkSamples   int
	tick           time.Duration
}

// Option tunes a Session at open time.
type Option func(*sessionOptions)

// WithBufferCapacity sets the transfer ring capacity in samples. Values are
// rounded up to a power of two; non-positive values keep the default.
func WithBufferCapacity(samples int) Option {
	return func(o *sessionOptions) {
		if samples > 0 {
			o.bufferCapacity = samples
		}
	}
}

// WithChunkSamples caps the per-channel samples drained into one chunk.
func WithChunkSamples(samples int) Option {
	return func(o *sessionOptions) {
		if samples > 0 {
			o.chunkSamples = samples
		}
	}
}

// WithTickInterval sets the delivery loop sleep between ticks.
func WithTickInterval(d time.Duration) Option {
	return func(o *sessionOptions) {
		if d > 0 {
			o.tick = d
		}
	}
}

func defaultOptions() sessionOptions {
	return sessionOptions{
		bufferCapacity: DefaultBufferCapacity,
		chunkSamples:   DefaultChunkSamples,
		tick:           DefaultTickInterval,
	}
}
