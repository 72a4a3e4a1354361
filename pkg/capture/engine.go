package capture

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/asadnewbie/livecap/internal/ring"
)

// backend abstracts the OS audio subsystem: enumeration, native-format
// queries and stream creation. The production implementation is miniaudio
// (malgo.go); tests substitute a fake.
type backend interface {
	devices(kind DeviceKind) ([]Device, error)
	nativeConfig(kind DeviceKind, dev Device) (StreamConfig, error)
	openStream(kind DeviceKind, dev Device, cfg StreamConfig, onData func([]byte)) (stream, error)
	close() error
}

// stream is one open device stream. start may be called at most once.
type stream interface {
	start() error
	stop() error
	close()
}

// Engine owns the audio backend context and opens capture sessions.
type Engine struct {
	be  backend
	log zerolog.Logger
}

// NewEngine initializes the audio backend. Close must be called after all
// sessions opened through the engine have stopped.
func NewEngine(log zerolog.Logger) (*Engine, error) {
	be, err := newMalgoBackend(log)
	if err != nil {
		return nil, err
	}
	return &Engine{be: be, log: log}, nil
}

// Close releases the backend context.
func (e *Engine) Close() error {
	return e.be.close()
}

// ListDevices enumerates capture-capable devices of the given kind. It never
// fails: enumeration errors are logged and an empty list returned.
func (e *Engine) ListDevices(kind DeviceKind) []Device {
	devs, err := e.be.devices(kind)
	if err != nil {
		e.log.Error().Err(err).Stringer("kind", kind).Msg("Device enumeration failed")
		return nil
	}
	return devs
}

// Open resolves a device, negotiates its native format and prepares a
// Session. An empty deviceID selects the platform default. The device stream
// is created but not started; call Session.Start to begin delivery.
func (e *Engine) Open(kind DeviceKind, deviceID string, opts ...Option) (*Session, error) {
	dev, err := e.resolve(kind, deviceID)
	if err != nil {
		return nil, err
	}

	cfg, err := e.negotiate(kind, dev)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	buf := ring.New(o.bufferCapacity)
	push, err := pushFunc(cfg.Encoding, buf)
	if err != nil {
		return nil, err
	}

	st, err := e.be.openStream(kind, dev, cfg, push)
	if err != nil {
		return nil, fmt.Errorf("%w: device %q: %v", ErrStreamOpenFailed, dev.Name, err)
	}

	e.log.Info().
		Stringer("kind", kind).
		Str("device", dev.Name).
		Int("sampleRate", cfg.SampleRate).
		Int("channels", cfg.Channels).
		Stringer("encoding", cfg.Encoding).
		Msg("Capture session opened")

	return &Session{
		log:          e.log,
		kind:         kind,
		dev:          dev,
		cfg:          cfg,
		buf:          buf,
		st:           st,
		chunkSamples: o.chunkSamples,
		tick:         o.tick,
	}, nil
}

// resolve locates a device by exact name match, or the platform default when
// no identifier is given.
func (e *Engine) resolve(kind DeviceKind, deviceID string) (Device, error) {
	devs, err := e.be.devices(kind)
	if err != nil {
		return Device{}, fmt.Errorf("enumerate %s devices: %w", kind, err)
	}

	if deviceID == "" {
		for _, d := range devs {
			if d.Default {
				return d, nil
			}
		}
		if len(devs) > 0 {
			return devs[0], nil
		}
		return Device{}, ErrNoDefaultDevice
	}

	for _, d := range devs {
		if d.Name == deviceID {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, deviceID)
}

// negotiate fixes the session format from the device's native configuration.
// This is a one-shot decision; anything outside the supported encodings
// fails with ErrUnsupportedFormat.
func (e *Engine) negotiate(kind DeviceKind, dev Device) (StreamConfig, error) {
	cfg, err := e.be.nativeConfig(kind, dev)
	if err != nil {
		return StreamConfig{}, err
	}
	e.log.Debug().
		Str("device", dev.Name).
		Int("sampleRate", cfg.SampleRate).
		Int("channels", cfg.Channels).
		Stringer("encoding", cfg.Encoding).
		Msg("Negotiated stream format")
	return cfg, nil
}
