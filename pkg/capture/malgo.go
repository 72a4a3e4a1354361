package capture

import (
	"fmt"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"

	"github.com/asadnewbie/livecap/pkg/pcm"
)

// malgoBackend implements backend on top of miniaudio. One backend context
// is shared by enumeration and every stream the engine opens.
type malgoBackend struct {
	ctx *malgo.AllocatedContext
	log zerolog.Logger
}

func newMalgoBackend(log zerolog.Logger) (*malgoBackend, error) {
	// Driver-level runtime diagnostics (including stream errors after
	// start) arrive through this log proc; they are not surfaced as typed
	// errors, so callers should watch chunk liveness instead.
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Debug().Str("source", "miniaudio").Msg(strings.TrimSpace(message))
	})
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	return &malgoBackend{ctx: ctx, log: log}, nil
}

func (b *malgoBackend) close() error {
	if b.ctx == nil {
		return nil
	}
	err := b.ctx.Uninit()
	b.ctx.Free()
	b.ctx = nil
	return err
}

// enumType maps a capture kind to the device class enumerated for it.
// Loopback captures what a playback device is rendering, so its candidates
// are the playback devices.
func enumType(kind DeviceKind) malgo.DeviceType {
	if kind == KindLoopback {
		return malgo.Playback
	}
	return malgo.Capture
}

func (b *malgoBackend) devices(kind DeviceKind) ([]Device, error) {
	infos, err := b.ctx.Devices(enumType(kind))
	if err != nil {
		return nil, fmt.Errorf("enumerate %s devices: %w", kind, err)
	}
	devs := make([]Device, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		devs = append(devs, Device{
			ID:      name,
			Name:    name,
			Default: info.IsDefault != 0,
		})
	}
	return devs, nil
}

// lookupID re-enumerates and returns the raw device ID for an exact name
// match. Device names are the only stable identity across the public API.
func (b *malgoBackend) lookupID(kind DeviceKind, dev Device) (malgo.DeviceID, error) {
	infos, err := b.ctx.Devices(enumType(kind))
	if err != nil {
		return malgo.DeviceID{}, fmt.Errorf("enumerate %s devices: %w", kind, err)
	}
	for _, info := range infos {
		if info.Name() == dev.Name {
			return info.ID, nil
		}
	}
	return malgo.DeviceID{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, dev.Name)
}

func (b *malgoBackend) nativeConfig(kind DeviceKind, dev Device) (StreamConfig, error) {
	id, err := b.lookupID(kind, dev)
	if err != nil {
		return StreamConfig{}, err
	}

	info, err := b.ctx.DeviceInfo(enumType(kind), id, malgo.Shared)
	if err != nil {
		return StreamConfig{}, fmt.Errorf("query device %q: %w", dev.Name, err)
	}

	if info.FormatCount == 0 {
		// Some backends report no native formats in shared mode; the OS
		// mixer converts to whatever we ask for. Assume the shared-mode
		// default rather than failing a usable device.
		cfg := StreamConfig{SampleRate: 48000, Channels: 1, Encoding: pcm.Float32}
		if kind == KindLoopback {
			cfg.Channels = 2
		}
		b.log.Warn().Str("device", dev.Name).Msg("Device reports no native formats, assuming f32@48000")
		return cfg, nil
	}

	f := info.Formats[0]
	enc, err := encodingFor(malgo.FormatType(f.Format))
	if err != nil {
		return StreamConfig{}, fmt.Errorf("device %q: %w", dev.Name, err)
	}

	cfg := StreamConfig{
		SampleRate: int(f.SampleRate),
		Channels:   int(f.Channels),
		Encoding:   enc,
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 48000
	}
	if cfg.Channels == 0 {
		cfg.Channels = 1
	}
	return cfg, nil
}

func (b *malgoBackend) openStream(kind DeviceKind, dev Device, cfg StreamConfig, onData func([]byte)) (stream, error) {
	id, err := b.lookupID(kind, dev)
	if err != nil {
		return nil, err
	}

	devType := malgo.Capture
	if kind == KindLoopback {
		devType = malgo.Loopback
	}

	devConfig := malgo.DefaultDeviceConfig(devType)
	devConfig.SampleRate = uint32(cfg.SampleRate)
	devConfig.Capture.Format = malgoFormat(cfg.Encoding)
	devConfig.Capture.Channels = uint32(cfg.Channels)
	// For loopback, miniaudio takes the playback device's ID on the
	// capture side of the config.
	devConfig.Capture.DeviceID = id.Pointer()
	devConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			if len(input) == 0 {
				return
			}
			onData(input)
		},
		Stop: func() {
			b.log.Debug().Str("device", dev.Name).Msg("Device stream stopped")
		},
	}

	device, err := malgo.InitDevice(b.ctx.Context, devConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("init %s device %q: %w", kind, dev.Name, err)
	}
	return &malgoStream{device: device}, nil
}

type malgoStream struct {
	device *malgo.Device
}

func (s *malgoStream) start() error { return s.device.Start() }
func (s *malgoStream) stop() error  { return s.device.Stop() }
func (s *malgoStream) close()       { s.device.Uninit() }

// encodingFor maps a miniaudio format onto the closed supported set.
// miniaudio has no unsigned 16-bit format, so Unsigned16 never negotiates
// through this backend; it exists for the format contract and other
// backends.
func encodingFor(f malgo.FormatType) (pcm.Encoding, error) {
	switch f {
	case malgo.FormatF32:
		return pcm.Float32, nil
	case malgo.FormatS16:
		return pcm.Signed16, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, formatName(f))
	}
}

func malgoFormat(enc pcm.Encoding) malgo.FormatType {
	if enc == pcm.Float32 {
		return malgo.FormatF32
	}
	return malgo.FormatS16
}

func formatName(f malgo.FormatType) string {
	switch f {
	case malgo.FormatUnknown:
		return "unknown"
	case malgo.FormatU8:
		return "u8"
	case malgo.FormatS16:
		return "s16"
	case malgo.FormatS24:
		return "s24"
	case malgo.FormatS32:
		return "s32"
	case malgo.FormatF32:
		return "f32"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}
