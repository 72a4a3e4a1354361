// Package pcm converts between hardware sample encodings, the canonical
// float32 representation and signed 16-bit little-endian PCM.
package pcm

import (
	"encoding/binary"
)

// Encoding identifies the sample encoding a capture device delivers.
type Encoding uint8

const (
	Float32 Encoding = iota
	Signed16
	Unsigned16
)

func (e Encoding) String() string {
	switch e {
	case Float32:
		return "f32"
	case Signed16:
		return "s16"
	case Unsigned16:
		return "u16"
	default:
		return "unknown"
	}
}

// BytesPerSample returns the width of one sample in this encoding.
func (e Encoding) BytesPerSample() int {
	if e == Float32 {
		return 4
	}
	return 2
}

// FromFloat32 maps a hardware float sample to canonical range. Hardware
// floats are assumed to already be in [-1, 1]; no clamping is applied here.
func FromFloat32(v float32) float32 { return v }

// FromSigned16 maps a signed 16-bit sample to canonical range.
func FromSigned16(s int16) float32 { return float32(s) / 32767.0 }

// FromUnsigned16 maps an unsigned 16-bit sample onto the signed centered
// range. The midpoint constant matches the 65535/2 center exactly so the
// transform is bit-for-bit reproducible.
func FromUnsigned16(u uint16) float32 {
	return (float32(u) - 32767.5) / 32767.5
}

// EncodeSample quantizes one canonical sample to signed 16-bit PCM.
// The input is clamped to [-1, 1]; quantization truncates toward zero,
// so 0.5 encodes to 16383 and -0.5 to -16383.
func EncodeSample(v float32) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

// AppendS16LE appends the little-endian PCM encoding of samples to dst
// and returns the extended slice.
func AppendS16LE(dst []byte, samples []float32) []byte {
	for _, v := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(EncodeSample(v)))
	}
	return dst
}

// EncodeS16LE encodes canonical samples as signed 16-bit little-endian PCM.
func EncodeS16LE(samples []float32) []byte {
	return AppendS16LE(make([]byte, 0, len(samples)*2), samples)
}
