package pcm

import (
	"encoding/binary"
	"testing"
)

func TestSigned16RoundTrip(t *testing.T) {
	// Normalize then re-encode must land within one quantization unit
	// for every possible 16-bit input.
	for s := -32768; s <= 32767; s++ {
		got := EncodeSample(FromSigned16(int16(s)))
		diff := int(got) - s
		if diff < -1 || diff > 1 {
			t.Fatalf("sample %d round-tripped to %d (diff %d)", s, got, diff)
		}
	}
}

func TestUnsigned16Centering(t *testing.T) {
	cases := []struct {
		in   uint16
		want float32
	}{
		{0, -1.0},
		{65535, 1.0},
	}
	for _, c := range cases {
		got := FromUnsigned16(c.in)
		if got != c.want {
			t.Errorf("FromUnsigned16(%d) = %f, want %f", c.in, got, c.want)
		}
	}

	// The two samples straddling the midpoint must be symmetric around zero.
	lo := FromUnsigned16(32767)
	hi := FromUnsigned16(32768)
	if lo >= 0 || hi <= 0 {
		t.Fatalf("midpoint not centered: %f / %f", lo, hi)
	}
	if lo != -hi {
		t.Errorf("midpoint asymmetric: %f vs %f", lo, hi)
	}
}

func TestEncodeSampleClamps(t *testing.T) {
	if got := EncodeSample(1.5); got != 32767 {
		t.Errorf("over-range encoded to %d, want 32767", got)
	}
	if got := EncodeSample(-1.5); got != -32767 {
		t.Errorf("under-range encoded to %d, want -32767", got)
	}
	if got := EncodeSample(0.5); got != 16383 {
		t.Errorf("0.5 encoded to %d, want 16383", got)
	}
	if got := EncodeSample(-0.5); got != -16383 {
		t.Errorf("-0.5 encoded to %d, want -16383", got)
	}
	if got := EncodeSample(0); got != 0 {
		t.Errorf("silence encoded to %d, want 0", got)
	}
}

func TestEncodeS16LELayout(t *testing.T) {
	chunk := EncodeS16LE([]float32{0, 1, -1})
	if len(chunk) != 6 {
		t.Fatalf("expected 6 bytes, got %d", len(chunk))
	}
	want := []int16{0, 32767, -32767}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(chunk[i*2:]))
		if got != w {
			t.Errorf("sample %d: got %d, want %d", i, got, w)
		}
	}
}

func TestBytesPerSample(t *testing.T) {
	if Float32.BytesPerSample() != 4 {
		t.Error("f32 should be 4 bytes")
	}
	if Signed16.BytesPerSample() != 2 || Unsigned16.BytesPerSample() != 2 {
		t.Error("16-bit encodings should be 2 bytes")
	}
}
