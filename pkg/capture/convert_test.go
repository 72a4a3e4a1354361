package capture

import (
	"encoding/binary"
	"testing"

	"github.com/asadnewbie/livecap/internal/ring"
	"github.com/asadnewbie/livecap/pkg/pcm"
)

func drain(t *testing.T, buf *ring.Buffer) []float32 {
	t.Helper()
	var out []float32
	for {
		v, ok := buf.TryPop()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestPushFuncFloat32(t *testing.T) {
	buf := ring.New(64)
	push, err := pushFunc(pcm.Float32, buf)
	if err != nil {
		t.Fatalf("pushFunc: %v", err)
	}

	push(f32Bytes([]float32{0.25, -0.75, 1.0}))
	got := drain(t, buf)
	want := []float32{0.25, -0.75, 1.0}
	if len(got) != len(want) {
		t.Fatalf("pushed %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestPushFuncSigned16(t *testing.T) {
	buf := ring.New(64)
	push, err := pushFunc(pcm.Signed16, buf)
	if err != nil {
		t.Fatalf("pushFunc: %v", err)
	}

	raw := make([]byte, 0, 6)
	for _, s := range []int16{32767, -32767, 0} {
		raw = binary.LittleEndian.AppendUint16(raw, uint16(s))
	}
	push(raw)

	got := drain(t, buf)
	want := []float32{1.0, -1.0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestPushFuncUnsigned16(t *testing.T) {
	buf := ring.New(64)
	push, err := pushFunc(pcm.Unsigned16, buf)
	if err != nil {
		t.Fatalf("pushFunc: %v", err)
	}

	raw := make([]byte, 0, 4)
	raw = binary.LittleEndian.AppendUint16(raw, 0)
	raw = binary.LittleEndian.AppendUint16(raw, 65535)
	push(raw)

	got := drain(t, buf)
	if got[0] != -1.0 || got[1] != 1.0 {
		t.Fatalf("unsigned endpoints mapped to %f/%f, want -1/1", got[0], got[1])
	}
}

func TestPushFuncIgnoresTrailingBytes(t *testing.T) {
	buf := ring.New(64)
	push, err := pushFunc(pcm.Signed16, buf)
	if err != nil {
		t.Fatalf("pushFunc: %v", err)
	}

	// Two whole samples plus one stray byte.
	push([]byte{0x01, 0x00, 0x02, 0x00, 0xff})
	if got := drain(t, buf); len(got) != 2 {
		t.Fatalf("pushed %d samples from a ragged block, want 2", len(got))
	}
}

func TestPushFuncDropsOnFullBuffer(t *testing.T) {
	buf := ring.New(4)
	push, err := pushFunc(pcm.Float32, buf)
	if err != nil {
		t.Fatalf("pushFunc: %v", err)
	}

	push(f32Bytes(make([]float32, 100)))
	if buf.Len() != buf.Cap() {
		t.Fatalf("buffer holds %d samples, want capped at %d", buf.Len(), buf.Cap())
	}
}

func TestPushFuncRejectsUnknownEncoding(t *testing.T) {
	if _, err := pushFunc(pcm.Encoding(99), ring.New(4)); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}
