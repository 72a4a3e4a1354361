// Package ring provides a fixed-capacity single-producer/single-consumer
// queue of float32 samples. The producer side is called from the audio
// driver's data callback and must never block, lock or allocate; the
// consumer side is the delivery loop. Both ends are wait-free.
package ring

import "sync/atomic"

// Buffer is an SPSC ring. Exactly one goroutine may call TryPush and
// exactly one may call TryPop after construction.
type Buffer struct {
	buf  []float32
	mask uint64

	// head is advanced only by the consumer, tail only by the producer.
	head atomic.Uint64
	tail atomic.Uint64
}

// New creates a Buffer holding at least capacity samples. Capacity is
// rounded up to the next power of two; it must be positive.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic("ring: capacity must be positive")
	}
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &Buffer{
		buf:  make([]float32, n),
		mask: uint64(n - 1),
	}
}

// TryPush inserts v unless the buffer is full. On full the sample is
// discarded and false is returned; the call never blocks or allocates.
func (b *Buffer) TryPush(v float32) bool {
	t := b.tail.Load()
	if t-b.head.Load() >= uint64(len(b.buf)) {
		return false
	}
	b.buf[t&b.mask] = v
	b.tail.Store(t + 1)
	return true
}

// TryPop removes and returns the oldest sample, or ok=false when empty.
func (b *Buffer) TryPop() (v float32, ok bool) {
	h := b.head.Load()
	if h == b.tail.Load() {
		return 0, false
	}
	v = b.buf[h&b.mask]
	b.head.Store(h + 1)
	return v, true
}

// Len reports the number of buffered samples. It is approximate when
// called concurrently with the other end.
func (b *Buffer) Len() int {
	return int(b.tail.Load() - b.head.Load())
}

// Cap reports the fixed capacity in samples.
func (b *Buffer) Cap() int {
	return len(b.buf)
}
