package ring

import (
	"testing"
	"time"
)

func TestPushPopOrdering(t *testing.T) {
	b := New(16)
	for i := 0; i < 10; i++ {
		if !b.TryPush(float32(i)) {
			t.Fatalf("push %d rejected on non-full buffer", i)
		}
	}
	for i := 0; i < 10; i++ {
		v, ok := b.TryPop()
		if !ok {
			t.Fatalf("pop %d failed with %d samples buffered", i, b.Len())
		}
		if v != float32(i) {
			t.Fatalf("pop %d: got %f, want %d", i, v, i)
		}
	}
	if _, ok := b.TryPop(); ok {
		t.Fatal("pop succeeded on empty buffer")
	}
}

func TestOverflowDropsNewest(t *testing.T) {
	b := New(1024)
	cap := b.Cap()

	for i := 0; i < cap; i++ {
		if !b.TryPush(float32(i)) {
			t.Fatalf("push %d rejected before capacity", i)
		}
	}

	// Extra pushes are silently rejected, occupancy stays capped.
	for i := 0; i < 1000; i++ {
		if b.TryPush(-1) {
			t.Fatalf("push %d accepted on full buffer", i)
		}
	}
	if b.Len() != cap {
		t.Fatalf("occupancy %d, want %d", b.Len(), cap)
	}

	// The oldest samples survive; nothing was overwritten.
	for i := 0; i < cap; i++ {
		v, ok := b.TryPop()
		if !ok || v != float32(i) {
			t.Fatalf("sample %d: got %f ok=%v", i, v, ok)
		}
	}
}

func TestCapacityRoundsUp(t *testing.T) {
	b := New(1000)
	if b.Cap() != 1024 {
		t.Fatalf("capacity %d, want 1024", b.Cap())
	}
	b = New(32768)
	if b.Cap() != 32768 {
		t.Fatalf("capacity %d, want 32768", b.Cap())
	}
}

func TestFullPushIsConstantTime(t *testing.T) {
	b := New(4096)
	for b.TryPush(0) {
	}

	// A rejected push must return immediately. 100k rejections well under
	// a second is a generous bound for a few atomic loads each.
	start := time.Now()
	for i := 0; i < 100000; i++ {
		b.TryPush(0)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("100k rejected pushes took %v", elapsed)
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	b := New(256)
	const total = 100000

	done := make(chan struct{})
	go func() {
		defer close(done)
		next := float32(0)
		for n := 0; n < total; {
			v, ok := b.TryPop()
			if !ok {
				time.Sleep(time.Microsecond)
				continue
			}
			if v != next {
				t.Errorf("out of order: got %f, want %f", v, next)
				return
			}
			next++
			n++
		}
	}()

	// Producer retries here so every value arrives; the consumer then
	// checks strict ordering with no duplicates.
	for i := 0; i < total; i++ {
		for !b.TryPush(float32(i)) {
			time.Sleep(time.Microsecond)
		}
	}
	<-done
}
