package ui

import (
	"io"
	"sync"
)

// pairBytes is one int16 stereo sample pair.
const pairBytes = 4

// AudioRingBuffer sits between the player goroutine, which writes one
// driver tick per Write, and oto, which pulls through Read. Read blocks
// while empty. Write never blocks: when the queue is full the oldest
// sample pairs are dropped so a stalled device cannot hold back the
// driver clock.
type AudioRingBuffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	head   int // next byte to read
	size   int // bytes queued
	closed bool
}

// NewAudioRingBuffer creates a ring holding capacity bytes. Capacity is
// rounded down to whole sample pairs.
func NewAudioRingBuffer(capacity int) *AudioRingBuffer {
	rb := &AudioRingBuffer{buf: make([]byte, capacity/pairBytes*pairBytes)}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write queues p, dropping the oldest pairs on overflow.
func (rb *AudioRingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	capacity := len(rb.buf)
	if rb.closed || len(p) == 0 || capacity == 0 {
		return
	}
	if len(p) > capacity {
		p = p[len(p)-capacity:]
	}

	if over := rb.size + len(p) - capacity; over > 0 {
		over = (over + pairBytes - 1) / pairBytes * pairBytes
		if over > rb.size {
			over = rb.size
		}
		rb.head = (rb.head + over) % capacity
		rb.size -= over
	}

	tail := (rb.head + rb.size) % capacity
	n := copy(rb.buf[tail:], p)
	copy(rb.buf, p[n:])
	rb.size += len(p)

	rb.cond.Signal()
}

// Read implements io.Reader. It returns io.EOF once closed and drained.
func (rb *AudioRingBuffer) Read(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.size == 0 {
		if rb.closed {
			return 0, io.EOF
		}
		rb.cond.Wait()
	}

	want := len(p)
	if want > rb.size {
		want = rb.size
	}
	n := copy(p[:want], rb.buf[rb.head:])
	copy(p[n:want], rb.buf)
	rb.head = (rb.head + want) % len(rb.buf)
	rb.size -= want

	return want, nil
}

// Buffered returns the number of bytes queued.
func (rb *AudioRingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size
}

// Clear drops everything queued.
func (rb *AudioRingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.head = 0
	rb.size = 0
}

// Close wakes any blocked Read and ignores later writes.
func (rb *AudioRingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast()
}
