package ui

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/user-none/mm5snd/player"
)

func TestRingBufferReadWrite(t *testing.T) {
	rb := NewAudioRingBuffer(16)
	rb.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	if rb.Buffered() != 8 {
		t.Fatalf("buffered %d, want 8", rb.Buffered())
	}

	p := make([]byte, 6)
	n, err := rb.Read(p)
	if err != nil || n != 6 || p[0] != 1 || p[5] != 6 {
		t.Fatalf("read %d %v % X", n, err, p[:n])
	}
}

func TestRingBufferWrapAround(t *testing.T) {
	rb := NewAudioRingBuffer(8)
	rb.Write([]byte{1, 2, 3, 4, 5, 6})
	rb.Read(make([]byte, 4))
	rb.Write([]byte{7, 8, 9, 10})

	p := make([]byte, 8)
	n, _ := rb.Read(p)
	want := []byte{5, 6, 7, 8, 9, 10}
	if n != len(want) {
		t.Fatalf("read %d bytes, want %d", n, len(want))
	}
	for i := range want {
		if p[i] != want[i] {
			t.Fatalf("got % X, want % X", p[:n], want)
		}
	}
}

func TestRingBufferOverflowDropsWholeFrames(t *testing.T) {
	rb := NewAudioRingBuffer(8)
	rb.Write([]byte{1, 2, 3, 4, 5, 6})
	// Two bytes over capacity drops the whole first frame.
	rb.Write([]byte{7, 8, 9, 10})
	if rb.Buffered() != 6 {
		t.Fatalf("buffered %d, want 6", rb.Buffered())
	}
	p := make([]byte, 8)
	n, _ := rb.Read(p)
	if n != 6 || p[0] != 5 || p[5] != 10 {
		t.Errorf("got % X", p[:n])
	}
}

func TestRingBufferClearAndClose(t *testing.T) {
	rb := NewAudioRingBuffer(8)
	rb.Write([]byte{1, 2, 3, 4})
	rb.Clear()
	if rb.Buffered() != 0 {
		t.Error("Clear left data behind")
	}

	done := make(chan error, 1)
	go func() {
		_, err := rb.Read(make([]byte, 4))
		done <- err
	}()
	rb.Close()
	select {
	case err := <-done:
		if !errors.Is(err, io.EOF) {
			t.Errorf("read after close = %v, want EOF", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock Read")
	}
	rb.Write([]byte{1})
	if rb.Buffered() != 0 {
		t.Error("writes after Close should be ignored")
	}
}

func TestRingBufferWholePairs(t *testing.T) {
	rb := NewAudioRingBuffer(10)
	rb.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	if rb.Buffered() != 8 {
		t.Errorf("buffered %d, want capacity rounded to 8", rb.Buffered())
	}
}

func TestFrameBytes(t *testing.T) {
	tests := []struct {
		rate, fps, want int
	}{
		{48000, 60, 3200},
		{48000, 50, 3840},
		{44100, 60, 2940},
	}
	for _, tt := range tests {
		if got := FrameBytes(tt.rate, tt.fps); got != tt.want {
			t.Errorf("FrameBytes(%d, %d) = %d, want %d", tt.rate, tt.fps, got, tt.want)
		}
	}
}

func TestAppendLE16(t *testing.T) {
	got := appendLE16(nil, []int16{0x1234, -2})
	want := []byte{0x34, 0x12, 0xFE, 0xFF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got % X, want % X", got, want)
		}
	}
}

func TestSharedInput(t *testing.T) {
	var si SharedInput
	si.Set(1<<3 | 1<<7)
	if got := si.Read(); got != 1<<3|1<<7 {
		t.Errorf("buttons = %b", got)
	}
}

func TestRequestQueue(t *testing.T) {
	var q RequestQueue
	q.Push(RequestSave)
	q.Push(RequestLoad)
	reqs := q.Drain()
	if len(reqs) != 2 || reqs[0] != RequestSave || reqs[1] != RequestLoad {
		t.Errorf("drained %v", reqs)
	}
	if len(q.Drain()) != 0 {
		t.Error("Drain should empty the queue")
	}
}

func TestSharedMeters(t *testing.T) {
	var sm SharedMeters
	sm.Update(player.Status{Track: 3, Fade: 0x40})
	st := sm.Read()
	if st.Track != 3 || st.Fade != 0x40 {
		t.Errorf("status = %+v", st)
	}
}

func TestSharedFramebuffer(t *testing.T) {
	sf := NewSharedFramebuffer(16)
	sf.Update([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 4, 2)
	pixels, stride, height := sf.Read()
	if stride != 4 || height != 2 || len(pixels) != 8 || pixels[7] != 8 {
		t.Errorf("read % X stride %d height %d", pixels, stride, height)
	}

	// Oversized frames are clipped to the buffer.
	sf.Update(make([]byte, 64), 8, 8)
	if pixels, _, _ := sf.Read(); len(pixels) != 16 {
		t.Errorf("clipped frame is %d bytes, want 16", len(pixels))
	}
}

func TestPlayerControlPauseResumeStop(t *testing.T) {
	pc := NewPlayerControl()
	frames := make(chan struct{}, 100)
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for pc.CheckPause() {
			frames <- struct{}{}
			time.Sleep(time.Millisecond)
		}
	}()

	<-frames
	pc.RequestPause()
	if !pc.IsPaused() {
		t.Fatal("RequestPause returned before the goroutine parked")
	}
	pc.RequestResume()
	if pc.IsPaused() {
		t.Error("still paused after resume")
	}

	pc.Stop()
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("Stop did not end the loop")
	}
}
