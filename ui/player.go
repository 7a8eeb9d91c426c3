package ui

import (
	"sync"
	"time"

	"github.com/user-none/mm5snd/player"
)

// SharedInput holds the button bitmask written by the ebiten thread and
// read by the player goroutine.
type SharedInput struct {
	mu      sync.Mutex
	buttons uint32
}

// Set replaces the button state.
func (si *SharedInput) Set(buttons uint32) {
	si.mu.Lock()
	si.buttons = buttons
	si.mu.Unlock()
}

// Read returns the current button state.
func (si *SharedInput) Read() uint32 {
	si.mu.Lock()
	b := si.buttons
	si.mu.Unlock()
	return b
}

// Request is a one-shot action the ebiten thread asks the player
// goroutine to perform between frames.
type Request int

const (
	RequestSave Request = iota
	RequestLoad
)

// RequestQueue carries requests to the player goroutine in order.
type RequestQueue struct {
	mu      sync.Mutex
	pending []Request
}

// Push queues a request.
func (q *RequestQueue) Push(r Request) {
	q.mu.Lock()
	q.pending = append(q.pending, r)
	q.mu.Unlock()
}

// Drain returns the queued requests and empties the queue.
func (q *RequestQueue) Drain() []Request {
	q.mu.Lock()
	reqs := q.pending
	q.pending = nil
	q.mu.Unlock()
	return reqs
}

// SharedMeters holds the latest playback status written by the player
// goroutine and read by ebiten's Draw().
type SharedMeters struct {
	mu sync.Mutex
	st player.Status
}

// Update replaces the snapshot.
func (sm *SharedMeters) Update(st player.Status) {
	sm.mu.Lock()
	sm.st = st
	sm.mu.Unlock()
}

// Read returns a copy of the snapshot.
func (sm *SharedMeters) Read() player.Status {
	sm.mu.Lock()
	st := sm.st
	sm.mu.Unlock()
	return st
}

// SharedFramebuffer holds the meter view rendered by the player
// goroutine. Draw reads a private copy so the next frame can be written
// while it is on screen.
type SharedFramebuffer struct {
	mu           sync.Mutex
	writePixels  []byte
	readPixels   []byte
	stride       int
	activeHeight int
}

// NewSharedFramebuffer creates a framebuffer holding up to size bytes.
func NewSharedFramebuffer(size int) *SharedFramebuffer {
	return &SharedFramebuffer{
		writePixels: make([]byte, size),
		readPixels:  make([]byte, size),
	}
}

// Update copies a rendered frame.
func (sf *SharedFramebuffer) Update(pixels []byte, stride, activeHeight int) {
	sf.mu.Lock()
	n := min(stride*activeHeight, len(sf.writePixels), len(pixels))
	copy(sf.writePixels[:n], pixels[:n])
	sf.stride = stride
	sf.activeHeight = activeHeight
	sf.mu.Unlock()
}

// Read returns a snapshot of the last frame.
func (sf *SharedFramebuffer) Read() (pixels []byte, stride, activeHeight int) {
	sf.mu.Lock()
	stride = sf.stride
	activeHeight = sf.activeHeight
	n := min(stride*activeHeight, len(sf.writePixels))
	copy(sf.readPixels[:n], sf.writePixels[:n])
	pixels = sf.readPixels[:n]
	sf.mu.Unlock()
	return
}

// PlayerControl manages pause/resume/stop coordination between the
// ebiten thread and the player goroutine. Pausing here freezes the
// driver clock entirely, unlike the driver's own pause command which
// keeps sound effects running.
type PlayerControl struct {
	mu       sync.Mutex
	pauseReq bool
	paused   bool
	running  bool
	stopReq  bool
	ackCh    chan struct{}
}

// NewPlayerControl creates a control in the running state.
func NewPlayerControl() *PlayerControl {
	return &PlayerControl{
		running: true,
		ackCh:   make(chan struct{}, 1),
	}
}

// RequestPause asks the player goroutine to pause and blocks until it
// acknowledges.
func (pc *PlayerControl) RequestPause() {
	pc.mu.Lock()
	if pc.paused || pc.pauseReq {
		pc.mu.Unlock()
		return
	}
	pc.pauseReq = true
	pc.mu.Unlock()

	<-pc.ackCh
}

// RequestResume lets the player goroutine continue.
func (pc *PlayerControl) RequestResume() {
	pc.mu.Lock()
	pc.pauseReq = false
	pc.paused = false
	pc.mu.Unlock()
}

// CheckPause is called by the player goroutine between frames. It
// blocks while paused and returns false once the goroutine should exit.
func (pc *PlayerControl) CheckPause() bool {
	pc.mu.Lock()
	if !pc.running || pc.stopReq {
		pc.mu.Unlock()
		return false
	}
	if !pc.pauseReq {
		pc.mu.Unlock()
		return true
	}

	pc.paused = true
	pc.mu.Unlock()

	select {
	case pc.ackCh <- struct{}{}:
	default:
	}

	for {
		pc.mu.Lock()
		if !pc.running || pc.stopReq {
			pc.mu.Unlock()
			return false
		}
		if !pc.pauseReq {
			pc.paused = false
			pc.mu.Unlock()
			return true
		}
		pc.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
}

// Stop signals the player goroutine to exit.
func (pc *PlayerControl) Stop() {
	pc.mu.Lock()
	pc.running = false
	pc.stopReq = true
	pc.pauseReq = false
	pc.mu.Unlock()
}

// IsPaused reports whether the player goroutine is parked.
func (pc *PlayerControl) IsPaused() bool {
	pc.mu.Lock()
	p := pc.paused
	pc.mu.Unlock()
	return p
}
