package apu

import "fmt"

// Write is one recorded register write.
type Write struct {
	Addr  uint16
	Value uint8
}

func (w Write) String() string {
	return fmt.Sprintf("WRITE(%04X,%02X)", w.Addr, w.Value)
}

// Recorder accumulates register writes in order.
type Recorder struct {
	writes []Write
}

// Write appends a register write.
func (r *Recorder) Write(addr uint16, value uint8) {
	r.writes = append(r.writes, Write{addr, value})
}

// Take returns the pending writes and starts a new batch.
func (r *Recorder) Take() []Write {
	w := r.writes
	r.writes = nil
	return w
}
