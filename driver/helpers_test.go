package driver

import (
	"fmt"
	"testing"
)

// testLayout places the tables low in the bank so tests can lay out
// streams above them.
var testLayout = Layout{
	TrackCount:      4,
	SongTable:       0x8000,
	InstrumentTable: 0x8100,
	PeriodTable:     0x8200,
}

// image is a flat 64K data image.
type image [0x10000]uint8

func (m *image) Read(addr uint16) uint8 { return m[addr] }

func (m *image) put(addr uint16, b ...uint8) {
	copy(m[addr:], b)
}

// song points track t at addr.
func (m *image) song(t uint8, addr uint16) {
	base := testLayout.SongTable + 2 + uint16(t)*2
	m.put(base, uint8(addr>>8), uint8(addr))
}

// instrument writes record n (1-based).
func (m *image) instrument(n uint8, rec [8]uint8) {
	m.put(testLayout.InstrumentTable+uint16(n-1)*8, rec[:]...)
}

// periods fills the period table with f(note) for notes 0..97.
func (m *image) periods(f func(n int) uint16) {
	for n := 0; n < 98; n++ {
		v := f(n)
		m.put(testLayout.PeriodTable+uint16(n)*2, uint8(v), uint8(v>>8))
	}
}

type regWrite struct {
	Addr  uint16
	Value uint8
}

func (w regWrite) String() string {
	return fmt.Sprintf("$%04X=%02X", w.Addr, w.Value)
}

// recorder captures APU writes.
type recorder struct {
	writes []regWrite
}

func (r *recorder) Write(addr uint16, value uint8) {
	r.writes = append(r.writes, regWrite{addr, value})
}

// take returns and clears the captured writes.
func (r *recorder) take() []regWrite {
	w := r.writes
	r.writes = nil
	return w
}

func newTestDriver(m *image) (*Driver, *recorder) {
	rec := &recorder{}
	return New(m, rec, testLayout), rec
}

func advance(t *testing.T, d *Driver) {
	t.Helper()
	if err := d.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
}

func expectWrites(t *testing.T, label string, got, want []regWrite) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d writes %v, want %d %v", label, len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: write %d = %v, want %v", label, i, got[i], want[i])
		}
	}
}

// silenceWrites is the register sequence of a full silence pass.
var silenceWrites = []regWrite{
	{0x4000, 0x30}, {0x4004, 0x30}, {0x4008, 0x00}, {0x400C, 0x30},
	{0x4001, 0x08}, {0x4005, 0x08}, {0x4015, 0x0F},
}

// pulseSong builds a one-channel song on pulse 1:
//
//	instrument 1, volume 15, duty 2, gate 50%, octave 4, quarter note 1, halt
//
// Instrument 1 attacks and releases instantly with sustain at 0x80.
func pulseSong() *image {
	m := &image{}
	m.instrument(1, [8]uint8{0x1F, 0x00, 0x80, 0x1F, 0, 0, 0, 0})
	m.periods(func(n int) uint16 { return 0x2300 | uint16(n) })
	m.song(0, 0x8300)
	m.put(0x8300, 0x00, 0x84, 0x00, 0, 0, 0, 0, 0, 0)
	m.put(0x8400,
		opInstrument, 0x00,
		opVolume, 0x0F,
		opDuty, 0x80,
		opGate, 0x80,
		opOctave, 0x04,
		0x61,
		opHalt, 0x00,
	)
	return m
}
