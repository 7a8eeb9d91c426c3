package cli

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user-none/mm5snd/driver"
)

var update = flag.Bool("update", false, "rewrite golden trace files")

var testLayout = driver.Layout{
	TrackCount:      4,
	SongTable:       0x8000,
	InstrumentTable: 0x8100,
	PeriodTable:     0x8200,
}

type dataImage [0x10000]uint8

func (m *dataImage) Read(addr uint16) uint8 { return m[addr] }

func (m *dataImage) put(addr uint16, b ...uint8) { copy(m[addr:], b) }

// pulseSong is one quarter note on pulse 1 with an instant envelope and
// a 50% gate, then a halt.
func pulseSong() *dataImage {
	m := &dataImage{}
	m.put(testLayout.InstrumentTable, 0x1F, 0x00, 0x80, 0x1F, 0, 0, 0, 0)
	for n := 0; n < 98; n++ {
		m.put(testLayout.PeriodTable+uint16(n)*2, uint8(n), 0x23)
	}
	m.put(testLayout.SongTable+2, 0x83, 0x00)
	m.put(0x8300, 0x00, 0x84, 0x00, 0, 0, 0, 0, 0, 0)
	m.put(0x8400,
		0x08, 0x00, // instrument 1
		0x07, 0x0F, // volume
		0x18, 0x80, // duty
		0x06, 0x80, // gate
		0x09, 0x04, // octave
		0x61,
		0x17, 0x00, // halt
	)
	return m
}

func TestTraceGolden(t *testing.T) {
	var buf bytes.Buffer
	err := Trace(&buf, pulseSong(), testLayout, TraceOptions{Ticks: 10, Region: driver.RegionNTSC})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join("testdata", "pulse.trace")
	if *update {
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			t.Fatal(err)
		}
		return
	}
	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != string(want) {
		t.Errorf("trace mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestTracePALHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Trace(&buf, &dataImage{}, testLayout, TraceOptions{Track: 2, Region: driver.RegionPAL}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "INIT(02,01)\n") {
		t.Errorf("header = %q", buf.String())
	}
}

func TestTraceStopsOnCorruptData(t *testing.T) {
	m := pulseSong()
	m.put(0x8400, 0x19)

	var buf bytes.Buffer
	err := Trace(&buf, m, testLayout, TraceOptions{Ticks: 10})
	if !errors.Is(err, driver.ErrCorruptSequence) {
		t.Fatalf("err = %v, want corrupt sequence", err)
	}
	out := buf.String()
	if !strings.Contains(out, "PLAY(0)\nERROR(") {
		t.Errorf("missing error line:\n%s", out)
	}
	if strings.Contains(out, "PLAY(1)") {
		t.Error("trace continued past a fatal error")
	}
}

func TestTraceColor(t *testing.T) {
	var buf bytes.Buffer
	if err := Trace(&buf, pulseSong(), testLayout, TraceOptions{Ticks: 2, Color: true}); err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"INIT(00,00)", "PLAY(1)", "WRITE(4000,BF)"} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("colored trace missing %q", s)
		}
	}
}
