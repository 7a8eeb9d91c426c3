package apu

import (
	"testing"

	"github.com/user-none/mm5snd/driver"
)

func TestRegistersDecodePulse(t *testing.T) {
	var r Registers
	r.Write(0x4015, 0x01)
	r.Write(0x4000, 0xBF)
	r.Write(0x4002, 0xCC)
	r.Write(0x4003, 0x09)

	c := r.Channel(Pulse1)
	if !c.Enabled || c.Volume != 15 || c.Duty != 2 || c.Period != 0x1CC {
		t.Errorf("pulse1 = %+v", c)
	}
	if !c.Audible() {
		t.Error("pulse1 should be audible")
	}
	if r.Channel(Pulse2).Enabled {
		t.Error("pulse2 should be disabled")
	}
}

func TestRegistersShortPeriodMutes(t *testing.T) {
	var r Registers
	r.Write(0x4015, 0x02)
	r.Write(0x4004, 0x3F)
	r.Write(0x4006, 0x07)
	if r.Channel(Pulse2).Audible() {
		t.Error("timer below 8 should mute the pulse")
	}
}

func TestRegistersDecodeTriangleAndNoise(t *testing.T) {
	var r Registers
	r.Write(0x4015, 0x0C)
	r.Write(0x4008, 0xFF)
	r.Write(0x400A, 0x40)
	r.Write(0x400B, 0x0A)
	r.Write(0x400C, 0x3A)
	r.Write(0x400E, 0x85)

	tri := r.Channel(Triangle)
	if tri.Volume != 15 || tri.Period != 0x240 {
		t.Errorf("triangle = %+v", tri)
	}
	r.Write(0x4008, 0x80)
	if r.Channel(Triangle).Audible() {
		t.Error("closed triangle counter should be silent")
	}

	n := r.Channel(Noise)
	if n.Volume != 10 || n.Period != 5 || !n.Loop {
		t.Errorf("noise = %+v", n)
	}
}

func TestRegistersIgnoreOutsideWindow(t *testing.T) {
	var r Registers
	r.Write(0x3FFF, 0xFF)
	r.Write(0x4018, 0xFF)
	r.Write(0x4017, 0x40)
	if r.Reg(0x4017) != 0x40 {
		t.Errorf("$4017 = %02X, want 40", r.Reg(0x4017))
	}
	if r.Reg(0x4018) != 0 || r.Reg(0x3FFF) != 0 {
		t.Error("out of window registers should read 0")
	}
	r.Reset()
	if r.Reg(0x4017) != 0 {
		t.Error("Reset should clear registers")
	}
}

func TestFrequency(t *testing.T) {
	if got := Frequency(Pulse1, 0x1CC, 1789773); got < 241 || got > 243 {
		t.Errorf("pulse freq = %v, want ~242", got)
	}
	if got := Frequency(Triangle, 0x1CC, 1789773); got < 120 || got > 122 {
		t.Errorf("triangle freq = %v, want ~121", got)
	}
	if Frequency(Noise, 4, 1789773) != 0 {
		t.Error("noise has no tone frequency")
	}
}

func TestRecorderTake(t *testing.T) {
	var rec Recorder
	rec.Write(0x4000, 0x30)
	rec.Write(0x4015, 0x0F)

	got := rec.Take()
	if len(got) != 2 {
		t.Fatalf("took %d writes, want 2", len(got))
	}
	if got[0].String() != "WRITE(4000,30)" || got[1] != (Write{0x4015, 0x0F}) {
		t.Errorf("writes = %v", got)
	}
	if len(rec.Take()) != 0 {
		t.Error("Take should start a new batch")
	}
}

// fakePSG records the bytes written to the PSG.
type fakePSG struct {
	writes []uint8
	cycles int
}

func (f *fakePSG) Write(v uint8)                { f.writes = append(f.writes, v) }
func (f *fakePSG) Run(clocks int) int           { f.cycles += clocks; return 0 }
func (f *fakePSG) GetBuffer() ([]float32, int)  { return []float32{1000, -1000}, 2 }
func (f *fakePSG) ResetBuffer()                 {}
func (f *fakePSG) Serialize(buf []byte) error   { return nil }
func (f *fakePSG) Deserialize(buf []byte) error { return nil }

func (f *fakePSG) take() []uint8 {
	w := f.writes
	f.writes = nil
	return w
}

func expectBytes(t *testing.T, label string, got, want []uint8) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got % X, want % X", label, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s: got % X, want % X", label, got, want)
		}
	}
}

const testSampleRate = 48000

func TestSynthPulseMapping(t *testing.T) {
	psg := &fakePSG{}
	s := newSynth(driver.NTSCTiming, testSampleRate, psg)
	expectBytes(t, "reset", psg.take(), []uint8{0x9F, 0xBF, 0xDF, 0xFF})

	s.Write(0x4015, 0x0F)
	s.Write(0x4000, 0xBF)
	s.Write(0x4002, 0xCC)
	s.Write(0x4003, 0x09)
	s.EndFrame()
	expectBytes(t, "key on", psg.take(), []uint8{0x8C, 0x1C, 0x90})

	s.EndFrame()
	expectBytes(t, "steady", psg.take(), nil)

	s.Write(0x4000, 0xB8)
	s.EndFrame()
	expectBytes(t, "volume", psg.take(), []uint8{0x97})

	s.Write(0x4015, 0x00)
	s.EndFrame()
	expectBytes(t, "disable", psg.take(), []uint8{0x9F})
}

func TestSynthTriangleMapping(t *testing.T) {
	psg := &fakePSG{}
	s := newSynth(driver.NTSCTiming, testSampleRate, psg)
	psg.take()

	s.Write(0x4015, 0x04)
	s.Write(0x4008, 0xFF)
	s.Write(0x400A, 0xFF)
	s.Write(0x400B, 0x00)
	s.EndFrame()
	// Period 0xFF doubles to divider 0x200 on the PSG.
	expectBytes(t, "triangle", psg.take(), []uint8{0xC0, 0x20, 0xD3})
}

func TestSynthNoiseMapping(t *testing.T) {
	psg := &fakePSG{}
	s := newSynth(driver.NTSCTiming, testSampleRate, psg)
	psg.take()

	s.Write(0x4015, 0x08)
	s.Write(0x400C, 0x3A)
	s.Write(0x400E, 0x08)
	s.EndFrame()
	expectBytes(t, "white", psg.take(), []uint8{0xE5, 0xF5})

	s.Write(0x400E, 0x88)
	s.EndFrame()
	expectBytes(t, "periodic", psg.take(), []uint8{0xE1})
}

func TestSynthSerializeRoundTrip(t *testing.T) {
	s := NewSynth(driver.NTSCTiming, testSampleRate)
	s.Write(0x4015, 0x09)
	s.Write(0x4000, 0xBF)
	s.Write(0x4002, 0xFD)
	s.Write(0x4003, 0x08)
	s.Write(0x400C, 0x38)
	s.Write(0x400E, 0x04)
	for i := 0; i < 3; i++ {
		s.EndFrame()
	}

	state := make([]byte, SynthSerializeSize)
	if err := s.Serialize(state); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var want []int16
	for i := 0; i < 2; i++ {
		s.EndFrame()
		want = append(want, s.Samples()...)
	}

	s.Write(0x4015, 0x00)
	s.EndFrame()
	if err := s.Deserialize(state); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(s.Samples()) != 0 {
		t.Error("Deserialize kept the previous frame")
	}
	var got []int16
	for i := 0; i < 2; i++ {
		s.EndFrame()
		got = append(got, s.Samples()...)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d samples after restore, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %d after restore, want %d", i, got[i], want[i])
		}
	}
}

func TestSynthSerializeErrors(t *testing.T) {
	s := NewSynth(driver.NTSCTiming, testSampleRate)
	if err := s.Serialize(make([]byte, SynthSerializeSize-1)); err == nil {
		t.Error("Serialize accepted a short buffer")
	}
	if err := s.Deserialize(make([]byte, SynthSerializeSize-1)); err == nil {
		t.Error("Deserialize accepted a short buffer")
	}
	bad := make([]byte, SynthSerializeSize)
	if err := s.Serialize(bad); err != nil {
		t.Fatal(err)
	}
	bad[0] = 0xFF
	if err := s.Deserialize(bad); err == nil {
		t.Error("Deserialize accepted an unknown version")
	}
}

func TestSynthSetTiming(t *testing.T) {
	psg := &fakePSG{}
	s := newSynth(driver.NTSCTiming, testSampleRate, psg)
	s.SetTiming(driver.PALTiming)
	s.EndFrame()
	if want := psgClockHz / 50 / 312 * 312; psg.cycles != want {
		t.Errorf("ran %d cycles, want %d", psg.cycles, want)
	}
	if s.toneFor(Pulse1, 0x100) == newSynth(driver.NTSCTiming, testSampleRate, &fakePSG{}).toneFor(Pulse1, 0x100) {
		t.Error("PAL tone divider matches NTSC")
	}
}

func TestSynthFilterFollowsSampleRate(t *testing.T) {
	hi := newSynth(driver.NTSCTiming, 48000, &fakePSG{})
	lo := newSynth(driver.NTSCTiming, 22050, &fakePSG{})
	if lo.lpfAlpha <= hi.lpfAlpha {
		t.Errorf("alpha at 22050 Hz = %f, want more than %f at 48000 Hz", lo.lpfAlpha, hi.lpfAlpha)
	}
}

func TestSynthToneClamp(t *testing.T) {
	s := newSynth(driver.NTSCTiming, testSampleRate, &fakePSG{})
	if got := s.toneFor(Pulse1, 0x7FF); got != maxTone {
		t.Errorf("long period = %X, want %X", got, maxTone)
	}
	if got := s.toneFor(Pulse1, 0); got != 1 {
		t.Errorf("zero period = %X, want 1", got)
	}
}

func TestNoiseRate(t *testing.T) {
	tests := []struct{ index, want uint8 }{
		{0, 0}, {4, 0}, {5, 1}, {9, 1}, {10, 2}, {15, 2},
	}
	for _, tt := range tests {
		if got := noiseRate(tt.index); got != tt.want {
			t.Errorf("noiseRate(%d) = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestSynthRunsWholeFrame(t *testing.T) {
	psg := &fakePSG{}
	s := newSynth(driver.PALTiming, testSampleRate, psg)
	s.EndFrame()
	if want := psgClockHz / 50 / 312 * 312; psg.cycles != want {
		t.Errorf("ran %d cycles, want %d", psg.cycles, want)
	}
	if len(s.Samples()) != 4 {
		t.Errorf("got %d samples, want 4 (two stereo pairs)", len(s.Samples()))
	}
}

func TestSynthRendersAudio(t *testing.T) {
	s := NewSynth(driver.NTSCTiming, testSampleRate)
	s.Write(0x4015, 0x01)
	s.Write(0x4000, 0xBF)
	s.Write(0x4002, 0xFD)
	s.Write(0x4003, 0x08)
	for i := 0; i < 3; i++ {
		s.EndFrame()
	}

	samples := s.Samples()
	if len(samples) == 0 || len(samples)%2 != 0 {
		t.Fatalf("got %d samples, want a nonzero even count", len(samples))
	}
	loud := false
	for _, v := range samples {
		if v != 0 {
			loud = true
			break
		}
	}
	if !loud {
		t.Error("keyed pulse rendered silence")
	}
}
