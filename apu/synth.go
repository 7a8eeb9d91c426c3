package apu

import (
	"math"

	"github.com/user-none/go-chip-sn76489"
	"github.com/user-none/mm5snd/driver"
)

const (
	psgClockHz    = 3579545
	psgBufferSize = 2048
	psgGain       = 4096.0
	lpfCutoffHz   = 4000.0

	// triangleVolume is the fixed loudness of the triangle while its
	// linear counter is open.
	triangleVolume = 12
	maxTone        = 0x3FF
)

// psgChip is the subset of the SN76489 core the synth drives.
type psgChip interface {
	Write(value uint8)
	Run(clocks int) int
	GetBuffer() ([]float32, int)
	ResetBuffer()
	Serialize(buf []byte) error
	Deserialize(buf []byte) error
}

// Synth renders the shadowed 2A03 state through an SN76489 core. The
// pulses and triangle map onto the three tone generators and the noise
// channel onto the PSG noise generator. It is a Writer; call EndFrame
// once per driver frame to produce audio.
type Synth struct {
	regs Registers
	psg  psgChip

	cpuHz         int
	scanlines     int
	cyclesPerLine int
	lpfAlpha      float64
	tone          [3]uint16
	atten         [4]uint8
	noise         uint8
	samples       []int16
	filterL       float64
	filterR       float64
}

// NewSynth creates a synth paced for the given region timing that
// renders at sampleRate.
func NewSynth(timing driver.RegionTiming, sampleRate int) *Synth {
	psg := sn76489.New(psgClockHz, sampleRate, psgBufferSize, sn76489.Sega)
	psg.SetGain(psgGain)
	return newSynth(timing, sampleRate, psg)
}

func newSynth(timing driver.RegionTiming, sampleRate int, psg psgChip) *Synth {
	s := &Synth{
		psg: psg,
		// First-order RC low-pass smoothing factor.
		lpfAlpha: 1.0 / (float64(sampleRate)/(2*math.Pi*lpfCutoffHz) + 1),
		samples:  make([]int16, 0, psgBufferSize*2),
	}
	s.SetTiming(timing)
	s.silence()
	return s
}

// SetTiming repaces the synth for a different region.
func (s *Synth) SetTiming(timing driver.RegionTiming) {
	s.cpuHz = timing.CPUClockHz
	s.scanlines = timing.Scanlines
	s.cyclesPerLine = psgClockHz / timing.FPS / timing.Scanlines
	// Tone dividers depend on the CPU clock.
	s.tone = [3]uint16{}
}

func (s *Synth) silence() {
	s.noise = 0xFF
	for ch := range s.atten {
		s.atten[ch] = 0x0F
		s.psg.Write(0x90 | uint8(ch)<<5 | 0x0F)
	}
}

// Write implements Writer.
func (s *Synth) Write(addr uint16, value uint8) {
	s.regs.Write(addr, value)
}

// Registers returns the register shadow the synth renders from.
func (s *Synth) Registers() *Registers {
	return &s.regs
}

// EndFrame brings the PSG up to date with the register shadow and
// renders one frame of audio.
func (s *Synth) EndFrame() {
	s.sync()

	s.psg.ResetBuffer()
	for i := 0; i < s.scanlines; i++ {
		s.psg.Run(s.cyclesPerLine)
	}

	buf, n := s.psg.GetBuffer()
	s.samples = s.samples[:0]
	for i := 0; i < n; i++ {
		v := int16(clampInt32(int32(buf[i]), -32768, 32767))
		s.samples = append(s.samples, v, v)
	}
	s.applyLowPass()
}

// Samples returns the last frame as 16-bit stereo PCM.
func (s *Synth) Samples() []int16 {
	return s.samples
}

// sync issues PSG writes for every value that changed since the last
// frame.
func (s *Synth) sync() {
	for ch := Pulse1; ch <= Triangle; ch++ {
		c := s.regs.Channel(ch)
		vol := c.Volume
		if ch == Triangle && vol != 0 {
			vol = triangleVolume
		}
		if !c.Enabled {
			vol = 0
		}
		if vol != 0 {
			s.setTone(ch, s.toneFor(ch, c.Period))
		}
		s.setAtten(ch, 0x0F-vol)
	}

	c := s.regs.Channel(Noise)
	vol := c.Volume
	if !c.Enabled {
		vol = 0
	}
	if vol != 0 {
		ctrl := uint8(0xE0) | noiseRate(uint8(c.Period))
		if !c.Loop {
			ctrl |= 0x04
		}
		if ctrl != s.noise {
			s.noise = ctrl
			s.psg.Write(ctrl)
		}
	}
	s.setAtten(3, 0x0F-vol)
}

// toneFor converts a 2A03 timer period to the PSG divider producing the
// same pitch. The triangle sequencer runs at half the pulse rate.
func (s *Synth) toneFor(ch int, period uint16) uint16 {
	num := (uint64(period) + 1) * psgClockHz
	den := uint64(s.cpuHz)
	if ch != Triangle {
		den *= 2
	}
	n := num / den
	if n < 1 {
		n = 1
	}
	if n > maxTone {
		n = maxTone
	}
	return uint16(n)
}

func (s *Synth) setTone(ch int, n uint16) {
	if s.tone[ch] == n {
		return
	}
	s.tone[ch] = n
	s.psg.Write(0x80 | uint8(ch)<<5 | uint8(n&0x0F))
	s.psg.Write(uint8(n>>4&0x3F))
}

func (s *Synth) setAtten(ch int, a uint8) {
	if s.atten[ch] == a {
		return
	}
	s.atten[ch] = a
	s.psg.Write(0x90 | uint8(ch)<<5 | a)
}

// noiseRate folds the sixteen 2A03 noise rates onto the three fixed PSG
// rates.
func noiseRate(index uint8) uint8 {
	switch {
	case index < 5:
		return 0
	case index < 10:
		return 1
	}
	return 2
}

// applyLowPass smooths the square edges of the PSG output. Filter state
// persists across frames.
func (s *Synth) applyLowPass() {
	for i := 0; i < len(s.samples); i += 2 {
		s.filterL = s.lpfAlpha*float64(s.samples[i]) + (1-s.lpfAlpha)*s.filterL
		s.filterR = s.lpfAlpha*float64(s.samples[i+1]) + (1-s.lpfAlpha)*s.filterR
		s.samples[i] = int16(math.Round(s.filterL))
		s.samples[i+1] = int16(math.Round(s.filterR))
	}
}

func clampInt32(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
