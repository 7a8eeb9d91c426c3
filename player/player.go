// Package player runs the sound driver as a frame-stepped core. Each
// RunFrame is one driver tick, rendered to audio and a channel meter
// view, so any emucore host can play a data image.
package player

import (
	"hash/crc32"
	"strconv"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/mm5snd/apu"
	"github.com/user-none/mm5snd/driver"
	"github.com/user-none/mm5snd/nsf"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Player)(nil)
var _ emucore.SaveStater = (*Player)(nil)

const (
	Name    = "mm5snd"
	Version = "0.2.0"

	// SampleRate is the rate the synth renders and hosts play at.
	SampleRate = 48000
)

// Input bits above the d-pad. Up and Right step to the next track, Down
// and Left to the previous one.
const (
	ButtonPause   = 4
	ButtonFade    = 5
	ButtonFadeIn  = 6
	ButtonRestart = 7
	ButtonStop    = 8
)

// Core option keys.
const (
	OptionTrack  = "track"
	OptionFadeIn = "fade_in"
)

// FadeRate is the fade command argument used by the fade buttons. 0x10
// takes about four seconds to reach silence.
const FadeRate = 0x10

// Region is the host region type.
type Region = emucore.Region

// Player owns one driver instance, its data image and the synth it
// writes into. It is not safe for concurrent use.
type Player struct {
	image  *nsf.Image
	synth  *apu.Synth
	drv    *driver.Driver
	layout driver.Layout
	romCRC uint32

	track   uint8
	frame   uint64
	buttons uint32 // last input, for edge detection
	fadeIn  bool

	framebuffer []byte
}

// New loads an NSF and starts its default song.
func New(data []byte, region Region, layout driver.Layout) (*Player, error) {
	img, err := nsf.Load(data)
	if err != nil {
		return nil, err
	}

	synth := apu.NewSynth(driver.GetTimingForRegion(region), SampleRate)
	p := &Player{
		image:       img,
		synth:       synth,
		drv:         driver.New(img, synth, layout),
		layout:      layout,
		romCRC:      crc32.ChecksumIEEE(data),
		framebuffer: make([]byte, ScreenWidth*ScreenHeight*4),
	}
	if img.Header.StartSong > 0 {
		p.track = img.Header.StartSong - 1
	}
	p.drv.Init(p.track, region)
	return p, nil
}

// DetectRegion returns the region an NSF asks for, defaulting to NTSC
// when the header cannot be read.
func DetectRegion(data []byte) Region {
	h, err := nsf.ParseHeader(data)
	if err != nil {
		return emucore.RegionNTSC
	}
	return nsf.DetectRegion(h)
}

// RunFrame advances the driver one tick and renders its audio and
// meters.
func (p *Player) RunFrame() {
	// Decode errors are sticky; Status reports them.
	_ = p.drv.Advance()
	p.synth.EndFrame()
	p.frame++
	p.renderMeters()
}

// GetAudioSamples returns the last frame as 16-bit stereo PCM.
func (p *Player) GetAudioSamples() []int16 {
	return p.synth.Samples()
}

// SetInput applies newly pressed buttons as driver commands. Only
// player 0 is read.
func (p *Player) SetInput(player int, buttons uint32) {
	if player != 0 {
		return
	}
	pressed := buttons &^ p.buttons
	p.buttons = buttons

	bit := func(n int) bool { return pressed&(1<<n) != 0 }
	switch {
	case bit(emucore.ButtonUp), bit(emucore.ButtonRight):
		p.Select(StepTrack(p.track, 1, p.layout.TrackCount))
	case bit(emucore.ButtonDown), bit(emucore.ButtonLeft):
		p.Select(StepTrack(p.track, -1, p.layout.TrackCount))
	case bit(ButtonRestart):
		p.Select(p.track)
	case bit(ButtonPause):
		if p.drv.Paused() {
			p.drv.Call(driver.CmdResume, 0)
		} else {
			p.drv.Call(driver.CmdPause, 0)
		}
	case bit(ButtonFade):
		p.drv.Call(driver.CmdFade, FadeRate)
	case bit(ButtonFadeIn):
		p.drv.Call(driver.CmdFadeIn, FadeRate)
	case bit(ButtonStop):
		p.drv.Call(driver.CmdStopAll, 0)
	}
}

// Select starts track, fading it in when the fade_in option is set.
func (p *Player) Select(track uint8) {
	p.track = track
	p.drv.Call(track, 0)
	if p.fadeIn {
		p.drv.Call(driver.CmdFadeIn, FadeRate)
	}
}

// StepTrack moves track by delta, wrapping at count.
func StepTrack(track uint8, delta int, count uint8) uint8 {
	if count == 0 {
		return track
	}
	n := (int(track) + delta) % int(count)
	if n < 0 {
		n += int(count)
	}
	return uint8(n)
}

// Track returns the last selected track.
func (p *Player) Track() uint8 {
	return p.track
}

// GetRegion returns the driver's region.
func (p *Player) GetRegion() Region {
	return p.drv.Region()
}

// SetRegion repaces the driver and synth for region.
func (p *Player) SetRegion(region Region) {
	p.drv.SetRegion(region)
	p.synth.SetTiming(driver.GetTimingForRegion(region))
}

// GetTiming returns FPS and scanline count for the current region.
func (p *Player) GetTiming() emucore.Timing {
	return p.drv.Timing().Timing()
}

// SetOption applies a core option change identified by key.
func (p *Player) SetOption(key string, value string) {
	switch key {
	case OptionTrack:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n >= int(p.layout.TrackCount) {
			return
		}
		p.Select(uint8(n))
	case OptionFadeIn:
		p.fadeIn = value == "true"
	}
}

// Close releases any resources held by the player.
func (p *Player) Close() {}

// Status is a snapshot of playback state for drawing.
type Status struct {
	Track    uint8
	Frame    uint64
	Channels [apu.NumChannels]apu.Channel
	Fade     uint8
	SFXMask  uint8
	Paused   bool
	Err      error
}

// Status returns the current playback state.
func (p *Player) Status() Status {
	level, _ := p.drv.FadeLevel()
	return Status{
		Track:    p.track,
		Frame:    p.frame,
		Channels: p.synth.Registers().Channels(),
		Fade:     level,
		SFXMask:  p.drv.SFXMask(),
		Paused:   p.drv.Paused(),
		Err:      p.drv.Err(),
	}
}

// CPUClockHz returns the 2A03 clock of the current region, for
// converting channel periods to pitch.
func (p *Player) CPUClockHz() int {
	return p.drv.Timing().CPUClockHz
}

