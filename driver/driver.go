// Package driver implements the Mega Man 5 sound driver: a tick-driven
// bytecode sequencer that turns song and sound effect data into 2A03
// APU register writes.
package driver

// Reader serves bytes from the read-only data image.
type Reader interface {
	Read(addr uint16) uint8
}

// Writer receives APU register writes.
type Writer interface {
	Write(addr uint16, value uint8)
}

// Status byte bits. The high nibble holds the fade fraction.
const (
	statusStrobe = 0x01 // set during Init and in a frame that starts a sound effect event
	statusPaused = 0x02
)

// Driver is one instance of the sound driver. It is not safe for
// concurrent use.
type Driver struct {
	rom    Reader
	apu    Writer
	layout Layout
	region Region

	music [NumChannels]Sequencer
	sfx   [NumChannels]Voice

	// periodHi caches the last period-high byte written per channel.
	// Both layers share it; 0xFF forces the next write.
	periodHi [NumChannels]uint8

	fade       Reg16 // fade level : status
	fadeRate   uint8 // bit 7 set fades in
	clock      Reg16 // elapsed ticks : tick fraction
	tempo      Reg16
	transpose  uint8 // global transpose
	instrument uint16

	sfxCursor   uint16
	sfxPriority uint8
	sfxMask     uint8 // bit 3-ch set when the sound effect layer owns ch
	sfxSlide    uint8
	sfxDuration uint8
	sfxGate     uint8
	sfxSustain  uint8
	sfxLoop     uint8 // bit 7 looping, low bits repeat counter
	sfxRestart  uint8 // track<<1|1 when a looping effect should restart
	sfxPitchMul uint8

	err error
}

// New creates a driver reading tables from rom and writing to apu.
func New(rom Reader, apu Writer, layout Layout) *Driver {
	d := &Driver{
		rom:    rom,
		apu:    apu,
		layout: layout,
		region: RegionNTSC,
	}
	for ch := uint8(0); ch < NumChannels; ch++ {
		d.sfx[ch] = Voice{channel: ch, layer: LayerSFX}
		d.music[ch].Voice = Voice{channel: ch, layer: LayerMusic}
	}
	return d
}

const defaultTempo = 0x0199

// Advance runs one driver tick. It returns a DecodeError when the data
// is corrupt; the error is sticky until the next Init.
func (d *Driver) Advance() error {
	if d.err != nil {
		return d.err
	}
	if d.status()&statusStrobe != 0 {
		return nil
	}
	if d.sfxCursor != 0 {
		if err := d.stepSFX(); err != nil {
			return d.fail(err)
		}
	}

	d.clock.Set(d.tempo.Uint16() + uint16(d.clock.Lo()))

	for ch := NumChannels - 1; ch >= 0; ch-- {
		var err error
		switch {
		case d.owned(uint8(ch)):
			err = d.stepSFXVoice(uint8(ch))
		case d.status()&statusPaused == 0:
			err = d.stepMusic(uint8(ch))
		}
		if err != nil {
			return d.fail(err)
		}
	}

	d.fade[1] &^= statusStrobe
	d.stepFade()
	return nil
}

func (d *Driver) fail(err error) error {
	d.err = err
	d.fade[1] &^= statusStrobe
	return err
}

// stepFade moves the fade level by the fade rate. The level and the
// status high nibble form one 12.4 accumulator; a carry out ends the fade.
func (d *Driver) stepFade() {
	rate := d.fadeRate & 0x7F
	if rate == 0 {
		return
	}
	if d.fade.Chain().Add(uint64(rate) << 4) {
		d.fadeRate &= 0x80
		d.fade[0] = 0xFF
	}
}

func (d *Driver) status() uint8 { return d.fade[1] }

func (d *Driver) owned(ch uint8) bool {
	return d.sfxMask&(1<<(3-ch)) != 0
}

// selectInstrument points the instrument cursor at record n.
func (d *Driver) selectInstrument(n uint8) {
	d.instrument = d.layout.InstrumentTable + uint16(n-1)<<3
}

func (d *Driver) inst(offset uint16) uint8 {
	return d.rom.Read(d.instrument + offset)
}

// Region returns the region passed to the last Init.
func (d *Driver) Region() Region { return d.region }

// SetRegion changes the host region without touching playback.
func (d *Driver) SetRegion(r Region) { d.region = r }

// Timing returns the frame timing of the current region.
func (d *Driver) Timing() RegionTiming { return GetTimingForRegion(d.region) }

// Err returns the sticky decode error, if any.
func (d *Driver) Err() error { return d.err }

// Music returns the music sequencer of a channel.
func (d *Driver) Music(ch int) *Sequencer { return &d.music[ch] }

// SFX returns the sound effect voice of a channel.
func (d *Driver) SFX(ch int) *Voice { return &d.sfx[ch] }

// Elapsed returns the whole ticks consumed by the last Advance.
func (d *Driver) Elapsed() uint8 { return d.clock.Hi() }

// Tempo returns the 8.8 fixed-point ticks per frame.
func (d *Driver) Tempo() uint16 { return d.tempo.Uint16() }

// FadeLevel returns the fade level and rate.
func (d *Driver) FadeLevel() (level, rate uint8) { return d.fade[0], d.fadeRate }

// SFXActive reports whether a sound effect stream is running.
func (d *Driver) SFXActive() bool { return d.sfxCursor != 0 }

// SFXMask returns the channels owned by the sound effect layer, bit
// 3-ch per channel.
func (d *Driver) SFXMask() uint8 { return d.sfxMask }

// Paused reports whether music is paused.
func (d *Driver) Paused() bool { return d.status()&statusPaused != 0 }

// PeriodHi returns the cached period-high byte for a channel.
func (d *Driver) PeriodHi(ch int) uint8 { return d.periodHi[ch] }
