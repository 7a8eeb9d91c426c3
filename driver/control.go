package driver

// Meta commands accepted by Init and Call in place of a track number.
const (
	CmdStopAll  = 0xF0
	CmdStopSFX  = 0xF1
	CmdSilence  = 0xF2 // stop music
	CmdPause    = 0xF3
	CmdResume   = 0xF4
	CmdFadeIn   = 0xF5
	CmdFade     = 0xF6
	CmdSFXPitch = 0xF7
)

// Init selects a song, sound effect or meta command and records the
// host region. It clears any sticky decode error.
func (d *Driver) Init(track uint8, region Region) {
	d.region = region
	d.Call(track, 0)
}

// Call issues a track or meta command with an argument. Meta commands
// that take no argument ignore it.
func (d *Driver) Call(track, arg uint8) {
	d.err = nil
	d.fade[1]++
	d.command(track, arg)
	d.fade[1]--
}

func (d *Driver) command(track, arg uint8) {
	if track < CmdStopAll {
		if d.layout.TrackCount == 0 {
			return
		}
		for track >= d.layout.TrackCount {
			track -= d.layout.TrackCount
		}
		d.startTrack(track)
		return
	}

	switch track & 0x07 {
	case CmdStopAll & 0x07:
		d.stopMusic()
		d.stopSFX()
	case CmdStopSFX & 0x07:
		d.stopSFX()
	case CmdSilence & 0x07:
		d.stopMusic()
	case CmdPause & 0x07:
		d.fade[1] |= statusPaused
		d.silence()
	case CmdResume & 0x07:
		d.fade[1] &^= statusPaused
	case CmdFadeIn & 0x07:
		arg <<= 1
		if arg != 0 {
			arg = 0x80 | arg>>1
		}
		d.setFade(arg)
	case CmdFade & 0x07:
		d.setFade(arg)
	case CmdSFXPitch & 0x07:
		d.sfxPitchMul = -arg
	}
}

// setFade starts a fade at the given rate. Bit 7 of rate fades in.
func (d *Driver) setFade(rate uint8) {
	d.fade[1] &= 0x0F
	d.fadeRate = rate
	if rate == 0 || d.fade[0] == 0xFF {
		d.fade[0] = 0
	}
}

// startTrack looks up a song table entry and starts it on the layer its
// header selects. An empty entry is ignored.
func (d *Driver) startTrack(t uint8) {
	x := uint16(t << 1)
	lo := d.rom.Read(d.layout.SongTable + 3 + x)
	hi := d.rom.Read(d.layout.SongTable + 2 + x)
	ptr := uint16(hi)<<8 | uint16(lo)
	if ptr == 0 {
		return
	}
	if head := d.rom.Read(ptr); head != 0 {
		d.startSFX(t, ptr, head)
		return
	}
	d.startMusic(ptr)
}

func (d *Driver) startSFX(t uint8, ptr uint16, head uint8) {
	prio := head & 0x7F
	if prio < d.sfxPriority {
		return
	}
	d.sfxPriority = prio
	if prio == 0 && d.sfxLoop&0x80 != 0 && head&0x80 == 0 {
		d.sfxRestart = 0
	}
	d.sfxLoop = 0
	if head&0x80 != 0 {
		d.sfxLoop = 0x80
		d.sfxRestart = t<<1 | 1
	}
	d.sfxCursor = ptr + 1
	d.sfxSlide = 0
	d.sfxDuration = 0
	d.sfxGate = 0
	d.sfxSustain = 0
	for ch := range d.sfx {
		d.sfx[ch].Reset()
	}
}

func (d *Driver) startMusic(ptr uint16) {
	d.tempo.Set(defaultTempo)
	d.clock[1] = 0
	d.transpose = 0
	d.fadeRate = 0
	d.fade[0] = 0
	for ch := range d.music {
		d.music[ch].Reset()
		d.periodHi[ch] = 0
	}
	for ch := NumChannels - 1; ch >= 0; ch-- {
		ptr++
		hi := d.rom.Read(ptr)
		ptr++
		lo := d.rom.Read(ptr)
		d.music[ch].Cursor = Reg16{hi, lo}
	}
	d.silence()
}

// stopSFX ends the sound effect stream and hands its channels back.
func (d *Driver) stopSFX() {
	d.sfxCursor = 0
	d.sfxPriority = 0
	d.sfxRestart = 0
	d.sfxPitchMul = 0
	d.releaseSFX()
}

// releaseSFX silences every channel the sound effect layer owns and
// clears the ownership mask.
func (d *Driver) releaseSFX() {
	if d.sfxMask == 0 {
		return
	}
	d.sfxMask ^= 0x0F
	d.silence()
	d.sfxMask = 0
}

func (d *Driver) stopMusic() {
	for ch := range d.music {
		d.music[ch].Cursor = Reg16{}
	}
	d.silence()
}

// silence mutes every channel the sound effect layer does not own,
// then resets the sweep units and enables all four channels.
func (d *Driver) silence() {
	for ch := NumChannels - 1; ch >= 0; ch-- {
		if d.owned(uint8(ch)) {
			continue
		}
		d.silenceChannel(uint8(ch))
		if d.music[ch].Active() {
			d.periodHi[ch] = 0xFF
		}
	}
	d.apu.Write(0x4001, 0x08)
	d.apu.Write(0x4005, 0x08)
	d.apu.Write(0x4015, 0x0F)
}

func (d *Driver) silenceChannel(ch uint8) {
	var v uint8 = 0x30
	if ch == ChannelTriangle {
		v = 0
	}
	d.apu.Write(registerBase(ch), v)
}
