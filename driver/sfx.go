package driver

// Sound effect event header bits.
const (
	sfxEnd      = 0x80 // end of stream
	sfxRepeat   = 0x01 // repeat count and jump target follow
	sfxHasGate  = 0x02
	sfxHasSlide = 0x04
	sfxLoopFlag = 0x80
	sfxNoteTie  = 0x80 // note byte: keep pitch, retrigger triangle only

	// sfxCommands is the number of per-channel command bits; higher mask
	// bits are corrupt data.
	sfxCommands = 5
)

func (d *Driver) fetchSFX() uint8 {
	addr := d.sfxCursor
	d.sfxCursor++
	return d.rom.Read(addr)
}

// stepSFX advances the sound effect stream. While an event's duration
// runs it only counts down; when it expires the next event header is
// parsed and the per-channel blocks are left for stepSFXVoice.
func (d *Driver) stepSFX() error {
	if d.sfxDuration != 0 {
		d.sfxDuration--
		d.sfxSustain--
		return nil
	}

	var head uint8
	looping := false
	for {
		head = d.fetchSFX()
		if head&sfxEnd != 0 {
			d.sfxPriority = 0
			if d.sfxRestart&0x01 == 0 {
				d.stopSFX()
				return nil
			}
			d.startTrack(d.sfxRestart >> 1)
			continue
		}
		if head&sfxRepeat == 0 {
			break
		}

		if count := d.fetchSFX() << 1; count != 0 {
			looping = d.sfxLoop&sfxLoopFlag != 0
			prev := d.sfxLoop
			if count == d.sfxLoop<<1 {
				d.endRepeat(looping)
				break
			}
			d.sfxLoop = prev + 1
		}
		hi := d.fetchSFX()
		lo := d.fetchSFX()
		d.sfxCursor = uint16(hi)<<8 | uint16(lo)
		if lo != 0 {
			continue
		}
		// A page-aligned target ends the repeat.
		d.endRepeat(looping)
		break
	}

	if head&sfxHasGate != 0 {
		d.sfxGate = d.fetchSFX()
	}
	if head&sfxHasSlide != 0 {
		d.sfxSlide = d.fetchSFX()
	}
	d.sfxDuration = d.fetchSFX()
	d.sfxSustain = uint8(uint16(d.sfxDuration)*uint16(d.sfxGate)>>8) + 1
	d.fade[1]++

	mask := d.fetchSFX()
	if changed := mask ^ d.sfxMask; changed != 0 {
		d.sfxMask = changed
		d.releaseSFX()
	}
	d.sfxMask = mask
	return nil
}

// endRepeat resets the repeat counter, keeps the looping flag and skips
// the jump target.
func (d *Driver) endRepeat(looping bool) {
	d.sfxLoop = 0
	if looping {
		d.sfxLoop = sfxLoopFlag
	}
	d.sfxCursor += 2
}

// stepSFXVoice runs one tick of a channel owned by the sound effect
// layer. In the frame an event starts it reads the channel's command
// block and note instead of stepping the envelope.
func (d *Driver) stepSFXVoice(ch uint8) error {
	v := &d.sfx[ch]
	t := track{Voice: v}
	if v.EnvNumber != 0 {
		d.selectInstrument(v.EnvNumber)
	}

	if d.status()&statusStrobe == 0 {
		if err := d.stepEnvelope(t); err != nil {
			return err
		}
		if d.sfxDuration == 0 {
			return nil
		}
		if ch == ChannelTriangle {
			v.EnvLevel--
			if v.EnvLevel != 0 {
				return nil
			}
		} else if d.sfxSustain != 0 {
			return nil
		}
		if v.EnvState&PhaseIdle != 0 {
			return nil
		}
		v.release()
		return nil
	}

	maskAt := d.sfxCursor
	mask := d.fetchSFX()
	if mask>>sfxCommands != 0 {
		return &DecodeError{
			Kind:    KindSFXCommand,
			Layer:   LayerSFX,
			Channel: ch,
			Addr:    maskAt,
			Value:   mask,
		}
	}
	for cmd := uint8(0); mask != 0; cmd++ {
		if mask&1 != 0 {
			d.sfxCommand(t, cmd, d.fetchSFX())
		}
		mask >>= 1
	}

	note := d.fetchSFX()
	if note == 0 {
		v.EnvLevel = 0
		v.setPhase(PhaseIdle)
		d.silenceChannel(ch)
		return nil
	}

	v.EnvState |= statePortamento
	if v.Portamento >= 0x80 {
		v.Note = 0x54
	} else {
		v.Note = 0x0A
	}
	if note&sfxNoteTie != 0 {
		if ch == ChannelTriangle {
			d.retrigger(t)
		}
		d.checkReload(t)
		return nil
	}

	d.retrigger(t)
	d.periodHi[ch] = 0xFF
	note--
	if ch == ChannelNoise {
		d.setPitch(t, note^0x0F, 0)
		return nil
	}
	d.setNote(t, note+2)
	return nil
}

// sfxCommand applies one per-channel setting from an event block.
func (d *Driver) sfxCommand(t track, cmd, arg uint8) {
	switch cmd {
	case 0:
		d.setInstrument(t, arg)
	case 1:
		d.setDuty(t, arg)
	case 2:
		d.setVolume(t, arg)
	case 3:
		t.Portamento = arg
	case 4:
		t.Detune = arg
	}
}
