package driver

// maxNote is the highest note index accepted before the +1 bias.
const maxNote = 0x5F

// retrigger restarts the envelope at attack. The triangle has no
// volume ramp, so it starts in sustain with a nonzero countdown.
func (d *Driver) retrigger(t track) {
	t.EnvState &^= phaseMask
	var level uint8
	if t.channel == ChannelTriangle {
		if t.music() {
			level = 1
		} else {
			level = uint8(uint16(d.sfxDuration)*uint16(t.VolumeDuty)>>8) + 1
		}
		t.EnvState += PhaseSustain
	}
	t.EnvLevel = level
}

// setNote resolves a note through the period table. On the music layer
// it also handles ties and starts a glide when portamento is set.
func (d *Driver) setNote(t track, n uint8) {
	if n > maxNote {
		n = maxNote
	}
	idx := n + 1

	if s := t.seq; s != nil {
		switch {
		case t.Note == idx:
			if s.OctaveFlag&flagTied != 0 {
				d.checkReload(t)
				return
			}
			t.EnvState &^= statePortamento
		case t.Note != 0 && t.Portamento != 0:
			// Glide from the old note to the new one.
			if t.Note >= idx {
				t.Portamento &= 0x7F
			} else {
				t.Portamento |= 0x80
			}
			t.EnvState |= statePortamento
			idx, t.Note = t.Note, idx
		default:
			t.EnvState &^= statePortamento
			t.Note = idx
		}
	}

	lo, hi := d.period(idx)
	d.setPitch(t, hi, lo)
}

// period reads a note's pitch value from the period table.
func (d *Driver) period(idx uint8) (lo, hi uint8) {
	off := uint16(idx << 1)
	lo = d.rom.Read(d.layout.PeriodTable + off)
	hi = d.rom.Read(d.layout.PeriodTable + 1 + off)
	return lo, hi
}

// setPitch stores a new base pitch. Instruments with bit 7 of the LFO
// rate restart the LFO on every note.
func (d *Driver) setPitch(t track, hi, lo uint8) {
	t.Pitch = Reg16{hi, lo}
	if d.inst(instLFORate) >= 0x80 {
		t.LFOPhase = 0
		t.EnvState &= stateKeep
		return
	}
	d.checkReload(t)
}

// checkReload restarts the LFO when a new instrument is pending.
func (d *Driver) checkReload(t track) {
	if t.EnvState&stateReload != 0 {
		t.LFOPhase = 0
		t.EnvState &= stateKeep
	}
}

// glide moves a portamento one step toward the current note's period,
// then advances the LFO. The sound effect noise channel never snaps, so
// its glide keeps running.
func (d *Driver) glide(t track) {
	if t.EnvState&statePortamento != 0 {
		if t.Portamento == 0 {
			t.EnvState &^= statePortamento
		} else {
			off := uint16(t.Note) * 2
			target := uint16(d.rom.Read(d.layout.PeriodTable+1+off))<<8 |
				uint16(d.rom.Read(d.layout.PeriodTable+off))

			down := t.Portamento >= 0x80
			step := uint16(t.Portamento << 1)
			if down {
				step = 0xFF00 | uint16(-uint8(step))
			}
			t.Pitch.Set(t.Pitch.Uint16() + step)

			reached := t.Pitch.Uint16()&0x3FFF >= target
			if down != reached && (t.music() || t.channel != ChannelNoise) {
				t.Pitch.Set(target)
				t.EnvState &^= statePortamento
			}
		}
	}

	if r := d.inst(instLFORate) & 0x7F; r != 0 {
		sum := uint16(t.LFOPhase) + uint16(r)
		t.LFOPhase = uint8(sum)
		if sum > 0xFF {
			t.EnvState += stateLFOStep
		}
	}
}

// toPeriod converts a pitch value (octave-scaled note position in the
// high byte, fraction in the low byte) to an 11-bit timer period.
func toPeriod(hi, lo uint8) uint16 {
	oct := uint8(8)
	for {
		oct--
		if int(hi) >= int(oct)*7 {
			break
		}
	}
	n := hi + oct
	v := uint16(7+n&0x07)<<8 | uint16(lo)
	for s := (n & 0x38) ^ 0x38; s != 0; s -= 8 {
		v >>= 1
	}
	return v
}
