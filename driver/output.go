package driver

// gate maps an envelope level to the triangle's linear counter: fully
// on or off.
func gate(level uint8) uint8 {
	if level != 0 {
		return 0xFF
	}
	return 0
}

// emit computes the volume register for the current envelope level,
// applying the music fade and tremolo, then writes the channel.
func (d *Driver) emit(t track) {
	tri := t.channel == ChannelTriangle
	level := t.EnvLevel

	if t.music() {
		limit := d.fade[0]
		if d.fadeRate < 0x80 {
			limit ^= 0xFF
		}
		if limit != 0xFF {
			if tri {
				v := uint8(uint16(t.seq.SustainWait) * uint16(limit) >> 8)
				if v != 0 {
					v = gate(level)
				}
				d.writeVoice(t, v)
				return
			}
			level = min(level, limit)
		}
	}
	if tri {
		d.writeVoice(t, gate(t.EnvLevel))
		return
	}

	atten := level>>4 ^ 0x0F
	if depth := d.inst(instTremolo); depth >= 5 {
		if p := t.lfo(); p != 0 {
			trem := uint8(uint16(p) * uint16(depth) >> 10)
			if trem >= 0x10 {
				d.writeVoice(t, t.VolumeDuty&0xF0)
				return
			}
			atten = max(atten, trem)
		}
	}

	v := t.VolumeDuty - atten
	if v&0x10 == 0 {
		// Attenuation borrowed out of the volume nibble.
		v = t.VolumeDuty & 0xF0
	}
	d.writeVoice(t, v)
}

// writeVoice writes the volume register, then the period registers with
// vibrato, pitch multiplier and detune applied. Period high is written
// only when it differs from the cached value.
func (d *Driver) writeVoice(t track, vol uint8) {
	ch := t.channel
	base := registerBase(ch)
	d.apu.Write(base, vol)

	hi, lo := d.vibrato(t)

	if !t.music() && d.sfxLoop&0x80 != 0 && d.sfxPitchMul != 0 {
		v := uint16(hi)*uint16(d.sfxPitchMul) + uint16(lo)
		hi, lo = uint8(v>>8), uint8(v)
	}

	var periodHi, periodLo uint8
	if ch == ChannelNoise {
		periodLo = hi&0x0F | d.inst(instNoiseMode)
	} else {
		p := toPeriod(hi, lo)
		if t.Detune != 0 {
			p += uint16(int16(int8(t.Detune)))
		}
		periodHi, periodLo = uint8(p>>8), uint8(p)
	}

	d.apu.Write(base+2, periodLo)
	if periodHi != d.periodHi[ch] {
		d.periodHi[ch] = periodHi
		d.apu.Write(base+3, periodHi|0x08)
	}
	d.glide(t)
}

// vibrato returns the pitch offset by the LFO. Vibrato is held off
// while the period-high cache is invalidated, and an offset that would
// leave the high byte at zero is dropped.
func (d *Driver) vibrato(t track) (hi, lo uint8) {
	hi, lo = t.Pitch.Hi(), t.Pitch.Lo()
	if d.periodHi[t.channel] >= 0x80 {
		return
	}
	depth := d.inst(instVibrato)
	if depth == 0 {
		return
	}
	p := t.lfo()
	if p == 0 {
		return
	}
	offset := Reg16{}
	offset.Set(uint16(p) * uint16(depth) >> 4)
	if offset.Uint16() == 0 {
		return
	}

	pitch := t.Pitch.Uint16()
	if t.EnvState&stateLFONegate == 0 {
		sum := Reg16{}
		sum.Set(pitch + offset.Uint16())
		if sum.Hi() != 0 {
			return sum.Hi(), sum.Lo()
		}
		offset[1] = sum.Lo()
	}
	diff := Reg16{}
	diff.Set(pitch - offset.Uint16())
	if diff.Hi() != 0 {
		return diff.Hi(), diff.Lo()
	}
	return t.Pitch.Hi(), t.Pitch.Lo()
}
