package driver

// stepMusic runs one tick of a channel's music sequencer.
func (d *Driver) stepMusic(ch uint8) error {
	s := &d.music[ch]
	if !s.Active() {
		return nil
	}
	t := track{Voice: &s.Voice, seq: s}
	elapsed := d.clock.Hi()

	if s.NoteWait > 0 {
		if s.EnvNumber != 0 {
			d.selectInstrument(s.EnvNumber)
			if err := d.stepEnvelope(t); err != nil {
				return err
			}
		}
		if s.SustainWait <= elapsed {
			s.release()
		}
		s.SustainWait -= elapsed
		if s.NoteWait > elapsed {
			s.NoteWait -= elapsed
			return nil
		}
		s.NoteWait -= elapsed
	}

	for {
		op := d.fetch(s)
		if op >= 0x20 {
			d.playNote(t, op)
			return nil
		}
		if err := d.execute(t, op); err != nil {
			return err
		}
		if op == opHalt {
			return nil
		}
	}
}

// fetch reads the next stream byte and advances the cursor.
func (d *Driver) fetch(s *Sequencer) uint8 {
	return d.rom.Read(s.Cursor.Inc())
}

// playNote schedules a note event: bits 5-7 select the duration class
// and bits 0-4 the pitch, where 0 is a rest.
func (d *Driver) playNote(t track, b uint8) {
	s := t.seq
	class := b>>5 - 1

	var length uint8
	if s.OctaveFlag&flagTriplet != 0 {
		length = tripletLengths[class]
	} else {
		length = straightLengths[class]
		if s.OctaveFlag&flagDot != 0 {
			s.OctaveFlag &^= flagDot
			length += length >> 1
		}
	}
	s.NoteWait += length

	pitch := b & 0x1F
	if pitch == 0 {
		s.release()
		s.SustainWait = 0xFF
		return
	}

	s.SustainWait = uint8(uint16(s.GateTime) * uint16(s.NoteWait) >> 8)
	if s.SustainWait == 0 {
		s.SustainWait = 1
	}

	n := pitch - 1
	tied := s.OctaveFlag&flagTied != 0
	if !tied {
		d.retrigger(t)
		d.periodHi[t.channel] = 0xFF
	}
	if !tied || s.Portamento != 0 {
		if t.channel == ChannelNoise {
			d.setPitch(t, n&0x0F^0x0F, 0)
		} else {
			d.setNote(t, octaveBase[s.OctaveFlag&0x0F]+n+d.transpose+s.Transpose)
		}
	} else {
		d.checkReload(t)
	}

	// A tie on this note makes the next one a continuation.
	s.OctaveFlag = s.OctaveFlag&^flagTied | (s.OctaveFlag&flagTie)<<1
	if s.OctaveFlag&flagTied != 0 {
		s.SustainWait = 0xFF
	}
}
