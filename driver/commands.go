package driver

// Music opcodes. Opcodes from opFlags up carry a one-byte operand.
const (
	opTriplet         = 0x00
	opTie             = 0x01
	opDot             = 0x02
	op15va            = 0x03
	opFlags           = 0x04
	opTempo           = 0x05
	opGate            = 0x06
	opVolume          = 0x07
	opInstrument      = 0x08
	opOctave          = 0x09
	opGlobalTranspose = 0x0A
	opTranspose       = 0x0B
	opDetune          = 0x0C
	opPortamento      = 0x0D
	opLoopEnd         = 0x0E // through 0x11, one per nesting level
	opLoopBreak       = 0x12 // through 0x15
	opJump            = 0x16
	opHalt            = 0x17
	opDuty            = 0x18
)

// execute runs one control opcode on a music channel.
func (d *Driver) execute(t track, op uint8) error {
	s := t.seq
	at := s.Cursor.Uint16() - 1

	var arg uint8
	if op >= opFlags {
		arg = d.fetch(s)
	}

	switch {
	case op == opTriplet:
		s.OctaveFlag ^= flagTriplet
	case op == opTie:
		s.OctaveFlag ^= flagTie
	case op == opDot:
		s.OctaveFlag |= flagDot
	case op == op15va:
		s.OctaveFlag ^= flag15va
	case op == opFlags:
		s.setFlags(arg)
	case op == opTempo:
		d.clock[1] = 0
		d.tempo = Reg16{arg, d.fetch(s)}
	case op == opGate:
		s.GateTime = arg
	case op == opVolume:
		d.setVolume(t, arg)
	case op == opInstrument:
		d.setInstrument(t, arg)
	case op == opOctave:
		s.OctaveFlag = s.OctaveFlag&^flagOctave | arg
	case op == opGlobalTranspose:
		d.transpose = arg
	case op == opTranspose:
		s.Transpose = arg
	case op == opDetune:
		t.Detune = arg
	case op == opPortamento:
		t.Portamento = arg
	case op >= opLoopEnd && op < opJump:
		d.loop(s, op, arg)
	case op == opJump:
		s.Cursor = Reg16{arg, d.fetch(s)}
	case op == opHalt:
		s.Cursor = Reg16{}
		d.silenceChannel(t.channel)
	case op == opDuty:
		d.setDuty(t, arg)
	default:
		return &DecodeError{
			Kind:    KindOpcode,
			Layer:   LayerMusic,
			Channel: t.channel,
			Addr:    at,
			Value:   op,
		}
	}
	return nil
}

// setFlags clears the 15va, triplet and tie bits and ORs in v.
func (s *Sequencer) setFlags(v uint8) {
	s.OctaveFlag = s.OctaveFlag&^(flag15va|flagTriplet|flagTie) | v
}

// loop handles the loop-end and loop-break opcodes. Both are followed
// by a big-endian jump target.
func (d *Driver) loop(s *Sequencer, op, arg uint8) {
	level := (op - opLoopEnd) & 0x03
	if op < opLoopBreak {
		if s.Loops[level] != 0 {
			s.Loops[level]--
		} else {
			s.Loops[level] = arg
		}
		if s.Loops[level] == 0 {
			s.Cursor.Chain().Add(2)
			return
		}
	} else {
		if s.Loops[level]-1 != 0 {
			s.Cursor.Chain().Add(2)
			return
		}
		s.Loops[level] = 0
		s.setFlags(arg)
	}
	hi := d.fetch(s)
	lo := d.fetch(s)
	s.Cursor = Reg16{hi, lo}
}

// setVolume sets the volume nibble. On the sound effect triangle a
// nonzero operand is stored raw as the linear counter base.
func (d *Driver) setVolume(t track, v uint8) {
	if t.music() || t.channel != ChannelTriangle || v == 0 {
		t.VolumeDuty = t.VolumeDuty&0xC0 | v | 0x30
		return
	}
	t.VolumeDuty = v
}

func (d *Driver) setDuty(t track, v uint8) {
	t.VolumeDuty = t.VolumeDuty&0x0F | v | 0x30
}

// setInstrument selects instrument v+1 and flags a reload if it changed.
func (d *Driver) setInstrument(t track, v uint8) {
	n := v + 1
	if n == t.EnvNumber {
		return
	}
	t.EnvNumber = n
	t.EnvState |= stateReload
	d.selectInstrument(n)
}
