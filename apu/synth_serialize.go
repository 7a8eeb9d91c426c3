package apu

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/user-none/go-chip-sn76489"
)

const synthSerializeVersion = 1

// SynthSerializeSize is the number of bytes needed to serialize a Synth.
// version(1) + registers(24) + psg(41) + tone(6) + atten(4) + noise(1) +
// filterL(8) + filterR(8)
const SynthSerializeSize = 1 + regCount + sn76489.SerializeSize + 3*2 + 4 + 1 + 8 + 8

// Serialize writes the register shadow, PSG core and filter state to buf.
func (s *Synth) Serialize(buf []byte) error {
	if len(buf) < SynthSerializeSize {
		return errors.New("synth serialize buffer too small")
	}

	buf[0] = synthSerializeVersion
	offset := 1
	offset += copy(buf[offset:], s.regs.regs[:])

	if err := s.psg.Serialize(buf[offset:]); err != nil {
		return err
	}
	offset += sn76489.SerializeSize

	for _, n := range s.tone {
		binary.LittleEndian.PutUint16(buf[offset:], n)
		offset += 2
	}
	offset += copy(buf[offset:], s.atten[:])
	buf[offset] = s.noise
	offset++
	binary.LittleEndian.PutUint64(buf[offset:], math.Float64bits(s.filterL))
	binary.LittleEndian.PutUint64(buf[offset+8:], math.Float64bits(s.filterR))
	return nil
}

// Deserialize restores state written by Serialize. The last rendered
// frame is discarded.
func (s *Synth) Deserialize(buf []byte) error {
	if len(buf) < SynthSerializeSize {
		return errors.New("synth deserialize buffer too small")
	}
	if buf[0] != synthSerializeVersion {
		return errors.New("unsupported synth state version")
	}

	offset := 1
	if err := s.psg.Deserialize(buf[offset+regCount:]); err != nil {
		return err
	}
	offset += copy(s.regs.regs[:], buf[offset:offset+regCount])
	offset += sn76489.SerializeSize

	for i := range s.tone {
		s.tone[i] = binary.LittleEndian.Uint16(buf[offset:])
		offset += 2
	}
	offset += copy(s.atten[:], buf[offset:offset+len(s.atten)])
	s.noise = buf[offset]
	offset++
	s.filterL = math.Float64frombits(binary.LittleEndian.Uint64(buf[offset:]))
	s.filterR = math.Float64frombits(binary.LittleEndian.Uint64(buf[offset+8:]))
	s.samples = s.samples[:0]
	return nil
}
