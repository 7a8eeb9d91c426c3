package driver

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "MM5SState\x00\x00\x00"
	stateHeaderSize = 22 // magic(12) + version(2) + layoutCRC(4) + dataCRC(4)
)

// Fixed serialization sizes
const (
	voiceSerializeSize     = 10                                  // 8 fields + pitch(2)
	sequencerSerializeSize = voiceSerializeSize + 2 + 5 + 4      // voice + cursor + timing + loops
	globalSerializeSize    = NumChannels + 2 + 1 + 2 + 2 + 1 + 2 // periodHi + fade + rate + clock + tempo + transpose + instrument
	sfxSerializeSize       = 2 + 9                               // cursor + stream registers
)

// SerializeSize is the number of bytes produced by Serialize.
const SerializeSize = stateHeaderSize +
	NumChannels*sequencerSerializeSize +
	NumChannels*voiceSerializeSize +
	globalSerializeSize +
	sfxSerializeSize

// layoutCRC fingerprints the table layout so a snapshot is only
// restored against the same data image layout.
func (d *Driver) layoutCRC() uint32 {
	var b [7]byte
	b[0] = d.layout.TrackCount
	binary.LittleEndian.PutUint16(b[1:3], d.layout.SongTable)
	binary.LittleEndian.PutUint16(b[3:5], d.layout.InstrumentTable)
	binary.LittleEndian.PutUint16(b[5:7], d.layout.PeriodTable)
	return crc32.ChecksumIEEE(b[:])
}

// Serialize creates a snapshot of the driver state.
func (d *Driver) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize)

	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], d.layoutCRC())

	offset := stateHeaderSize
	for ch := range d.music {
		offset = putSequencer(data, offset, &d.music[ch])
	}
	for ch := range d.sfx {
		offset = putVoice(data, offset, &d.sfx[ch])
	}

	copy(data[offset:], d.periodHi[:])
	offset += NumChannels
	data[offset] = d.fade[0]
	data[offset+1] = d.fade[1]
	data[offset+2] = d.fadeRate
	data[offset+3] = d.clock[0]
	data[offset+4] = d.clock[1]
	data[offset+5] = d.tempo[0]
	data[offset+6] = d.tempo[1]
	data[offset+7] = d.transpose
	binary.LittleEndian.PutUint16(data[offset+8:], d.instrument)
	offset += 10

	binary.LittleEndian.PutUint16(data[offset:], d.sfxCursor)
	offset += 2
	copy(data[offset:], []byte{
		d.sfxPriority, d.sfxMask, d.sfxSlide, d.sfxDuration, d.sfxGate,
		d.sfxSustain, d.sfxLoop, d.sfxRestart, d.sfxPitchMul,
	})

	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores driver state from a snapshot. Region is NOT
// restored and any sticky decode error is cleared.
func (d *Driver) Deserialize(data []byte) error {
	if err := d.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	for ch := range d.music {
		offset = getSequencer(data, offset, &d.music[ch])
	}
	for ch := range d.sfx {
		offset = getVoice(data, offset, &d.sfx[ch])
	}

	copy(d.periodHi[:], data[offset:offset+NumChannels])
	offset += NumChannels
	d.fade = Reg16{data[offset], data[offset+1]}
	d.fadeRate = data[offset+2]
	d.clock = Reg16{data[offset+3], data[offset+4]}
	d.tempo = Reg16{data[offset+5], data[offset+6]}
	d.transpose = data[offset+7]
	d.instrument = binary.LittleEndian.Uint16(data[offset+8:])
	offset += 10

	d.sfxCursor = binary.LittleEndian.Uint16(data[offset:])
	offset += 2
	d.sfxPriority = data[offset]
	d.sfxMask = data[offset+1]
	d.sfxSlide = data[offset+2]
	d.sfxDuration = data[offset+3]
	d.sfxGate = data[offset+4]
	d.sfxSustain = data[offset+5]
	d.sfxLoop = data[offset+6]
	d.sfxRestart = data[offset+7]
	d.sfxPitchMul = data[offset+8]

	d.err = nil
	return nil
}

// VerifyState checks if a snapshot is valid without loading it.
func (d *Driver) VerifyState(data []byte) error {
	if len(data) < SerializeSize {
		return errors.New("save state too short")
	}

	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return errors.New("unsupported save state version")
	}

	if binary.LittleEndian.Uint32(data[14:18]) != d.layoutCRC() {
		return errors.New("save state is for a different layout")
	}

	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expectedCRC != actualCRC {
		return errors.New("save state data is corrupted")
	}

	return nil
}

func putVoice(data []byte, offset int, v *Voice) int {
	copy(data[offset:], []byte{
		v.EnvNumber, v.EnvState, v.LFOPhase, v.VolumeDuty,
		v.EnvLevel, v.Detune, v.Portamento, v.Note,
		v.Pitch[0], v.Pitch[1],
	})
	return offset + voiceSerializeSize
}

func getVoice(data []byte, offset int, v *Voice) int {
	b := data[offset : offset+voiceSerializeSize]
	v.EnvNumber = b[0]
	v.EnvState = b[1]
	v.LFOPhase = b[2]
	v.VolumeDuty = b[3]
	v.EnvLevel = b[4]
	v.Detune = b[5]
	v.Portamento = b[6]
	v.Note = b[7]
	v.Pitch = Reg16{b[8], b[9]}
	return offset + voiceSerializeSize
}

func putSequencer(data []byte, offset int, s *Sequencer) int {
	offset = putVoice(data, offset, &s.Voice)
	copy(data[offset:], []byte{
		s.Cursor[0], s.Cursor[1],
		s.OctaveFlag, s.Transpose, s.NoteWait, s.GateTime, s.SustainWait,
	})
	copy(data[offset+7:], s.Loops[:])
	return offset + sequencerSerializeSize - voiceSerializeSize
}

func getSequencer(data []byte, offset int, s *Sequencer) int {
	offset = getVoice(data, offset, &s.Voice)
	b := data[offset : offset+sequencerSerializeSize-voiceSerializeSize]
	s.Cursor = Reg16{b[0], b[1]}
	s.OctaveFlag = b[2]
	s.Transpose = b[3]
	s.NoteWait = b[4]
	s.GateTime = b[5]
	s.SustainWait = b[6]
	copy(s.Loops[:], b[7:11])
	return offset + sequencerSerializeSize - voiceSerializeSize
}
