package player

import (
	"encoding/binary"
	"errors"
	"hash/crc32"

	"github.com/user-none/mm5snd/apu"
	"github.com/user-none/mm5snd/driver"
	"github.com/user-none/mm5snd/nsf"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "MM5SPlayer\x00\x00"
	stateHeaderSize = 22 // magic(12) + version(2) + romCRC(4) + dataCRC(4)
)

// playerSerializeSize covers the inline fields: banks(8) + track(1) +
// region(1) + frame(8) + buttons(4) + fadeIn(1).
const playerSerializeSize = nsf.BankSlots + 1 + 1 + 8 + 4 + 1

// SerializeSize is the number of bytes produced by Serialize.
const SerializeSize = stateHeaderSize +
	driver.SerializeSize +
	apu.SynthSerializeSize +
	playerSerializeSize

// Serialize creates a save state holding the driver, the synth and the
// bank mapping of the data image.
func (p *Player) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize)

	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], p.romCRC)

	offset := stateHeaderSize
	drv, err := p.drv.Serialize()
	if err != nil {
		return nil, err
	}
	offset += copy(data[offset:], drv)

	if err := p.synth.Serialize(data[offset:]); err != nil {
		return nil, err
	}
	offset += apu.SynthSerializeSize

	banks := p.image.Mapping()
	offset += copy(data[offset:], banks[:])
	data[offset] = p.track
	data[offset+1] = uint8(p.drv.Region())
	binary.LittleEndian.PutUint64(data[offset+2:], p.frame)
	binary.LittleEndian.PutUint32(data[offset+10:], p.buttons)
	if p.fadeIn {
		data[offset+14] = 1
	}

	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores a save state, including its region.
func (p *Player) Deserialize(data []byte) error {
	if err := p.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	drvState := data[offset : offset+driver.SerializeSize]
	offset += driver.SerializeSize
	synthState := data[offset : offset+apu.SynthSerializeSize]
	offset += apu.SynthSerializeSize

	// Region first: SetTiming drops the synth's tone cache.
	p.SetRegion(Region(data[offset+nsf.BankSlots+1]))
	if err := p.drv.Deserialize(drvState); err != nil {
		return err
	}
	if err := p.synth.Deserialize(synthState); err != nil {
		return err
	}

	for slot := 0; slot < nsf.BankSlots; slot++ {
		p.image.Switch(slot, data[offset+slot])
	}
	offset += nsf.BankSlots
	p.track = data[offset]
	p.frame = binary.LittleEndian.Uint64(data[offset+2:])
	p.buttons = binary.LittleEndian.Uint32(data[offset+10:])
	p.fadeIn = data[offset+14] != 0

	p.renderMeters()
	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (p *Player) VerifyState(data []byte) error {
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

	romCRC := binary.LittleEndian.Uint32(data[14:18])
	if romCRC != p.romCRC {
		return errors.New("save state is for a different NSF")
	}

	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expectedCRC != actualCRC {
		return errors.New("save state data is corrupted")
	}

	return p.drv.VerifyState(data[stateHeaderSize : stateHeaderSize+driver.SerializeSize])
}
