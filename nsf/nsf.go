// Package nsf loads NES Sound Format files and serves their data as a
// banked read-only image.
package nsf

import (
	"bytes"
	"encoding/binary"
	"fmt"

	emucore "github.com/user-none/eblitui/api"
)

// HeaderSize is the size of the NSF header preceding program data.
const HeaderSize = 0x80

const magic = "NESM\x1A"

// Bank geometry of the NSF mapper.
const (
	BankSize   = 0x1000
	BankSlots  = 8
	windowBase = 0x8000
)

// Region flags at offset $7A.
const (
	flagPAL  = 0x01
	flagDual = 0x02
)

// Header is the decoded NSF header.
type Header struct {
	Version    uint8
	Songs      uint8
	StartSong  uint8 // 1-based
	LoadAddr   uint16
	InitAddr   uint16
	PlayAddr   uint16
	Name       string
	Artist     string
	Copyright  string
	SpeedNTSC  uint16 // microseconds per play call
	SpeedPAL   uint16
	Banks      [BankSlots]uint8
	RegionFlag uint8
	ExtraChips uint8
}

// Banked reports whether the file uses bank switching.
func (h *Header) Banked() bool {
	for _, b := range h.Banks {
		if b != 0 {
			return true
		}
	}
	return false
}

// ParseHeader decodes the header at the start of data.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("NSF too short to contain header (%d bytes)", len(data))
	}
	if string(data[0:5]) != magic {
		return nil, fmt.Errorf("invalid NSF magic: %q", data[0:5])
	}

	h := &Header{
		Version:    data[0x05],
		Songs:      data[0x06],
		StartSong:  data[0x07],
		LoadAddr:   binary.LittleEndian.Uint16(data[0x08:]),
		InitAddr:   binary.LittleEndian.Uint16(data[0x0A:]),
		PlayAddr:   binary.LittleEndian.Uint16(data[0x0C:]),
		Name:       cString(data[0x0E:0x2E]),
		Artist:     cString(data[0x2E:0x4E]),
		Copyright:  cString(data[0x4E:0x6E]),
		SpeedNTSC:  binary.LittleEndian.Uint16(data[0x6E:]),
		SpeedPAL:   binary.LittleEndian.Uint16(data[0x78:]),
		RegionFlag: data[0x7A],
		ExtraChips: data[0x7B],
	}
	copy(h.Banks[:], data[0x70:0x78])

	if h.Songs == 0 {
		return nil, fmt.Errorf("NSF declares no songs")
	}
	if !h.Banked() && h.LoadAddr < windowBase {
		return nil, fmt.Errorf("load address $%04X below $%04X", h.LoadAddr, windowBase)
	}
	return h, nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// DetectRegion returns the timing region the file asks for. Dual-region
// files play as NTSC.
func DetectRegion(h *Header) emucore.Region {
	if h.RegionFlag&flagDual == 0 && h.RegionFlag&flagPAL != 0 {
		return emucore.RegionPAL
	}
	return emucore.RegionNTSC
}

// Image is the $8000-$FFFF window of an NSF. Reads below the window
// return 0.
type Image struct {
	Header *Header

	data  []byte
	banks [BankSlots]uint8
	flat  bool
}

// Load parses an NSF file and maps its program data.
func Load(file []byte) (*Image, error) {
	h, err := ParseHeader(file)
	if err != nil {
		return nil, err
	}
	prog := file[HeaderSize:]

	img := &Image{Header: h}
	if h.Banked() {
		// Banked data is padded so the load address lands at its
		// offset within the first bank.
		pad := int(h.LoadAddr & (BankSize - 1))
		img.data = make([]byte, pad+len(prog))
		copy(img.data[pad:], prog)
		for slot, b := range h.Banks {
			if int(b) >= img.Banks() {
				return nil, fmt.Errorf("nsf: slot %d maps bank %d of %d", slot, b, img.Banks())
			}
			img.Switch(slot, b)
		}
	} else {
		img.flat = true
		img.data = make([]byte, 0x10000-windowBase)
		copy(img.data[h.LoadAddr-windowBase:], prog)
	}
	return img, nil
}

// Read implements the driver's data reader.
func (img *Image) Read(addr uint16) uint8 {
	if addr < windowBase {
		return 0
	}
	off := int(addr - windowBase)
	if !img.flat {
		slot := off / BankSize
		off = int(img.banks[slot])*BankSize + off%BankSize
	}
	if off >= len(img.data) {
		return 0
	}
	return img.data[off]
}

// Switch maps bank into a 4K slot of the window, as a write to
// $5FF8+slot would.
func (img *Image) Switch(slot int, bank uint8) {
	if slot < 0 || slot >= BankSlots {
		return
	}
	img.banks[slot] = bank
}

// Banks returns the number of 4K banks in the program data.
func (img *Image) Banks() int {
	return (len(img.data) + BankSize - 1) / BankSize
}

// Mapping returns the bank in each slot of the window.
func (img *Image) Mapping() [BankSlots]uint8 {
	return img.banks
}
