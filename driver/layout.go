package driver

// Layout locates the driver's data tables inside the read-only image.
type Layout struct {
	// TrackCount is the number of song table entries. Track numbers
	// below the meta-command range wrap modulo this count.
	TrackCount uint8

	// SongTable is the base of the song pointer table. The pointer for
	// track t is stored big-endian at SongTable+2+2t.
	SongTable uint16

	// InstrumentTable holds 8-byte instrument records. Instrument n
	// (1-based) lives at InstrumentTable + (n-1)*8.
	InstrumentTable uint16

	// PeriodTable holds little-endian pitch values indexed by note.
	PeriodTable uint16
}

// MM5Layout is the table layout of the Mega Man 5 sound bank.
var MM5Layout = Layout{
	TrackCount:      0x4C,
	SongTable:       0x8A41,
	InstrumentTable: 0x8ADB,
	PeriodTable:     0x8959,
}

// Instrument record offsets.
const (
	instAttack = iota
	instDecay
	instSustain
	instRelease
	instLFORate
	instVibrato
	instTremolo
	instNoiseMode
)

// LayoutByName returns a known layout by its short name.
func LayoutByName(name string) (Layout, bool) {
	switch name {
	case "mm5":
		return MM5Layout, true
	}
	return Layout{}, false
}
