package driver

// Note lengths in ticks, indexed by (note byte >> 5) - 1.
var (
	straightLengths = [7]uint8{3, 6, 12, 24, 48, 96, 192}
	tripletLengths  = [7]uint8{2, 4, 8, 16, 32, 64, 128}
)

// octaveBase maps the low nibble of the octave/flag byte to a note
// offset. The upper eight entries apply when the 15va bit is set.
var octaveBase = [16]uint8{
	0, 12, 24, 36, 48, 60, 72, 84,
	24, 36, 48, 60, 72, 84, 96, 108,
}

// envelopeRates maps a 5-bit instrument rate index to a per-tick step.
var envelopeRates = [32]uint8{
	0, 1, 2, 3, 4, 5, 6, 7,
	8, 9, 10, 11, 12, 14, 15, 16,
	18, 19, 20, 22, 24, 27, 30, 35,
	40, 48, 60, 80, 126, 127, 254, 255,
}

func envelopeRate(index uint8) uint8 {
	return envelopeRates[index&0x1F]
}
