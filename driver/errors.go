package driver

import (
	"errors"
	"fmt"
)

// ErrCorruptSequence is returned when bytecode or voice state cannot be
// decoded. Once returned, Advance keeps returning it until the next Init.
var ErrCorruptSequence = errors.New("corrupt sequence data")

// DecodeErrorKind identifies what failed to decode.
type DecodeErrorKind uint8

const (
	KindOpcode        DecodeErrorKind = iota // unknown music opcode
	KindSFXCommand                           // sound effect command bit above 4
	KindEnvelopePhase                        // envelope phase outside 0..4
)

func (k DecodeErrorKind) String() string {
	switch k {
	case KindOpcode:
		return "opcode"
	case KindSFXCommand:
		return "sfx command"
	case KindEnvelopePhase:
		return "envelope phase"
	}
	return "unknown"
}

// DecodeError describes a corrupt sequence condition.
type DecodeError struct {
	Kind    DecodeErrorKind
	Layer   Layer
	Channel uint8
	Addr    uint16 // stream address, 0 for envelope state
	Value   uint8
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: %s channel %d: bad %s $%02X (addr=$%04X)",
		ErrCorruptSequence, e.Layer, e.Channel, e.Kind, e.Value, e.Addr)
}

func (e *DecodeError) Unwrap() error {
	return ErrCorruptSequence
}
