package driver

// Channel numbers. Register blocks run in the opposite order: channel 3
// drives $4000 and channel 0 drives $400C.
const (
	ChannelNoise    = 0
	ChannelTriangle = 1
	ChannelPulse2   = 2
	ChannelPulse1   = 3
	NumChannels     = 4
)

// Layer identifies which of the two voice sets owns a record.
type Layer uint8

const (
	LayerSFX Layer = iota
	LayerMusic
)

func (l Layer) String() string {
	if l == LayerSFX {
		return "sfx"
	}
	return "music"
}

// Envelope phases held in the low three bits of EnvState.
const (
	PhaseAttack  = 0
	PhaseDecay   = 1
	PhaseSustain = 2
	PhaseRelease = 3
	PhaseIdle    = 4
)

// EnvState flag bits.
const (
	phaseMask       = 0x07
	stateReload     = 0x08 // new instrument pending
	statePortamento = 0x20 // glide in progress
	stateLFOReflect = 0x40 // LFO phase read inverted
	stateLFONegate  = 0x80 // vibrato subtracts
	stateLFOStep    = 0x40 // quadrant increment on phase overflow
	stateKeep       = 0xFF &^ (stateReload | stateLFOReflect | stateLFONegate)
)

// Voice is the per-channel synthesis state shared by the music and
// sound effect layers.
type Voice struct {
	EnvNumber  uint8 // 1-based instrument, 0 when unset
	EnvState   uint8 // phase plus flag bits
	LFOPhase   uint8
	VolumeDuty uint8 // duty/volume register image
	EnvLevel   uint8 // 0..0xF0
	Detune     uint8 // signed
	Portamento uint8 // bit 7 direction, low bits rate
	Note       uint8 // 1-based note index, 0 when none
	Pitch      Reg16 // 14-bit pitch value

	channel uint8
	layer   Layer
}

// Reset clears the voice while keeping its channel identity.
func (v *Voice) Reset() {
	*v = Voice{channel: v.channel, layer: v.layer}
}

func (v *Voice) Channel() uint8 { return v.channel }
func (v *Voice) Layer() Layer   { return v.layer }

// Phase returns the current envelope phase.
func (v *Voice) Phase() uint8 { return v.EnvState & phaseMask }

func (v *Voice) setPhase(p uint8) {
	v.EnvState = v.EnvState&^phaseMask | p
}

// release moves the envelope into its release phase.
func (v *Voice) release() {
	v.setPhase(PhaseRelease)
}

// lfo returns the LFO phase, reflected in the odd quadrants.
func (v *Voice) lfo() uint8 {
	if v.EnvState&stateLFOReflect != 0 {
		return v.LFOPhase ^ 0xFF
	}
	return v.LFOPhase
}

// Octave/flag byte bits.
const (
	flagOctave  = 0x07
	flag15va    = 0x08
	flagDot     = 0x10
	flagTriplet = 0x20
	flagTie     = 0x40
	flagTied    = 0x80 // previous note was tied into this one
)

// Sequencer is a music voice plus its bytecode cursor and timing state.
type Sequencer struct {
	Voice

	Cursor      Reg16 // 0 when halted
	OctaveFlag  uint8
	Transpose   uint8
	NoteWait    uint8
	GateTime    uint8
	SustainWait uint8
	Loops       [4]uint8
}

// Reset clears the sequencer and its voice.
func (s *Sequencer) Reset() {
	v := s.Voice
	v.Reset()
	*s = Sequencer{Voice: v}
}

// Active reports whether the sequencer still has a stream to read.
func (s *Sequencer) Active() bool {
	return s.Cursor.Uint16() != 0
}

// track pairs a voice with its sequencer. seq is nil on the sound
// effect layer.
type track struct {
	*Voice
	seq *Sequencer
}

func (t track) music() bool { return t.seq != nil }

// registerBase returns the first APU register of a channel.
func registerBase(ch uint8) uint16 {
	return 0x4000 | uint16((ch&3)^3)<<2
}
