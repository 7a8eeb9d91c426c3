package driver

// Envelope levels run from 0 to envelopeMax; the top nibble becomes the
// channel volume.
const envelopeMax = 0xF0

// stepEnvelope advances the ADSR envelope one tick and writes the
// channel's registers. An idle envelope writes nothing.
func (d *Driver) stepEnvelope(t track) error {
	level := t.EnvLevel
	switch t.Phase() {
	case PhaseAttack:
		d.attack(t, level)
	case PhaseDecay:
		d.decay(t, level)
	case PhaseSustain:
	case PhaseRelease:
		d.fadeOut(t, level)
	case PhaseIdle:
		return nil
	default:
		return &DecodeError{
			Kind:    KindEnvelopePhase,
			Layer:   t.layer,
			Channel: t.channel,
			Value:   t.EnvState,
		}
	}
	d.emit(t)
	return nil
}

func (d *Driver) attack(t track, level uint8) {
	rate := envelopeRate(d.inst(instAttack))
	if int(level)+int(rate) >= envelopeMax {
		t.EnvLevel = envelopeMax
		t.EnvState++
		return
	}
	t.EnvLevel = level + rate
}

// decay falls toward the sustain level. A zero rate jumps straight to it.
func (d *Driver) decay(t track, level uint8) {
	sustain := d.inst(instSustain)
	r := d.inst(instDecay)
	if r == 0 {
		t.EnvLevel = sustain
		t.EnvState++
		return
	}
	rate := envelopeRate(r)
	if level < rate {
		t.EnvLevel = sustain
		t.EnvState++
		return
	}
	next := level - rate
	if next < sustain {
		next = sustain
		t.EnvState++
	}
	t.EnvLevel = next
}

// fadeOut runs the release phase. The triangle has no volume control
// and cuts immediately; elsewhere a zero rate holds the level.
func (d *Driver) fadeOut(t track, level uint8) {
	if t.channel == ChannelTriangle {
		t.EnvState++
		t.EnvLevel = 0
		return
	}
	r := d.inst(instRelease)
	if r == 0 {
		return
	}
	rate := envelopeRate(r)
	if level < rate {
		t.EnvLevel = 0
		t.EnvState++
		return
	}
	t.EnvLevel = level - rate
}
