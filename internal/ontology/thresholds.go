package ontology

// Thresholds are the confidence and similarity cutoffs used by the
// decision engine and spell corrector. The defaults were tuned by hand
// against logged utterances; treat them as configuration, not semantics.
type Thresholds struct {
	Strict  float64 // auto-accept
	Lenient float64 // accept with head noun + time present
	Rescue  float64 // minimum for the external fallback path
	Reject  float64 // below this the parse is rejected outright

	Spell          float64 // general spell-correction similarity
	SpellProtected float64 // cross-domain correction in symptomatic context
}

// DefaultThresholds returns the tuned default cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Strict:         0.80,
		Lenient:        0.72,
		Rescue:         0.65,
		Reject:         0.50,
		Spell:          0.88,
		SpellProtected: 0.94,
	}
}

// Valid reports whether the tiers are ordered sensibly.
func (t Thresholds) Valid() bool {
	return t.Reject <= t.Rescue && t.Rescue <= t.Lenient && t.Lenient <= t.Strict &&
		t.Spell > 0 && t.Spell <= t.SpellProtected && t.SpellProtected <= 1
}
