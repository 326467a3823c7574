package sensitivity

import "log"

// Adjustment is a single live-tuning action bound to a debug key.
type Adjustment int

const (
	AdjustNone Adjustment = iota
	MaxSensUp
	MaxSensDown
	MinSensUp
	MinSensDown
	RangeUp
	RangeDown
	GrowthUp
	GrowthDown
	TogglePlateau
)

const (
	sensStep   = 0.1
	rangeStep  = 10
	growthStep = 0.01

	minSensFloor    = 0.01
	rangeFloor      = 1
	growthBaseFloor = 0.5
)

// Tuner owns the live curve parameters and applies debug adjustments to them.
type Tuner struct {
	params  CurveParameters
	Verbose bool
}

func NewTuner(p CurveParameters) *Tuner {
	t := &Tuner{params: p}
	t.normalize()
	return t
}

func (t *Tuner) Params() CurveParameters {
	return t.params
}

func (t *Tuner) Set(p CurveParameters) {
	t.params = p
	t.normalize()
}

// Apply performs one adjustment and reports whether the parameters changed.
func (t *Tuner) Apply(a Adjustment) bool {
	before := t.params
	switch a {
	case MaxSensUp:
		t.params.MaxSens += sensStep
	case MaxSensDown:
		t.params.MaxSens -= sensStep
	case MinSensUp:
		t.params.MinSens += sensStep
	case MinSensDown:
		t.params.MinSens -= sensStep
	case RangeUp:
		t.params.Range += rangeStep
	case RangeDown:
		t.params.Range -= rangeStep
	case GrowthUp:
		t.params.GrowthBase += growthStep
	case GrowthDown:
		t.params.GrowthBase -= growthStep
	case TogglePlateau:
		t.params.Plateau = !t.params.Plateau
	default:
		return false
	}
	t.normalize()
	changed := t.params != before
	if changed && t.Verbose {
		p := t.params
		log.Printf("[Curve] min=%.2f max=%.2f range=%.0f base=%.3f offset=%.0f plateau=%t\n",
			p.MinSens, p.MaxSens, p.Range, p.GrowthBase, p.Offset, p.Plateau)
	}
	return changed
}

func (t *Tuner) normalize() {
	if t.params.MinSens < minSensFloor {
		t.params.MinSens = minSensFloor
	}
	if t.params.MaxSens < t.params.MinSens {
		t.params.MaxSens = t.params.MinSens
	}
	if t.params.Range < rangeFloor {
		t.params.Range = rangeFloor
	}
	if t.params.GrowthBase < growthBaseFloor {
		t.params.GrowthBase = growthBaseFloor
	}
	if t.params.Offset < 0 {
		t.params.Offset = 0
	}
}
