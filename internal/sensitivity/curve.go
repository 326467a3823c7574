package sensitivity

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CurveParameters shapes the speed-to-multiplier transfer curve.
type CurveParameters struct {
	MinSens    float32 `json:"min_sens"`
	MaxSens    float32 `json:"max_sens"`
	Range      float32 `json:"range"`       // input speed span (px/s) over which sens ramps up
	GrowthBase float32 `json:"growth_base"` // >1 accelerating, <=1 smoothstep
	Offset     float32 `json:"offset"`      // speed below which MinSens applies
	Plateau    bool    `json:"plateau"`
}

func DefaultCurve() CurveParameters {
	return CurveParameters{
		MinSens:    1.0,
		MaxSens:    3.0,
		Range:      500.0,
		GrowthBase: 1.02,
		Offset:     50.0,
		Plateau:    true,
	}
}

// Evaluate returns the sensitivity multiplier for an input speed. The result
// always lies in [MinSens, MaxSens] for non-degenerate parameters.
func Evaluate(speed float32, p CurveParameters) float32 {
	if speed <= p.Offset {
		return p.MinSens
	}

	diff := p.MaxSens - p.MinSens
	if diff <= 0 || p.Range <= 0 {
		return p.MinSens
	}

	input := speed - p.Offset
	t := clamp01(input / p.Range)
	// Past the range the curve sits at MaxSens, with or without a plateau.
	if t >= 1.0 {
		return p.MaxSens
	}

	var increase float32
	if p.GrowthBase <= 1.0 {
		increase = diff * (t * t * (3 - 2*t))
	} else {
		base := float64(p.GrowthBase)
		denom := math.Pow(base, float64(p.Range)) - 1
		var expo float64 = 1
		if denom > 0 && !math.IsInf(denom, 0) {
			expo = (math.Pow(base, float64(input)) - 1) / denom
		}
		if math.IsNaN(expo) || math.IsInf(expo, 0) {
			expo = 1
		}
		increase = diff * clamp01(float32(expo))
	}

	return min(p.MinSens+increase, p.MaxSens)
}

// Apply scales a raw mouse delta by the multiplier for the given speed.
func Apply(delta mgl32.Vec2, speed float32, p CurveParameters) mgl32.Vec2 {
	return delta.Mul(Evaluate(speed, p))
}

func clamp01(v float32) float32 {
	return mgl32.Clamp(v, 0, 1)
}
