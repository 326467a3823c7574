package scenario

import (
	"math"
	"math/rand"

	"aimtrainer/internal/targets"

	"github.com/go-gl/mathgl/mgl32"
)

// Scenario is a fixed target layout plus the movement its targets use.
type Scenario struct {
	Name        string
	Count       int
	Radius      float32
	Speed       float32
	Pattern     targets.Kind
	Orbit       float32 // circular patterns only
	FigureEight bool
	Layout      []mgl32.Vec3 // initial positions, one per target
	Area        targets.Bounds
	// Respawn keeps Count targets alive for the whole phase.
	Respawn bool
}

const wallZ = -10

func wall(minX, minY, maxX, maxY float32) targets.Bounds {
	return targets.Bounds{Min: mgl32.Vec3{minX, minY, wallZ}, Max: mgl32.Vec3{maxX, maxY, wallZ}}
}

// Catalog is the fixed training order.
func Catalog() []Scenario {
	return []Scenario{
		{
			Name: "GridShot", Count: 3, Radius: 0.4, Pattern: targets.KindStatic,
			Layout:  []mgl32.Vec3{{-1.5, 2.5, wallZ}, {0, 1.7, wallZ}, {1.5, 0.9, wallZ}},
			Area:    wall(-2, 0.9, 2, 2.9),
			Respawn: true,
		},
		{
			Name: "Flicking", Count: 1, Radius: 0.3, Pattern: targets.KindStatic,
			Layout:  []mgl32.Vec3{{4, 3, wallZ}},
			Area:    wall(-6, 0.8, 6, 4),
			Respawn: true,
		},
		{
			Name: "Tracking", Count: 1, Radius: 0.5, Speed: 3, Pattern: targets.KindLinear,
			Layout:  []mgl32.Vec3{{0, 2, wallZ}},
			Area:    wall(-5, 1, 5, 3),
			Respawn: true,
		},
		{
			Name: "DynamicClicking", Count: 4, Radius: 0.4, Speed: 2.5, Pattern: targets.KindLinear,
			Layout:  []mgl32.Vec3{{-3, 1.5, wallZ}, {-1, 3, wallZ}, {1, 1.2, wallZ}, {3, 2.6, wallZ}},
			Area:    wall(-5, 1, 5, 3.5),
			Respawn: true,
		},
		{
			Name: "CircularTracking", Count: 1, Radius: 0.5, Speed: 3, Pattern: targets.KindCircular, Orbit: 2,
			Layout:  []mgl32.Vec3{{0, 2.2, wallZ}},
			Area:    wall(-2, 0.2, 2, 4.2),
			Respawn: true,
		},
		{
			Name: "FigureEight", Count: 1, Radius: 0.5, Speed: 3, Pattern: targets.KindCircular, Orbit: 2.5, FigureEight: true,
			Layout:  []mgl32.Vec3{{0, 2.2, wallZ}},
			Area:    wall(-2.5, 0.9, 2.5, 3.5),
			Respawn: true,
		},
		{
			Name: "RandomStrafe", Count: 2, Radius: 0.45, Speed: 3, Pattern: targets.KindRandom,
			Layout:  []mgl32.Vec3{{-2, 2, wallZ}, {2, 2, wallZ}},
			Area:    wall(-5, 1, 5, 3.5),
			Respawn: true,
		},
		{
			Name: "ReactiveTargets", Count: 2, Radius: 0.45, Speed: 4, Pattern: targets.KindReactive,
			Layout:  []mgl32.Vec3{{-2, 2.2, wallZ}, {2, 1.6, wallZ}},
			Area:    wall(-5, 1, 5, 3.5),
			Respawn: true,
		},
		{
			Name: "EvasiveTargets", Count: 1, Radius: 0.5, Speed: 3.5, Pattern: targets.KindEvasive,
			Layout:  []mgl32.Vec3{{0, 2, wallZ}},
			Area:    wall(-5, 1, 5, 3),
			Respawn: true,
		},
	}
}

// Spec builds the i-th target of the scenario at pos.
func (s Scenario) Spec(pos mgl32.Vec3, i int, rng *rand.Rand) targets.Spec {
	area := s.Area
	spec := targets.Spec{Position: pos, Radius: s.Radius}
	switch s.Pattern {
	case targets.KindLinear:
		dir := float32(1)
		if i%2 == 1 {
			dir = -1
		}
		vel := mgl32.Vec3{dir, 0, 0}
		if rng != nil {
			theta := rng.Float64() * 2 * math.Pi
			vel = mgl32.Vec3{float32(math.Cos(theta)), float32(math.Sin(theta)), 0}
		}
		spec.Movement = targets.Linear{Velocity: vel.Mul(s.Speed), Bounds: &area}
	case targets.KindCircular:
		c := targets.Circular{
			Center:      pos,
			Radius:      s.Orbit,
			Speed:       s.Speed,
			Phase:       float32(i) * 2 * math.Pi / float32(max(s.Count, 1)),
			FigureEight: s.FigureEight,
		}
		spec.Position = c.At(0)
		spec.Movement = c
	case targets.KindRandom:
		spec.Movement = targets.Random{MaxSpeed: s.Speed, Bounds: &area}
	case targets.KindReactive:
		spec.Movement = targets.Reactive{MaxSpeed: s.Speed, Bounds: &area}
	case targets.KindEvasive:
		spec.Movement = targets.Evasive{MaxSpeed: s.Speed, Bounds: &area, Reverse: i%2 == 1}
	default:
		spec.Movement = targets.Static{}
	}
	return spec
}

// respawnPoint is where a replacement target appears. Circular scenarios
// reuse their fixed orbit center.
func (s Scenario) respawnPoint(i int, rng *rand.Rand) mgl32.Vec3 {
	fixed := s.Area.Min.Add(s.Area.Max).Mul(0.5)
	if len(s.Layout) > 0 {
		fixed = s.Layout[i%len(s.Layout)]
	}
	if s.Pattern == targets.KindCircular || rng == nil {
		return fixed
	}
	return targets.RandomPoint(rng, s.Area.Min, s.Area.Max)
}
