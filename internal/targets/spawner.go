package targets

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Spawner tops the store up on a repeating timer while it holds fewer than MaxTargets.
type Spawner struct {
	Interval   time.Duration
	MaxTargets int
	AreaMin    mgl32.Vec3
	AreaMax    mgl32.Vec3
	Radius     float32
	TTL        time.Duration
	Movement   Movement
	Color      string

	elapsed time.Duration
}

// BasicSpawner is the free-play spawner: static targets in front of the player
// that expire after five seconds.
func BasicSpawner() *Spawner {
	return &Spawner{
		Interval:   time.Second,
		MaxTargets: 5,
		AreaMin:    mgl32.Vec3{-5, 0.5, -8},
		AreaMax:    mgl32.Vec3{5, 3, -3},
		Radius:     DefaultRadius,
		TTL:        5 * time.Second,
		Movement:   Static{},
		Color:      "#ff3333",
	}
}

// Update reports whether a target was spawned this frame.
func (sp *Spawner) Update(dt time.Duration, s *Store, rng *rand.Rand) (Target, bool) {
	if sp.Interval <= 0 {
		return Target{}, false
	}
	sp.elapsed += dt
	if sp.elapsed < sp.Interval {
		return Target{}, false
	}
	sp.elapsed %= sp.Interval
	if s.Count() >= sp.MaxTargets {
		return Target{}, false
	}
	return s.Add(Spec{
		Position: RandomPoint(rng, sp.AreaMin, sp.AreaMax),
		Radius:   sp.Radius,
		TTL:      sp.TTL,
		Movement: sp.Movement,
		Color:    sp.Color,
	}), true
}

func (sp *Spawner) Reset() {
	sp.elapsed = 0
}

// RandomPoint picks a uniform point in the box spanned by lo and hi.
func RandomPoint(rng *rand.Rand, lo, hi mgl32.Vec3) mgl32.Vec3 {
	var p mgl32.Vec3
	for i := 0; i < 3; i++ {
		p[i] = lo[i] + rng.Float32()*(hi[i]-lo[i])
	}
	return p
}
