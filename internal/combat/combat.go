package combat

import (
	"math"
	"time"

	"aimtrainer/internal/hitbox"
	"aimtrainer/internal/targets"

	"github.com/go-gl/mathgl/mgl32"
)

const DefaultCooldown = 100 * time.Millisecond

// RecoilStep is a yaw/pitch kick in degrees.
type RecoilStep struct {
	Yaw   float32
	Pitch float32
}

// DefaultRecoilPattern climbs, then drifts left and right.
var DefaultRecoilPattern = []RecoilStep{
	{0, 0}, {0, 0.3}, {0.05, 0.6}, {-0.05, 0.9}, {0.1, 1.2},
	{0.2, 1.4}, {0.35, 1.5}, {0.2, 1.6}, {-0.1, 1.6}, {-0.35, 1.7},
	{-0.5, 1.7}, {-0.3, 1.8}, {0.1, 1.8}, {0.4, 1.8}, {0.6, 1.9},
}

// ShootTracker gates shots behind a cooldown and counts shots for spray patterns.
type ShootTracker struct {
	Cooldown time.Duration
	Pattern  []RecoilStep

	lastShot  time.Duration
	shotCount int
	fired     bool
	released  time.Duration
}

func NewShootTracker(cooldown time.Duration) *ShootTracker {
	return &ShootTracker{Cooldown: cooldown}
}

// Ready reports whether the cooldown has elapsed. The first shot is always allowed.
func (st *ShootTracker) Ready(now time.Duration) bool {
	return !st.fired || now-st.lastShot >= st.Cooldown
}

// Accept resets the cooldown. It is called for every accepted shot, hit or miss.
func (st *ShootTracker) Accept(now time.Duration) {
	st.fired = true
	st.lastShot = now
	st.shotCount++
}

// Release tracks how long the trigger has been up; a release longer than the
// cooldown resets the spray.
func (st *ShootTracker) Release(dt time.Duration) {
	st.released += dt
	if st.released > st.Cooldown {
		st.shotCount = 0
	}
}

func (st *ShootTracker) Hold() {
	st.released = 0
}

func (st *ShootTracker) ShotCount() int {
	return st.shotCount
}

// Recoil is the kick for the next shot, or zero without a pattern.
func (st *ShootTracker) Recoil() RecoilStep {
	if len(st.Pattern) == 0 {
		return RecoilStep{}
	}
	return st.Pattern[st.shotCount%len(st.Pattern)]
}

// Kick perturbs a unit ray direction by a recoil step.
func Kick(dir mgl32.Vec3, step RecoilStep) mgl32.Vec3 {
	if step.Yaw == 0 && step.Pitch == 0 {
		return dir
	}
	yaw := mgl32.HomogRotate3DY(mgl32.DegToRad(-step.Yaw))
	right := dir.Cross(mgl32.Vec3{0, 1, 0})
	if right.LenSqr() < 1e-8 {
		return yaw.Mul4x1(dir.Vec4(0)).Vec3().Normalize()
	}
	pitch := mgl32.HomogRotate3D(mgl32.DegToRad(step.Pitch), right.Normalize())
	return yaw.Mul4(pitch).Mul4x1(dir.Vec4(0)).Vec3().Normalize()
}

type Candidate struct {
	ID       int
	Distance float32
	Position mgl32.Vec3
}

// Nearest returns the hittable target with the smallest positive distance along the ray.
func Nearest(ray hitbox.Ray, list []targets.Target) (Candidate, bool) {
	best := Candidate{Distance: float32(math.Inf(1))}
	found := false
	for _, t := range list {
		if !t.Hittable() {
			continue
		}
		d, ok := t.Hitbox.Intersect(ray, t.Position)
		if !ok || d >= best.Distance {
			continue
		}
		best = Candidate{ID: t.ID, Distance: d, Position: ray.At(d)}
		found = true
	}
	return best, found
}

type Shot struct {
	Accepted bool
	Hit      bool
	TargetID int
	Distance float32
	Position mgl32.Vec3
	Ray      hitbox.Ray
}

// Shooter resolves fire actions against the live targets.
type Shooter struct {
	Tracker *ShootTracker
	Spray   bool
}

func NewShooter(cooldown time.Duration, spray bool) *Shooter {
	st := NewShootTracker(cooldown)
	if spray {
		st.Pattern = DefaultRecoilPattern
	}
	return &Shooter{Tracker: st, Spray: spray}
}

// Fire casts one ray. Rejected shots count as neither hit nor miss; at most
// one target is hit per accepted shot.
func (s *Shooter) Fire(now time.Duration, ray hitbox.Ray, list []targets.Target) Shot {
	if !s.Tracker.Ready(now) {
		return Shot{}
	}
	if s.Spray {
		ray.Direction = Kick(ray.Direction, s.Tracker.Recoil())
	}
	s.Tracker.Accept(now)

	shot := Shot{Accepted: true, Ray: ray}
	if c, ok := Nearest(ray, list); ok {
		shot.Hit = true
		shot.TargetID = c.ID
		shot.Distance = c.Distance
		shot.Position = c.Position
	}
	return shot
}
