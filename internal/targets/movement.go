package targets

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

type Kind string

const (
	KindStatic   Kind = "static"
	KindLinear   Kind = "linear"
	KindCircular Kind = "circular"
	KindRandom   Kind = "random"
	KindReactive Kind = "reactive"
	KindEvasive  Kind = "evasive"
)

const (
	RandomResample   = float32(2.0)
	ReactiveResample = float32(0.5)
	stillSpeedSq     = 1e-6
)

// Movement is a closed set of per-target motion patterns. Update returns the
// new position together with the pattern's next state, so a Movement value
// can be shared as a template between spawns.
type Movement interface {
	Kind() Kind
	Update(pos mgl32.Vec3, dt float32, env *Env) (mgl32.Vec3, Movement)
}

type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Env is the per-frame context shared by every moving target.
type Env struct {
	Viewer mgl32.Vec3
	Area   PlayArea
	Rand   *rand.Rand
}

// PlayArea is the reachable slice of the view cone in front of the target wall.
type PlayArea struct {
	FOV       float32 // vertical field of view, radians; zero disables clamping
	Aspect    float32 // height / width
	WallBias  float32
	MinHeight float32
}

func DefaultPlayArea(fovDegrees float32) PlayArea {
	return PlayArea{
		FOV:       mgl32.DegToRad(fovDegrees),
		Aspect:    9.0 / 16.0,
		WallBias:  0.8,
		MinHeight: 0.5,
	}
}

func (a PlayArea) Clamp(pos, viewer mgl32.Vec3) mgl32.Vec3 {
	if a.FOV <= 0 {
		return pos
	}
	depth := float32(math.Abs(float64(pos.Z() - viewer.Z())))
	half := depth * float32(math.Tan(float64(a.FOV)/2)) * a.WallBias
	pos[0] = mgl32.Clamp(pos[0], viewer.X()-half, viewer.X()+half)
	pos[1] = mgl32.Clamp(pos[1], a.MinHeight, a.MinHeight+2*half*a.Aspect)
	return pos
}

type Static struct{}

func (Static) Kind() Kind { return KindStatic }

func (m Static) Update(pos mgl32.Vec3, _ float32, _ *Env) (mgl32.Vec3, Movement) {
	return pos, m
}

type Linear struct {
	Velocity mgl32.Vec3
	Bounds   *Bounds
}

func (Linear) Kind() Kind { return KindLinear }

func (m Linear) Update(pos mgl32.Vec3, dt float32, env *Env) (mgl32.Vec3, Movement) {
	pos = pos.Add(m.Velocity.Mul(dt))
	pos, m.Velocity = bounce(pos, m.Velocity, m.Bounds)
	pos, m.Velocity = env.confine(pos, m.Velocity)
	return pos, m
}

// bounce reverses only the axes that left the bounds while heading outward.
func bounce(pos, vel mgl32.Vec3, b *Bounds) (mgl32.Vec3, mgl32.Vec3) {
	if b == nil {
		return pos, vel
	}
	for i := 0; i < 3; i++ {
		if (pos[i] < b.Min[i] && vel[i] < 0) || (pos[i] > b.Max[i] && vel[i] > 0) {
			vel[i] = -vel[i]
		}
		pos[i] = mgl32.Clamp(pos[i], b.Min[i], b.Max[i])
	}
	return pos, vel
}

// confine bounces off the play area edges, which narrow as the viewer walks
// toward the wall.
func (e *Env) confine(pos, vel mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	if e == nil {
		return pos, vel
	}
	clamped := e.Area.Clamp(pos, e.Viewer)
	for i := 0; i < 2; i++ {
		if (clamped[i]-pos[i])*vel[i] < 0 {
			vel[i] = -vel[i]
		}
	}
	return clamped, vel
}

// Circular positions are a pure function of center and elapsed time.
type Circular struct {
	Center      mgl32.Vec3
	Radius      float32
	Speed       float32
	Phase       float32
	FigureEight bool
	Elapsed     float32
}

func (Circular) Kind() Kind { return KindCircular }

func (m Circular) Update(_ mgl32.Vec3, dt float32, _ *Env) (mgl32.Vec3, Movement) {
	m.Elapsed += dt
	return m.At(m.Elapsed), m
}

func (m Circular) At(elapsed float32) mgl32.Vec3 {
	if m.Radius <= 0 {
		return m.Center
	}
	angle := float64(m.Phase + elapsed*m.Speed/m.Radius)
	var offset mgl32.Vec3
	if m.FigureEight {
		offset = mgl32.Vec3{float32(math.Sin(angle)), float32(math.Sin(2*angle)) / 2, 0}
	} else {
		offset = mgl32.Vec3{float32(math.Cos(angle)), float32(math.Sin(angle)), 0}
	}
	return m.Center.Add(offset.Mul(m.Radius))
}

type Random struct {
	MaxSpeed float32
	Bounds   *Bounds
	Velocity mgl32.Vec3
	Timer    float32
}

func (Random) Kind() Kind { return KindRandom }

func (m Random) Update(pos mgl32.Vec3, dt float32, env *Env) (mgl32.Vec3, Movement) {
	m.Velocity, m.Timer = wander(m.Velocity, m.Timer+dt, RandomResample, m.MaxSpeed, env)
	pos, m.Velocity = bounce(pos.Add(m.Velocity.Mul(dt)), m.Velocity, m.Bounds)
	pos, m.Velocity = env.confine(pos, m.Velocity)
	return pos, m
}

type Reactive struct {
	MaxSpeed float32
	Bounds   *Bounds
	Velocity mgl32.Vec3
	Timer    float32
}

func (Reactive) Kind() Kind { return KindReactive }

func (m Reactive) Update(pos mgl32.Vec3, dt float32, env *Env) (mgl32.Vec3, Movement) {
	m.Velocity, m.Timer = wander(m.Velocity, m.Timer+dt, ReactiveResample, m.MaxSpeed, env)
	pos, m.Velocity = bounce(pos.Add(m.Velocity.Mul(dt)), m.Velocity, m.Bounds)
	pos, m.Velocity = env.confine(pos, m.Velocity)
	return pos, m
}

// wander resamples a wall-plane direction when the timer runs out or the target has stalled.
func wander(vel mgl32.Vec3, timer, interval, speed float32, env *Env) (mgl32.Vec3, float32) {
	if timer < interval && vel.LenSqr() > stillSpeedSq {
		return vel, timer
	}
	var theta float64
	if env != nil && env.Rand != nil {
		theta = env.Rand.Float64() * 2 * math.Pi
	} else {
		theta = rand.Float64() * 2 * math.Pi
	}
	return mgl32.Vec3{float32(math.Cos(theta)), float32(math.Sin(theta)), 0}.Mul(speed), 0
}

// Evasive strafes perpendicular to the line of sight.
type Evasive struct {
	MaxSpeed float32
	Bounds   *Bounds
	Reverse  bool
}

func (Evasive) Kind() Kind { return KindEvasive }

func (m Evasive) Update(pos mgl32.Vec3, dt float32, env *Env) (mgl32.Vec3, Movement) {
	if env == nil {
		return pos, m
	}
	toViewer := env.Viewer.Sub(pos)
	side := mgl32.Vec3{-toViewer.Z(), 0, toViewer.X()}
	if side.LenSqr() < stillSpeedSq {
		return pos, m
	}
	side = side.Normalize()
	if m.Reverse {
		side = side.Mul(-1)
	}

	next := pos.Add(side.Mul(m.MaxSpeed * dt))
	want := next
	if m.Bounds != nil {
		for i := 0; i < 3; i++ {
			next[i] = mgl32.Clamp(next[i], m.Bounds.Min[i], m.Bounds.Max[i])
		}
	}
	next = env.Area.Clamp(next, env.Viewer)
	if next.X() != want.X() {
		m.Reverse = !m.Reverse
	}
	return next, m
}
