package camera

import (
	"math"

	"aimtrainer/internal/hitbox"
	"aimtrainer/internal/input"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultSensitivity = 0.1
	radiansPerCount    = 0.002
	PitchLimit         = 89.9 // degrees
	EyeHeight          = 1.7
	WalkSpeed          = 5.0 // units/s
)

// FPS is a yaw/pitch first-person camera. Yaw 0 looks down -Z.
type FPS struct {
	Yaw         float32 // radians
	Pitch       float32 // radians
	Sensitivity float32
	Captured    bool
}

func NewFPS() *FPS {
	return &FPS{Sensitivity: DefaultSensitivity, Captured: true}
}

// Rotate applies a mouse delta scaled by the curve multiplier. Rotation is
// ignored while the cursor is released.
func (c *FPS) Rotate(delta mgl32.Vec2, multiplier float32) {
	if !c.Captured {
		return
	}
	scale := Scale(c.Sensitivity, multiplier)
	c.Yaw = WrapAngle(c.Yaw - delta.X()*scale)
	c.Pitch -= delta.Y() * scale
	limit := mgl32.DegToRad(PitchLimit)
	c.Pitch = mgl32.Clamp(c.Pitch, -limit, limit)
}

// WrapAngle maps an angle into (-π, π].
func WrapAngle(a float32) float32 {
	r := math.Remainder(float64(a), 2*math.Pi)
	if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return float32(r)
}

// Scale is the radians turned per mouse count.
func Scale(sensitivity, multiplier float32) float32 {
	return sensitivity * radiansPerCount * multiplier
}

func (c *FPS) ToggleCapture() {
	c.Captured = !c.Captured
}

func (c *FPS) Forward() mgl32.Vec3 {
	return Direction(c.Yaw, c.Pitch)
}

// Direction converts yaw/pitch to a unit view vector.
func Direction(yaw, pitch float32) mgl32.Vec3 {
	sy, cy := math.Sincos(float64(yaw))
	sp, cp := math.Sincos(float64(pitch))
	return mgl32.Vec3{float32(-sy * cp), float32(sp), float32(-cy * cp)}
}

// Angles is the inverse of Direction.
func Angles(dir mgl32.Vec3) (yaw, pitch float32) {
	d := dir.Normalize()
	pitch = float32(math.Asin(float64(mgl32.Clamp(d.Y(), -1, 1))))
	yaw = float32(math.Atan2(float64(-d.X()), float64(-d.Z())))
	return yaw, pitch
}

// Player carries the camera through the arena.
type Player struct {
	Position mgl32.Vec3 // feet
	Camera   *FPS
}

func NewPlayer() *Player {
	return &Player{Camera: NewFPS()}
}

func (p *Player) Eye() mgl32.Vec3 {
	return p.Position.Add(mgl32.Vec3{0, EyeHeight, 0})
}

func (p *Player) Ray() hitbox.Ray {
	return hitbox.Ray{Origin: p.Eye(), Direction: p.Camera.Forward()}
}

// Move walks along the ground plane relative to the camera yaw.
func (p *Player) Move(f input.Frame) {
	var wish mgl32.Vec3
	forward := Direction(p.Camera.Yaw, 0)
	right := mgl32.Vec3{-forward.Z(), 0, forward.X()}
	if f.IsHeld(input.KeyW) {
		wish = wish.Add(forward)
	}
	if f.IsHeld(input.KeyS) {
		wish = wish.Sub(forward)
	}
	if f.IsHeld(input.KeyD) {
		wish = wish.Add(right)
	}
	if f.IsHeld(input.KeyA) {
		wish = wish.Sub(right)
	}
	if wish.LenSqr() == 0 {
		return
	}
	step := float32(f.DT.Seconds()) * WalkSpeed
	p.Position = p.Position.Add(wish.Normalize().Mul(step))
}
