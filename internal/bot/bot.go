package bot

import (
	"math"
	"time"

	"aimtrainer/internal/camera"
	"aimtrainer/internal/gamedata"
	"aimtrainer/internal/hitbox"
	"aimtrainer/internal/input"
	"aimtrainer/internal/sensitivity"
	"aimtrainer/internal/targets"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultSkill     = 0.35
	DefaultTolerance = 0.8
	solveIterations  = 40
)

// Aimbot steers toward the closest target by angle and fires once it is
// lined up. It produces raw mouse counts, so its turns go through the same
// sensitivity curve as a human's.
type Aimbot struct {
	// Skill is the share of the remaining angular error corrected per frame, in (0, 1].
	Skill float32
	// Tolerance scales the hitbox cone the bot must be inside before firing.
	Tolerance float32

	pressed bool
}

func NewAimbot(skill float32) *Aimbot {
	if skill <= 0 || skill > 1 {
		skill = DefaultSkill
	}
	return &Aimbot{Skill: skill, Tolerance: DefaultTolerance}
}

// Next decides one frame of input from the current snapshot.
func (b *Aimbot) Next(snap gamedata.Snapshot, dt time.Duration) input.Frame {
	f := input.Frame{DT: dt}
	if !snap.Captured {
		f.Pressed = append(f.Pressed, input.KeyEscape)
		return f
	}

	forward := camera.Direction(snap.Yaw, snap.Pitch)
	target, ok := closest(snap.Eye, forward, snap.Targets)
	if !ok {
		b.pressed = false
		return f
	}

	toTarget := target.Position.Sub(snap.Eye)
	dist := toTarget.Len()
	if dist < hitbox.Epsilon {
		return f
	}
	cone := float32(math.Atan(float64(target.Hitbox.Radius/dist))) * b.Tolerance
	if angle(forward, toTarget) <= cone {
		// Alternate presses so every shot is a fresh edge.
		b.pressed = !b.pressed
		f.FirePressed = b.pressed
		return f
	}
	b.pressed = false

	wantYaw, wantPitch := camera.Angles(toTarget)
	dYaw := camera.WrapAngle(wantYaw-snap.Yaw) * b.Skill
	dPitch := (wantPitch - snap.Pitch) * b.Skill
	f.Mouse = counts(mgl32.Vec2{-dYaw, -dPitch}, snap.Sensitivity, snap.Curve, dt)
	return f
}

func closest(eye, forward mgl32.Vec3, list []targets.Target) (targets.Target, bool) {
	var best targets.Target
	bestAngle := float32(math.MaxFloat32)
	for _, t := range list {
		if !t.Hittable() {
			continue
		}
		if a := angle(forward, t.Position.Sub(eye)); a < bestAngle {
			best, bestAngle = t, a
		}
	}
	return best, bestAngle < math.MaxFloat32
}

func angle(a, b mgl32.Vec3) float32 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	cos := mgl32.Clamp(a.Dot(b)/(la*lb), -1, 1)
	return float32(math.Acos(float64(cos)))
}

// counts converts a wanted rotation in radians into mouse counts. The curve
// multiplier depends on the speed of the counts themselves, so the magnitude
// is found by bisection on turn(s) = s * scale(speed(s)), which never decreases.
func counts(turn mgl32.Vec2, sens float32, curve sensitivity.CurveParameters, dt time.Duration) mgl32.Vec2 {
	want := turn.Len()
	secs := float32(dt.Seconds())
	if want == 0 || sens <= 0 || secs <= 0 {
		return mgl32.Vec2{}
	}
	floor := max(curve.MinSens, 1e-3)
	lo, hi := float32(0), want/camera.Scale(sens, floor)
	for i := 0; i < solveIterations; i++ {
		mid := (lo + hi) / 2
		got := mid * camera.Scale(sens, sensitivity.Evaluate(mid/secs, curve))
		if got < want {
			lo = mid
		} else {
			hi = mid
		}
	}
	return turn.Normalize().Mul((lo + hi) / 2)
}
