package hitbox

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Epsilon is the minimum distance along a ray that counts as "ahead".
	Epsilon = 1e-6
	// DefaultScale enlarges hitboxes past the visual radius so near misses still count.
	DefaultScale = 1.2
)

type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // unit length
}

func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectSphere returns the distance along the ray to the nearest forward
// intersection with the sphere. Tangent rays count as hits.
func IntersectSphere(origin, dir, center mgl32.Vec3, radius float32) (float32, bool) {
	if radius <= 0 {
		return 0, false
	}
	ox, oy, oz := float64(origin[0]), float64(origin[1]), float64(origin[2])
	dx, dy, dz := float64(dir[0]), float64(dir[1]), float64(dir[2])
	cx, cy, cz := float64(center[0])-ox, float64(center[1])-oy, float64(center[2])-oz

	proj := cx*dx + cy*dy + cz*dz
	distSq := cx*cx + cy*cy + cz*cz - proj*proj
	if distSq < 0 {
		distSq = 0
	}
	r := float64(radius)
	radiusSq := r * r
	if distSq > radiusSq {
		return 0, false
	}

	halfChord := math.Sqrt(radiusSq - distSq)
	t0 := proj - halfChord
	t1 := proj + halfChord
	switch {
	case t0 > Epsilon:
		return float32(t0), true
	case t1 > Epsilon:
		return float32(t1), true
	default:
		return 0, false
	}
}

// Sphere is the only hitbox shape targets use.
type Sphere struct {
	Radius float32
}

// ForRadius builds a hitbox scaled up from a visual radius.
func ForRadius(visual float32) Sphere {
	return Sphere{Radius: visual * DefaultScale}
}

func (s Sphere) Intersect(r Ray, center mgl32.Vec3) (float32, bool) {
	return IntersectSphere(r.Origin, r.Direction, center, s.Radius)
}
