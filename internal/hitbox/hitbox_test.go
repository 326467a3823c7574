package hitbox

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"pgregory.net/rapid"
)

func TestIntersectSphere_TowardCenter(t *testing.T) {
	origin := mgl32.Vec3{0, 1.7, 0}
	center := mgl32.Vec3{0, 1.7, -10}
	got, ok := IntersectSphere(origin, mgl32.Vec3{0, 0, -1}, center, 0.5)
	if !ok {
		t.Fatal("ray aimed at the center should hit")
	}
	if math.Abs(float64(got-9.5)) > 1e-5 {
		t.Errorf("distance = %v, want 9.5", got)
	}
}

func TestIntersectSphere_AimedAway(t *testing.T) {
	_, ok := IntersectSphere(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, -10}, 0.5)
	if ok {
		t.Error("ray aimed away from the sphere should miss")
	}
}

func TestIntersectSphere_Tangent(t *testing.T) {
	// Closest approach is exactly the radius.
	got, ok := IntersectSphere(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, -5}, 1)
	if !ok {
		t.Fatal("tangent ray should hit")
	}
	if math.Abs(float64(got-5)) > 1e-5 {
		t.Errorf("tangent distance = %v, want 5", got)
	}
}

func TestIntersectSphere_OriginInside(t *testing.T) {
	got, ok := IntersectSphere(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, 2)
	if !ok {
		t.Fatal("ray from inside the sphere should hit the far side")
	}
	if math.Abs(float64(got-2)) > 1e-5 {
		t.Errorf("distance = %v, want 2", got)
	}
}

func TestIntersectSphere_Behind(t *testing.T) {
	_, ok := IntersectSphere(mgl32.Vec3{0, 0, -20}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, -10}, 1)
	if ok {
		t.Error("sphere entirely behind the origin should miss")
	}
}

func TestIntersectSphere_Distances(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dist := rapid.Float32Range(1, 200).Draw(t, "dist")
		radius := rapid.Float32Range(0.1, 0.9).Draw(t, "radius")
		got, ok := IntersectSphere(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, -dist}, radius)
		if !ok {
			t.Fatalf("miss at dist=%v radius=%v", dist, radius)
		}
		if want := dist - radius; math.Abs(float64(got-want)) > 1e-4 {
			t.Fatalf("distance = %v, want %v", got, want)
		}
	})
}

func TestSphere_Intersect(t *testing.T) {
	s := ForRadius(0.5)
	if math.Abs(float64(s.Radius-0.6)) > 1e-6 {
		t.Errorf("Radius = %v, want 0.6", s.Radius)
	}
	r := Ray{Origin: mgl32.Vec3{0.55, 0, 0}, Direction: mgl32.Vec3{0, 0, -1}}
	// Outside the visual radius, inside the scaled hitbox.
	if _, ok := s.Intersect(r, mgl32.Vec3{0, 0, -5}); !ok {
		t.Error("scaled hitbox should register the near miss")
	}
	if p := r.At(2); p != (mgl32.Vec3{0.55, 0, -2}) {
		t.Errorf("At(2) = %v", p)
	}
}
