package targets

import (
	"time"

	"aimtrainer/internal/hitbox"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
)

const (
	DefaultRadius = 0.4
	DefaultPoints = 100
	DefaultHealth = 1
)

type Target struct {
	ID           int           `json:"id"`
	Position     mgl32.Vec3    `json:"pos"`
	Radius       float32       `json:"r"`
	Hitbox       hitbox.Sphere `json:"-"`
	Health       int           `json:"hp"`
	Points       int           `json:"pts"`
	DestroyOnHit bool          `json:"-"`
	Color        string        `json:"color"`
	Pattern      Kind          `json:"move"`
	SpawnedAt    time.Duration `json:"-"`
	// SpawnDelay is the remaining spawn-in time; the target cannot be hit until it elapses.
	SpawnDelay time.Duration `json:"-"`
}

func (t Target) Hittable() bool {
	return t.SpawnDelay <= 0
}

// Lifetime is attached only to targets with a TTL.
type Lifetime struct {
	Remaining time.Duration
}

type Motion struct {
	Movement Movement
}

var (
	TargetComponent   = donburi.NewComponentType[Target]()
	LifetimeComponent = donburi.NewComponentType[Lifetime]()
	MotionComponent   = donburi.NewComponentType[Motion]()
)

// Spec describes a target to spawn. Zero fields take the package defaults.
type Spec struct {
	Position mgl32.Vec3
	Radius   float32
	Health   int
	Points   int
	// Durable targets lose health per hit instead of being destroyed outright.
	Durable    bool
	TTL        time.Duration
	SpawnDelay time.Duration
	Movement   Movement
	Color      string
}
