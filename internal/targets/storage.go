package targets

import (
	"sort"
	"time"

	"aimtrainer/internal/events"
	"aimtrainer/internal/hitbox"
	"aimtrainer/internal/utility"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

var (
	lifetimeQuery = donburi.NewQuery(filter.Contains(TargetComponent, LifetimeComponent))
	motionQuery   = donburi.NewQuery(filter.Contains(TargetComponent, MotionComponent))
)

// Store keeps the live targets of one game in an ECS world. It is owned by a
// single game loop and is not safe for concurrent use.
type Store struct {
	world    donburi.World
	entities map[int]donburi.Entity
	nextID   int
	clock    time.Duration
}

func NewStore() *Store {
	s := &Store{
		world:    donburi.NewWorld(),
		entities: make(map[int]donburi.Entity),
		nextID:   1,
	}
	events.Hit.Subscribe(s.world, s.ApplyHit)
	return s
}

// World is where the store's frame events are queued.
func (s *Store) World() donburi.World {
	return s.world
}

func (s *Store) Add(spec Spec) Target {
	id := s.nextID
	s.nextID++

	radius := spec.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}
	health := spec.Health
	if health <= 0 {
		health = DefaultHealth
	}
	points := spec.Points
	if points <= 0 {
		points = DefaultPoints
	}
	color := spec.Color
	if color == "" {
		color = utility.RandomColorHex()
	}
	movement := spec.Movement
	if movement == nil {
		movement = Static{}
	}

	target := Target{
		ID:           id,
		Position:     spec.Position,
		Radius:       radius,
		Hitbox:       hitbox.ForRadius(radius),
		Health:       health,
		Points:       points,
		DestroyOnHit: !spec.Durable,
		Color:        color,
		Pattern:      movement.Kind(),
		SpawnedAt:    s.clock,
		SpawnDelay:   spec.SpawnDelay,
	}

	components := []donburi.IComponentType{TargetComponent, MotionComponent}
	if spec.TTL > 0 {
		components = append(components, LifetimeComponent)
	}
	entity := s.world.Create(components...)
	entry := s.world.Entry(entity)
	TargetComponent.SetValue(entry, target)
	MotionComponent.SetValue(entry, Motion{Movement: movement})
	if spec.TTL > 0 {
		LifetimeComponent.SetValue(entry, Lifetime{Remaining: spec.TTL})
	}
	s.entities[id] = entity

	events.Spawned.Publish(s.world, events.SpawnedEvent{TargetID: id, Position: target.Position})
	return target
}

func (s *Store) entry(id int) *donburi.Entry {
	entity, ok := s.entities[id]
	if !ok || !s.world.Valid(entity) {
		return nil
	}
	return s.world.Entry(entity)
}

func (s *Store) Get(id int) (Target, bool) {
	entry := s.entry(id)
	if entry == nil {
		return Target{}, false
	}
	return *TargetComponent.Get(entry), true
}

// GetList returns a snapshot of the live targets ordered by id.
func (s *Store) GetList() []Target {
	list := make([]Target, 0, len(s.entities))
	for id := range s.entities {
		if t, ok := s.Get(id); ok {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (s *Store) Count() int {
	return len(s.entities)
}

func (s *Store) Clock() time.Duration {
	return s.clock
}

// Clear removes every target without emitting events and restarts ids at 1.
func (s *Store) Clear() {
	for _, entity := range s.entities {
		if s.world.Valid(entity) {
			s.world.Remove(entity)
		}
	}
	s.entities = make(map[int]donburi.Entity)
	s.nextID = 1
}

func (s *Store) remove(id int) {
	if entity, ok := s.entities[id]; ok {
		if s.world.Valid(entity) {
			s.world.Remove(entity)
		}
		delete(s.entities, id)
	}
}

// ApplyHit reacts to a Hit event: destroy-on-hit targets go immediately,
// durable ones lose health until they reach zero.
func (s *Store) ApplyHit(w donburi.World, ev events.HitEvent) {
	entry := s.entry(ev.TargetID)
	if entry == nil {
		return
	}
	target := TargetComponent.Get(entry)
	if !target.DestroyOnHit {
		target.Health -= ev.Damage
		if target.Health > 0 {
			return
		}
	}
	points := target.Points
	s.remove(ev.TargetID)
	events.Destroyed.Publish(w, events.DestroyedEvent{TargetID: ev.TargetID, Points: points, ByHit: true})
}

// Tick advances the store clock, spawn-in delays and lifetimes. Expired
// targets are removed and reported as destroyed for zero points.
func (s *Store) Tick(dt time.Duration) {
	s.clock += dt

	for id := range s.entities {
		if entry := s.entry(id); entry != nil {
			if t := TargetComponent.Get(entry); t.SpawnDelay > 0 {
				t.SpawnDelay = max(t.SpawnDelay-dt, 0)
			}
		}
	}

	var expired []int
	lifetimeQuery.Each(s.world, func(entry *donburi.Entry) {
		life := LifetimeComponent.Get(entry)
		life.Remaining -= dt
		if life.Remaining <= 0 {
			expired = append(expired, TargetComponent.Get(entry).ID)
		}
	})
	sort.Ints(expired)
	for _, id := range expired {
		s.remove(id)
		events.Destroyed.Publish(s.world, events.DestroyedEvent{TargetID: id, ByHit: false})
	}
}

// Move integrates every target's movement pattern and keeps it inside the play area.
func (s *Store) Move(dt time.Duration, env *Env) {
	step := float32(dt.Seconds())
	motionQuery.Each(s.world, func(entry *donburi.Entry) {
		target := TargetComponent.Get(entry)
		motion := MotionComponent.Get(entry)
		pos, next := motion.Movement.Update(target.Position, step, env)
		if env != nil {
			pos = env.Area.Clamp(pos, env.Viewer)
		}
		target.Position = pos
		motion.Movement = next
	})
}
