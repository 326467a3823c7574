package events

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	dbevents "github.com/yohamta/donburi/features/events"
)

// Frame events are queued on the target world and drained once per frame,
// in emission order, by the game loop.

type HitEvent struct {
	TargetID int
	Position mgl32.Vec3
	Damage   int
}

type DestroyedEvent struct {
	TargetID int
	Points   int
	ByHit    bool
}

type SpawnedEvent struct {
	TargetID int
	Position mgl32.Vec3
}

var (
	Hit       = dbevents.NewEventType[HitEvent]()
	Destroyed = dbevents.NewEventType[DestroyedEvent]()
	Spawned   = dbevents.NewEventType[SpawnedEvent]()
)

// PhaseChangeEvent is emitted whenever the scenario sequencer changes phase.
type PhaseChangeEvent struct {
	Phase    string `json:"phase"`
	Scenario string `json:"scenario,omitempty"`
	Index    int    `json:"index"`
}

const busBuffer = 10

// Bus carries cross-goroutine notifications out of a game to its spectators.
type Bus struct {
	PhaseChanges chan PhaseChangeEvent

	mu     sync.Mutex
	closed bool
}

func NewBus() *Bus {
	return &Bus{
		PhaseChanges: make(chan PhaseChangeEvent, busBuffer),
	}
}

// Publish never blocks the frame loop; events are dropped when nobody drains the bus.
func (b *Bus) Publish(ev PhaseChangeEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	select {
	case b.PhaseChanges <- ev:
		return true
	default:
		return false
	}
}

// Close ends the PhaseChanges stream. Later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.PhaseChanges)
	}
}
