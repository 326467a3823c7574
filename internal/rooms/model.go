package rooms

import (
	"sync"
	"time"

	"aimtrainer/internal/broadcast"
	"aimtrainer/internal/events"
	"aimtrainer/internal/gamedata"
	"aimtrainer/internal/wshub"
)

// Room is one trainee's game plus whoever is watching it. Only the host
// drives the simulation.
type Room struct {
	Code        string
	Game        *gamedata.Game
	Broadcaster *broadcast.Broadcaster
	Hub         *wshub.Hub
	CreatedAt   time.Time
	HostID      string

	bus        *events.Bus
	mu         sync.Mutex
	lastActive time.Time
}

// Close ends the room's event stream, which stops its broadcaster and
// disconnects every SSE and WebSocket client.
func (r *Room) Close() {
	if r.bus != nil {
		r.bus.Close()
	}
	r.Hub.Close()
}

// Touch marks the room as in use so the sweeper keeps it.
func (r *Room) Touch(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = now
}

func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}
