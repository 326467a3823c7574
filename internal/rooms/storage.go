package rooms

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"aimtrainer/internal/broadcast"
	"aimtrainer/internal/events"
	"aimtrainer/internal/gamedata"
	"aimtrainer/internal/players"
	"aimtrainer/internal/targets"
	"aimtrainer/internal/wshub"
)

const (
	staleTTL      = 1 * time.Hour
	sweepInterval = 5 * time.Minute
)

type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
	cfg   gamedata.Config
}

func NewStore(cfg gamedata.Config) *Store {
	return &Store{
		rooms: make(map[string]*Room),
		cfg:   cfg,
	}
}

func (s *Store) Create(hostID string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Try up to 10 times to generate a unique code
	for range 10 {
		code, err := GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := s.rooms[code]; exists {
			continue
		}

		ps := players.NewStore()
		ts := targets.NewStore()
		bus := events.NewBus()
		game := gamedata.NewGame(ps, ts, bus, s.cfg)

		now := time.Now()
		room := &Room{
			Code:        code,
			Game:        game,
			Broadcaster: broadcast.NewBroadcaster(bus),
			Hub:         wshub.NewHub(),
			CreatedAt:   now,
			HostID:      hostID,
			bus:         bus,
			lastActive:  now,
		}
		s.rooms[code] = room
		return room, nil
	}
	return nil, fmt.Errorf("failed to generate unique room code after 10 attempts")
}

func (s *Store) Get(code string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[code]
}

// Find resolves typed input to a room, or nil when it cannot name one.
func (s *Store) Find(raw string) *Room {
	code, ok := NormalizeCode(raw)
	if !ok {
		return nil
	}
	return s.Get(code)
}

func (s *Store) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[code]; ok {
		delete(s.rooms, code)
		room.Close()
	}
}

func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Sweep drops rooms idle for longer than the stale TTL and reports how many went.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for code, room := range s.rooms {
		if now.Sub(room.LastActive()) > staleTTL {
			delete(s.rooms, code)
			room.Close()
			removed++
		}
	}
	return removed
}

// Run sweeps stale rooms until ctx is cancelled.
func (s *Store) Run(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				log.Printf("[Room] Swept %d stale rooms\n", n)
			}
		}
	}
}
