package players

import (
	"sort"
	"sync"

	"aimtrainer/internal/utility"
)

type Store struct {
	mu      sync.Mutex
	players map[string]*Player
}

func NewStore() *Store {
	return &Store{
		players: make(map[string]*Player),
	}
}

// Add registers a player; the first one in becomes the room host.
func (s *Store) Add(id string, name string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	player := &Player{ID: id, Name: name, Color: utility.RandomColorHex(), Host: len(s.players) == 0}
	s.players[id] = player
	return player
}

func (s *Store) Get(id string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// GetList returns copies ordered by best score, then name.
func (s *Store) GetList() []*Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	playerList := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		playerList = append(playerList, &cp)
	}
	sort.Slice(playerList, func(i, j int) bool {
		if playerList[i].Best != playerList[j].Best {
			return playerList[i].Best > playerList[j].Best
		}
		return playerList[i].Name < playerList[j].Name
	})
	return playerList
}

// RecordRun counts a finished run and keeps the best score.
func (s *Store) RecordRun(id string, score int) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, e := s.players[id]; e {
		p.Runs++
		if score > p.Best {
			p.Best = score
		}
		cp := *p
		return &cp
	}
	return nil
}

func (s *Store) ValidateSession(sessionId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.players[sessionId]
	return exists
}

func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.players[id]; !exists {
		return false
	}
	delete(s.players, id)
	return true
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		p.Best = 0
		p.Runs = 0
	}
}
