package scoring

import "aimtrainer/internal/events"

// Tracker accumulates score and accuracy. Each frame must call BeginFrame
// before Update so per-frame flags never leak across frames.
type Tracker struct {
	Score    int     `json:"score"`
	Hits     int     `json:"hits"`
	Misses   int     `json:"misses"`
	Accuracy float32 `json:"accuracy"`

	ShotFired     bool `json:"-"`
	HitRegistered bool `json:"-"`
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) BeginFrame() {
	t.ShotFired = false
	t.HitRegistered = false
}

// Update consumes this frame's destroyed events and whether an accepted shot
// was fired. Expiries score nothing and never count as hits.
func (t *Tracker) Update(destroyed []events.DestroyedEvent, fired bool) {
	for _, ev := range destroyed {
		if !ev.ByHit {
			continue
		}
		t.Score += ev.Points
		t.HitRegistered = true
	}
	if !fired {
		return
	}
	t.ShotFired = true
	if t.HitRegistered {
		t.Hits++
	} else {
		t.Misses++
	}
	t.Accuracy = Accuracy(t.Hits, t.Misses)
}

func (t *Tracker) Shots() int {
	return t.Hits + t.Misses
}

func (t *Tracker) Reset() {
	*t = Tracker{}
}

// Accuracy is hits/(hits+misses)*100, or 0 before the first shot.
func Accuracy(hits, misses int) float32 {
	shots := hits + misses
	if shots == 0 {
		return 0
	}
	return float32(hits) / float32(shots) * 100
}
