package scenario

import (
	"log"
	"math/rand"
	"time"

	"aimtrainer/internal/targets"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultDuration = 30 * time.Second
	DefaultDelay    = 5 * time.Second
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDelay
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseDelay:
		return "delay"
	case PhaseActive:
		return "active"
	default:
		return "idle"
	}
}

// Field is the target set a sequencer populates.
type Field interface {
	Clear()
	Add(targets.Spec) targets.Target
	Count() int
}

type Transition struct {
	Phase    Phase
	Index    int
	Scenario string
	At       time.Duration // since Start
	Complete bool
	// Ended is set when an Active phase expired; EndedIndex names that scenario.
	Ended      bool
	EndedIndex int
}

// Sequencer runs the scenario list as Delay, Active, Delay, Active, ... and
// completes as soon as the last Active phase expires.
type Sequencer struct {
	Scenarios []Scenario
	Duration  time.Duration
	Delay     time.Duration
	Verbose   bool

	field     Field
	rng       *rand.Rand
	phase     Phase
	index     int
	remaining time.Duration
	elapsed   time.Duration
	started   bool
	complete  bool
	spawned   int
}

func NewSequencer(list []Scenario, duration, delay time.Duration, field Field, rng *rand.Rand) *Sequencer {
	return &Sequencer{
		Scenarios: list,
		Duration:  duration,
		Delay:     delay,
		field:     field,
		rng:       rng,
	}
}

// Start begins a run from the first scenario. It is ignored while a run is in progress.
func (s *Sequencer) Start() (Transition, bool) {
	if s.phase != PhaseIdle {
		return Transition{}, false
	}
	s.field.Clear()
	s.index = 0
	s.elapsed = 0
	s.started = true
	s.complete = false
	s.phase = PhaseDelay
	s.remaining = s.Delay
	if s.Verbose {
		log.Printf("[Scenario] Run started: %d scenarios\n", len(s.Scenarios))
	}
	return s.transition(), true
}

// Stop abandons a run and returns to Idle with nothing started.
func (s *Sequencer) Stop() {
	s.field.Clear()
	s.phase = PhaseIdle
	s.index = 0
	s.remaining = 0
	s.elapsed = 0
	s.started = false
	s.complete = false
}

// Update advances the timers by dt. Time left over when a phase expires
// carries into the next phase, so the run length does not depend on frame size.
func (s *Sequencer) Update(dt time.Duration) []Transition {
	var out []Transition
	for s.phase != PhaseIdle {
		if dt < s.remaining {
			s.remaining -= dt
			s.elapsed += dt
			break
		}
		dt -= s.remaining
		s.elapsed += s.remaining
		s.remaining = 0
		out = append(out, s.expire())
	}
	if s.phase == PhaseActive {
		s.topUp()
	}
	return out
}

func (s *Sequencer) expire() Transition {
	switch s.phase {
	case PhaseDelay:
		if s.index >= len(s.Scenarios) {
			return s.finish()
		}
		s.phase = PhaseActive
		s.remaining = s.Duration
		s.spawnLayout()
		if s.Verbose {
			log.Printf("[Scenario] %s started\n", s.Scenarios[s.index].Name)
		}
	case PhaseActive:
		s.field.Clear()
		if s.Verbose {
			log.Printf("[Scenario] %s finished\n", s.Scenarios[s.index].Name)
		}
		ended := s.index
		s.index++
		var tr Transition
		if s.index >= len(s.Scenarios) {
			tr = s.finish()
		} else {
			s.phase = PhaseDelay
			s.remaining = s.Delay
			tr = s.transition()
		}
		tr.Ended = true
		tr.EndedIndex = ended
		return tr
	}
	return s.transition()
}

func (s *Sequencer) finish() Transition {
	s.phase = PhaseIdle
	s.complete = true
	s.remaining = 0
	if s.Verbose {
		log.Printf("[Scenario] All scenarios completed in %s\n", s.elapsed)
	}
	return s.transition()
}

func (s *Sequencer) transition() Transition {
	tr := Transition{Phase: s.phase, Index: s.index, At: s.elapsed, Complete: s.complete}
	if sc, ok := s.Current(); ok {
		tr.Scenario = sc.Name
	}
	return tr
}

func (s *Sequencer) spawnLayout() {
	sc := s.Scenarios[s.index]
	s.spawned = 0
	for i := 0; i < sc.Count; i++ {
		var pos mgl32.Vec3
		if i < len(sc.Layout) {
			pos = sc.Layout[i]
		} else {
			pos = sc.respawnPoint(i, s.rng)
		}
		s.field.Add(sc.Spec(pos, i, s.rng))
		s.spawned++
	}
}

// topUp replaces destroyed targets while the current scenario asks for it.
func (s *Sequencer) topUp() {
	sc := s.Scenarios[s.index]
	if !sc.Respawn {
		return
	}
	for s.field.Count() < sc.Count {
		s.field.Add(sc.Spec(sc.respawnPoint(s.spawned, s.rng), s.spawned, s.rng))
		s.spawned++
	}
}

func (s *Sequencer) Phase() Phase {
	return s.phase
}

func (s *Sequencer) Index() int {
	return s.index
}

func (s *Sequencer) Remaining() time.Duration {
	return s.remaining
}

func (s *Sequencer) Elapsed() time.Duration {
	return s.elapsed
}

func (s *Sequencer) Started() bool {
	return s.started
}

func (s *Sequencer) Complete() bool {
	return s.complete
}

func (s *Sequencer) Running() bool {
	return s.phase != PhaseIdle
}

// Current is the scenario at the current index, if any remain.
func (s *Sequencer) Current() (Scenario, bool) {
	if s.index < 0 || s.index >= len(s.Scenarios) {
		return Scenario{}, false
	}
	return s.Scenarios[s.index], true
}
