package gamedata

import (
	"math/rand"
	"sync"
	"time"

	"aimtrainer/internal/analysis"
	"aimtrainer/internal/camera"
	"aimtrainer/internal/combat"
	"aimtrainer/internal/events"
	"aimtrainer/internal/input"
	"aimtrainer/internal/players"
	"aimtrainer/internal/scenario"
	"aimtrainer/internal/scoring"
	"aimtrainer/internal/sensitivity"
	"aimtrainer/internal/targets"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
)

type Scene string

const (
	SceneLobby  = Scene("lobby")
	SceneCombat = Scene("combat")
	SceneRecap  = Scene("recap")
)

const PhaseComplete = "complete"

type Config struct {
	ScenarioDuration time.Duration
	ScenarioDelay    time.Duration
	ShotCooldown     time.Duration
	Spray            bool
	FOVDegrees       float32
	Curve            sensitivity.CurveParameters
	// FreePlay runs the basic spawner whenever no scenario run is in progress.
	FreePlay  bool
	Seed      int64
	Scenarios []scenario.Scenario // nil means the full catalog
}

func DefaultConfig() Config {
	return Config{
		ScenarioDuration: scenario.DefaultDuration,
		ScenarioDelay:    scenario.DefaultDelay,
		ShotCooldown:     combat.DefaultCooldown,
		FOVDegrees:       70,
		Curve:            sensitivity.DefaultCurve(),
		FreePlay:         true,
		Seed:             1,
	}
}

// FrameResult is what one Step produced.
type FrameResult struct {
	Shot          combat.Shot
	Hits          []events.HitEvent
	Destroyed     []events.DestroyedEvent
	Spawned       []events.SpawnedEvent
	Reactions     []time.Duration // spawn-to-hit times closed this frame
	Transitions   []scenario.Transition
	ScenarioIndex int // sequencer index the shot was resolved under
	Score         scoring.Tracker
	Phase         scenario.Phase
	Multiplier    float32
	CurveChanged  bool
}

// Game owns one player's simulation. Step is driven by a single caller; the
// mutex only lets spectators take snapshots concurrently.
type Game struct {
	mu sync.Mutex

	Players   *players.Store
	Targets   *targets.Store
	Events    *events.Bus
	Config    Config
	Score     *scoring.Tracker
	Shooter   *combat.Shooter
	Sequencer *scenario.Sequencer
	Player    *camera.Player
	Tuner     *sensitivity.Tuner
	Profiles  *sensitivity.Profiles
	Metrics   *analysis.Metrics
	Mouse     *input.MouseBuffer

	spawners   []*targets.Spawner
	rng        *rand.Rand
	area       targets.PlayArea
	clock      time.Duration
	multiplier float32
	sessionID  string

	hits      []events.HitEvent
	destroyed []events.DestroyedEvent
	spawned   []events.SpawnedEvent
}

func NewGame(ps *players.Store, ts *targets.Store, bus *events.Bus, cfg Config) *Game {
	list := cfg.Scenarios
	if list == nil {
		list = scenario.Catalog()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	g := &Game{
		Players:  ps,
		Targets:  ts,
		Events:   bus,
		Config:   cfg,
		Score:    scoring.NewTracker(),
		Shooter:  combat.NewShooter(cfg.ShotCooldown, cfg.Spray),
		Player:   camera.NewPlayer(),
		Tuner:    sensitivity.NewTuner(cfg.Curve),
		Profiles: sensitivity.NewProfiles(),
		Metrics:  analysis.NewMetrics(),
		Mouse:    input.NewMouseBuffer(),
		spawners: []*targets.Spawner{targets.BasicSpawner()},
		rng:      rng,
		area:     targets.DefaultPlayArea(cfg.FOVDegrees),
	}
	g.Sequencer = scenario.NewSequencer(list, cfg.ScenarioDuration, cfg.ScenarioDelay, ts, rng)
	g.multiplier = sensitivity.Evaluate(0, g.Tuner.Params())

	w := ts.World()
	events.Hit.Subscribe(w, func(_ donburi.World, ev events.HitEvent) {
		g.hits = append(g.hits, ev)
	})
	events.Destroyed.Subscribe(w, func(_ donburi.World, ev events.DestroyedEvent) {
		g.destroyed = append(g.destroyed, ev)
	})
	events.Spawned.Subscribe(w, func(_ donburi.World, ev events.SpawnedEvent) {
		g.spawned = append(g.spawned, ev)
	})
	return g
}

// Step runs one frame: input, curve, camera, fire, hit reaction, expiry,
// scoring, sequencing, spawning, movement.
func (g *Game) Step(f input.Frame) FrameResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	dt := max(f.DT, 0)
	g.clock += dt
	g.hits, g.destroyed, g.spawned = g.hits[:0], g.destroyed[:0], g.spawned[:0]
	g.Score.BeginFrame()

	var res FrameResult
	res.CurveChanged = g.handleKeys(f, &res)

	speed := float32(0)
	if s, ok := g.Mouse.Push(f.Mouse, dt, g.clock); ok {
		speed = s.Speed
	}
	g.multiplier = sensitivity.Evaluate(speed, g.Tuner.Params())

	cam := g.Player.Camera
	cam.Rotate(f.Mouse, g.multiplier)
	g.Player.Move(f)

	var shot combat.Shot
	if cam.Captured && f.Firing(g.Shooter.Spray) {
		shot = g.Shooter.Fire(g.clock, g.Player.Ray(), g.Targets.GetList())
		g.Shooter.Tracker.Hold()
	} else {
		g.Shooter.Tracker.Release(dt)
	}

	w := g.Targets.World()
	if shot.Hit {
		events.Hit.Publish(w, events.HitEvent{TargetID: shot.TargetID, Position: shot.Position, Damage: 1})
	}
	events.Hit.ProcessEvents(w)

	g.Targets.Tick(dt)
	events.Destroyed.ProcessEvents(w)

	g.Score.Update(g.destroyed, shot.Accepted)

	for _, ev := range g.destroyed {
		if ev.ByHit {
			if rt, ok := g.Metrics.RecordHit(ev.TargetID, g.clock); ok {
				res.Reactions = append(res.Reactions, rt)
			}
		} else {
			g.Metrics.Forget(ev.TargetID)
		}
	}
	sample := analysis.AimSample{
		At:      g.clock,
		Delta:   f.Mouse,
		Speed:   speed,
		Hit:     g.Score.HitRegistered,
		Forward: cam.Forward(),
	}
	if shot.Hit {
		sample.HitPoint = shot.Ray.At(shot.Distance)
	}
	g.Metrics.Record(sample)

	res.ScenarioIndex = g.Sequencer.Index()
	for _, tr := range g.Sequencer.Update(dt) {
		res.Transitions = append(res.Transitions, tr)
		g.publish(tr)
	}

	if g.Config.FreePlay && !g.Sequencer.Running() {
		for _, sp := range g.spawners {
			sp.Update(dt, g.Targets, g.rng)
		}
	}

	events.Spawned.ProcessEvents(w)
	for _, ev := range g.spawned {
		if t, ok := g.Targets.Get(ev.TargetID); ok {
			g.Metrics.RecordSpawn(t.ID, t.SpawnedAt)
		}
	}

	g.Targets.Move(dt, &targets.Env{Viewer: g.Player.Eye(), Area: g.area, Rand: g.rng})

	res.Shot = shot
	res.Hits = append([]events.HitEvent(nil), g.hits...)
	res.Destroyed = append([]events.DestroyedEvent(nil), g.destroyed...)
	res.Spawned = append([]events.SpawnedEvent(nil), g.spawned...)
	res.Score = *g.Score
	res.Phase = g.Sequencer.Phase()
	res.Multiplier = g.multiplier
	return res
}

// handleKeys applies this frame's key edges and reports whether the curve changed.
func (g *Game) handleKeys(f input.Frame, res *FrameResult) bool {
	if f.JustPressed(input.KeyEscape) {
		g.Player.Camera.ToggleCapture()
	}
	if f.JustPressed(input.KeySpace) {
		if tr, ok := g.start(); ok {
			res.Transitions = append(res.Transitions, tr)
		}
	}

	shift, ctrl := f.IsHeld(input.KeyShift), f.IsHeld(input.KeyCtrl)
	changed := false
	adjust := func(k input.Key, plain, withShift, withCtrl sensitivity.Adjustment) {
		if !f.JustPressed(k) {
			return
		}
		a := plain
		switch {
		case ctrl:
			a = withCtrl
		case shift:
			a = withShift
		}
		if g.Tuner.Apply(a) {
			changed = true
		}
	}
	adjust(input.KeyUp, sensitivity.MaxSensUp, sensitivity.MinSensUp, sensitivity.GrowthUp)
	adjust(input.KeyDown, sensitivity.MaxSensDown, sensitivity.MinSensDown, sensitivity.GrowthDown)
	adjust(input.KeyRight, sensitivity.RangeUp, sensitivity.RangeUp, sensitivity.RangeUp)
	adjust(input.KeyLeft, sensitivity.RangeDown, sensitivity.RangeDown, sensitivity.RangeDown)
	adjust(input.KeyP, sensitivity.TogglePlateau, sensitivity.TogglePlateau, sensitivity.TogglePlateau)
	return changed
}

// PhaseEvent describes a sequencer transition for spectators.
func PhaseEvent(tr scenario.Transition) events.PhaseChangeEvent {
	phase := tr.Phase.String()
	if tr.Complete {
		phase = PhaseComplete
	}
	return events.PhaseChangeEvent{Phase: phase, Scenario: tr.Scenario, Index: tr.Index}
}

func (g *Game) publish(tr scenario.Transition) {
	g.Events.Publish(PhaseEvent(tr))
}

// Start begins a scenario run. Score and aim metrics restart with it.
func (g *Game) Start() (scenario.Transition, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.start()
}

func (g *Game) start() (scenario.Transition, bool) {
	tr, ok := g.Sequencer.Start()
	if !ok {
		return tr, false
	}
	g.Score.Reset()
	g.Metrics.Reset()
	for _, sp := range g.spawners {
		sp.Reset()
	}
	g.publish(tr)
	return tr, true
}

// ResetToLobby abandons any run and clears the field and player stats.
func (g *Game) ResetToLobby() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Sequencer.Stop()
	g.Targets.Clear()
	g.Score.Reset()
	g.Metrics.Reset()
	g.Players.ResetAll()
	g.Events.Publish(events.PhaseChangeEvent{Phase: scenario.PhaseIdle.String()})
}

// ResetStats zeroes score and aim metrics without touching the run.
func (g *Game) ResetStats() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Score.Reset()
	g.Metrics.ResetStats()
}

func (g *Game) Scene() Scene {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scene()
}

func (g *Game) scene() Scene {
	switch {
	case g.Sequencer.Running():
		return SceneCombat
	case g.Sequencer.Complete():
		return SceneRecap
	default:
		return SceneLobby
	}
}

func (g *Game) Clock() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clock
}

func (g *Game) SetCurve(p sensitivity.CurveParameters) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Tuner.Set(p)
}

func (g *Game) Curve() sensitivity.CurveParameters {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Tuner.Params()
}

// UseProfile activates a saved profile and loads its curve.
func (g *Game) UseProfile(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.Profiles.SetActive(name) {
		return false
	}
	g.Tuner.Set(g.Profiles.Active().Curve)
	return true
}

func (g *Game) ActiveProfile() sensitivity.Profile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Profiles.Active()
}

// SaveProfile stores the live curve under a new name.
func (g *Game) SaveProfile(name string, dpi float64, game sensitivity.Game) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Profiles.Add(sensitivity.Profile{Name: name, Curve: g.Tuner.Params(), DPI: dpi, Game: game})
}

func (g *Game) ExportProfiles() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Profiles.Export()
}

func (g *Game) ImportProfiles(data string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Profiles.Import(data)
}

func (g *Game) SetSessionID(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessionID = id
}

func (g *Game) SessionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessionID
}

// Snapshot is a read-only view of the game for transport and for drivers.
type Snapshot struct {
	Scene       Scene                       `json:"scene"`
	Phase       string                      `json:"phase"`
	Scenario    string                      `json:"scenario,omitempty"`
	Index       int                         `json:"index"`
	Remaining   float64                     `json:"remaining"`
	ClockMs     int64                       `json:"clock_ms"`
	Targets     []targets.Target            `json:"targets"`
	Yaw         float32                     `json:"yaw"`
	Pitch       float32                     `json:"pitch"`
	Eye         mgl32.Vec3                  `json:"eye"`
	Captured    bool                        `json:"captured"`
	Sensitivity float32                     `json:"sensitivity"`
	Curve       sensitivity.CurveParameters `json:"curve"`
	Multiplier  float32                     `json:"multiplier"`
	Score       scoring.Tracker             `json:"score"`
	Analysis    analysis.Summary            `json:"analysis"`
	Players     []*players.Player           `json:"players,omitempty"`
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	cam := g.Player.Camera
	snap := Snapshot{
		Scene:       g.scene(),
		Phase:       g.Sequencer.Phase().String(),
		Index:       g.Sequencer.Index(),
		Remaining:   g.Sequencer.Remaining().Seconds(),
		ClockMs:     g.clock.Milliseconds(),
		Targets:     g.Targets.GetList(),
		Yaw:         cam.Yaw,
		Pitch:       cam.Pitch,
		Eye:         g.Player.Eye(),
		Captured:    cam.Captured,
		Sensitivity: cam.Sensitivity,
		Curve:       g.Tuner.Params(),
		Multiplier:  g.multiplier,
		Score:       *g.Score,
		Analysis:    g.Metrics.Summary(),
		Players:     g.Players.GetList(),
	}
	if g.Sequencer.Complete() {
		snap.Phase = PhaseComplete
	}
	if sc, ok := g.Sequencer.Current(); ok && g.Sequencer.Running() {
		snap.Scenario = sc.Name
	}
	return snap
}
