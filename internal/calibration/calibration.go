package calibration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"sort"
	"time"

	"aimtrainer/internal/events"
	"aimtrainer/internal/gamedata"
	"aimtrainer/internal/input"
	"aimtrainer/internal/players"
	"aimtrainer/internal/scenario"
	"aimtrainer/internal/sensitivity"
	"aimtrainer/internal/targets"
)

const (
	StartMarker = "AIM_TRAINER_RESULTS_START"
	EndMarker   = "AIM_TRAINER_RESULTS_END"

	DefaultScenarios = 5
	DefaultDuration  = 30 * time.Second
	DefaultStep      = time.Second / 60
)

// Driver produces the input for each simulated frame.
type Driver interface {
	Next(snap gamedata.Snapshot, dt time.Duration) input.Frame
}

type Config struct {
	Scenarios int
	Duration  time.Duration
	// Delay between phases; zero runs them back to back.
	Delay   time.Duration
	Step    time.Duration
	Seed    int64
	Curve   sensitivity.CurveParameters
	Verbose bool
}

func DefaultConfig() Config {
	return Config{
		Scenarios: DefaultScenarios,
		Duration:  DefaultDuration,
		Step:      DefaultStep,
		Seed:      1,
		Curve:     sensitivity.DefaultCurve(),
	}
}

// Runner plays a fixed calibration session against the scenario catalog on a
// simulated clock and collects per-phase results.
type Runner struct {
	Game   *gamedata.Game
	Driver Driver
	Config Config

	results   map[string]float64
	reactions []time.Duration
}

func NewRunner(cfg Config, d Driver) *Runner {
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	gcfg := gamedata.DefaultConfig()
	gcfg.ScenarioDuration = cfg.Duration
	gcfg.ScenarioDelay = cfg.Delay
	gcfg.Curve = cfg.Curve
	gcfg.Seed = cfg.Seed
	gcfg.FreePlay = false
	gcfg.Scenarios = Scenarios(cfg.Scenarios)

	g := gamedata.NewGame(players.NewStore(), targets.NewStore(), events.NewBus(), gcfg)
	g.Sequencer.Verbose = cfg.Verbose
	return &Runner{Game: g, Driver: d, Config: cfg, results: make(map[string]float64)}
}

// Scenarios takes the first n catalog entries, wrapping around when n exceeds the catalog.
func Scenarios(n int) []scenario.Scenario {
	catalog := scenario.Catalog()
	list := make([]scenario.Scenario, 0, max(n, 0))
	for i := 0; i < n; i++ {
		list = append(list, catalog[i%len(catalog)])
	}
	return list
}

// Run drives the session to completion. On cancellation it returns what was
// collected so far along with the context error.
func (r *Runner) Run(ctx context.Context) (map[string]float64, error) {
	g := r.Game
	if _, ok := g.Start(); !ok {
		return r.results, fmt.Errorf("starting calibration: a run is already in progress")
	}
	for !g.Sequencer.Complete() {
		if err := ctx.Err(); err != nil {
			return r.results, fmt.Errorf("calibration interrupted: %w", err)
		}
		f := r.Driver.Next(g.Snapshot(), r.Config.Step)
		f.DT = r.Config.Step
		res := g.Step(f)
		r.reactions = append(r.reactions, res.Reactions...)
		for _, tr := range res.Transitions {
			if !tr.Ended {
				continue
			}
			r.record(tr.EndedIndex, res)
			g.ResetStats()
		}
	}
	r.recordLatency()
	if r.Config.Verbose {
		log.Printf("[Calibration] All scenarios complete.\n")
	}
	return r.results, nil
}

func (r *Runner) record(n int, res gamedata.FrameResult) {
	key := func(name string) string {
		return fmt.Sprintf("scenario_%d_%s", n, name)
	}
	r.results[key("score")] = float64(res.Score.Score)
	r.results[key("accuracy")] = float64(res.Score.Accuracy)
	r.results[key("hits")] = float64(res.Score.Hits)
	r.results[key("misses")] = float64(res.Score.Misses)
	r.results[key("avg_reaction_ms")] = r.Game.Metrics.AverageReactionMs()
	if r.Config.Verbose {
		log.Printf("[Calibration] Scenario %d finished: score=%d accuracy=%.1f\n", n+1, res.Score.Score, res.Score.Accuracy)
	}
}

// recordLatency stores the mean spawn-to-hit time over the whole session.
func (r *Runner) recordLatency() {
	if len(r.reactions) == 0 {
		return
	}
	var total time.Duration
	for _, rt := range r.reactions {
		total += rt
	}
	r.results["latency_ms"] = float64(total.Microseconds()) / 1000 / float64(len(r.reactions))
}

// Results returns a copy of what has been collected.
func (r *Runner) Results() map[string]float64 {
	out := make(map[string]float64, len(r.results))
	for k, v := range r.results {
		out[k] = v
	}
	return out
}

// WriteResults prints the delimited JSON block. Results that cannot be
// encoded (NaN, Inf) fall back to one "key: value" line per metric.
func WriteResults(w io.Writer, results map[string]float64) error {
	data, err := json.Marshal(results)
	if err != nil {
		log.Printf("[Calibration] Error serializing results to JSON: %v\n", err)
		keys := make([]string, 0, len(results))
		for k := range results {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "%s: %s\n", k, formatValue(results[k])); err != nil {
				return fmt.Errorf("writing results: %w", err)
			}
		}
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s\n%s\n%s\n", StartMarker, data, EndMarker); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%g", v)
}
