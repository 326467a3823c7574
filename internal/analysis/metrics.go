package analysis

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MaxSamples             = 1000
	MicroAdjustmentSpeed   = 50.0 // px/s
	microAdjustmentWindow  = 5
	overshootAngle         = 90.0 // degrees
	overshootMinMagnitude  = 10.0
	overshootMinDeltaSqLen = 1.0
)

type AimSample struct {
	At       time.Duration
	Delta    mgl32.Vec2
	Speed    float32
	Hit      bool
	Forward  mgl32.Vec3
	HitPoint mgl32.Vec3
}

// Metrics collects per-frame aim samples and derives aim-quality counters.
type Metrics struct {
	samples          []AimSample
	spawns           map[int]time.Duration
	reactions        []time.Duration
	MicroAdjustments int
	Overshoots       int
}

func NewMetrics() *Metrics {
	return &Metrics{
		samples: make([]AimSample, 0, MaxSamples),
		spawns:  make(map[int]time.Duration),
	}
}

func (m *Metrics) Record(s AimSample) {
	if len(m.samples) == MaxSamples {
		copy(m.samples, m.samples[1:])
		m.samples = m.samples[:MaxSamples-1]
	}
	m.samples = append(m.samples, s)
	m.detectOvershoot()
	m.detectMicroAdjustment()
}

// detectOvershoot flags a sharp reversal between the last two significant deltas.
func (m *Metrics) detectOvershoot() {
	n := len(m.samples)
	if n < 2 {
		return
	}
	d1, d2 := m.samples[n-1].Delta, m.samples[n-2].Delta
	if d1.LenSqr() <= overshootMinDeltaSqLen || d2.LenSqr() <= overshootMinDeltaSqLen {
		return
	}
	if angleBetween(d1, d2) > overshootAngle && d1.Len()+d2.Len() > overshootMinMagnitude {
		m.Overshoots++
	}
}

// detectMicroAdjustment counts hits preceded by at least two slow samples.
func (m *Metrics) detectMicroAdjustment() {
	n := len(m.samples)
	if n < microAdjustmentWindow || !m.samples[n-1].Hit {
		return
	}
	streak := 0
	for i := n - 2; i >= n-microAdjustmentWindow; i-- {
		if m.samples[i].Speed >= MicroAdjustmentSpeed {
			break
		}
		streak++
	}
	if streak > 1 {
		m.MicroAdjustments++
	}
}

func angleBetween(a, b mgl32.Vec2) float64 {
	cos := float64(a.Dot(b) / (a.Len() * b.Len()))
	cos = math.Max(-1, math.Min(1, cos))
	return float64(mgl32.RadToDeg(float32(math.Acos(cos))))
}

func (m *Metrics) RecordSpawn(id int, at time.Duration) {
	m.spawns[id] = at
}

// RecordHit closes the spawn-to-hit interval for a target.
func (m *Metrics) RecordHit(id int, at time.Duration) (time.Duration, bool) {
	spawned, ok := m.spawns[id]
	if !ok {
		return 0, false
	}
	delete(m.spawns, id)
	reaction := at - spawned
	m.reactions = append(m.reactions, reaction)
	return reaction, true
}

// Forget drops a spawn that ended without a hit.
func (m *Metrics) Forget(id int) {
	delete(m.spawns, id)
}

// AverageReactionMs is 0 until the first hit.
func (m *Metrics) AverageReactionMs() float64 {
	if len(m.reactions) == 0 {
		return 0
	}
	var total time.Duration
	for _, r := range m.reactions {
		total += r
	}
	return float64(total.Microseconds()) / 1000 / float64(len(m.reactions))
}

// AverageSpeed over the most recent n samples.
func (m *Metrics) AverageSpeed(n int) float32 {
	if n <= 0 || len(m.samples) == 0 {
		return 0
	}
	n = min(n, len(m.samples))
	var sum float32
	for _, s := range m.samples[len(m.samples)-n:] {
		sum += s.Speed
	}
	return sum / float32(n)
}

func (m *Metrics) Len() int {
	return len(m.samples)
}

func (m *Metrics) Reset() {
	m.ResetStats()
	m.spawns = make(map[int]time.Duration)
}

// ResetStats clears samples and reactions but keeps pending spawns, so targets
// already on the field still yield a reaction when hit.
func (m *Metrics) ResetStats() {
	m.samples = m.samples[:0]
	m.reactions = nil
	m.MicroAdjustments = 0
	m.Overshoots = 0
}

type Summary struct {
	AvgReactionMs    float64 `json:"avg_reaction_ms"`
	MicroAdjustments int     `json:"micro_adjustments"`
	Overshoots       int     `json:"overshoots"`
	Samples          int     `json:"samples"`
}

func (m *Metrics) Summary() Summary {
	return Summary{
		AvgReactionMs:    m.AverageReactionMs(),
		MicroAdjustments: m.MicroAdjustments,
		Overshoots:       m.Overshoots,
		Samples:          len(m.samples),
	}
}
