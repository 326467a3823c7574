package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aimtrainer"

// Recorder holds the server's Prometheus collectors. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer

	shots      *prometheus.CounterVec
	frames     prometheus.Counter
	scenarios  *prometheus.CounterVec
	rooms      prometheus.Gauge
	frameTime  prometheus.Histogram
	reactionMs prometheus.Histogram

	mu     sync.Mutex
	counts map[string]int
}

// New registers the collectors with reg. Pass a fresh prometheus.NewRegistry
// in tests so runs do not collide.
func New(reg *prometheus.Registry) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		gatherer: reg,
		shots: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shots_total",
			Help:      "Accepted shots by result.",
		}, []string{"result"}),
		frames: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames stepped across all rooms.",
		}),
		scenarios: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_completed_total",
			Help:      "Scenarios that ran to the end of their active window.",
		}, []string{"scenario"}),
		rooms: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Training rooms currently held in memory.",
		}),
		frameTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_step_seconds",
			Help:      "Wall time spent in one frame step.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
		reactionMs: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reaction_milliseconds",
			Help:      "Spawn-to-hit reaction times.",
			Buckets:   prometheus.LinearBuckets(100, 100, 10),
		}),
		counts: make(map[string]int),
	}
}

func (r *Recorder) Shot(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.shots.WithLabelValues(result).Inc()
	r.bump("shots_" + result)
}

func (r *Recorder) Frame(elapsed time.Duration) {
	if r == nil {
		return
	}
	r.frames.Inc()
	r.frameTime.Observe(elapsed.Seconds())
	r.bump("frames")
}

func (r *Recorder) ScenarioCompleted(name string) {
	if r == nil {
		return
	}
	r.scenarios.WithLabelValues(name).Inc()
	r.bump("scenarios")
}

func (r *Recorder) Reaction(ms float64) {
	if r == nil {
		return
	}
	r.reactionMs.Observe(ms)
}

func (r *Recorder) SetRooms(n int) {
	if r == nil {
		return
	}
	r.rooms.Set(float64(n))
}

// Count returns how many times a counter was bumped by this recorder.
func (r *Recorder) Count(name string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

func (r *Recorder) bump(name string) {
	r.mu.Lock()
	r.counts[name]++
	r.mu.Unlock()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
