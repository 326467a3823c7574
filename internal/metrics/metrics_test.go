package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label != "" {
				match := false
				for _, lp := range m.GetLabel() {
					if lp.GetValue() == label {
						match = true
					}
				}
				if !match {
					continue
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return -1
}

func TestRecorder_Shots(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.Shot(true)
	r.Shot(true)
	r.Shot(false)

	if got := gatherValue(t, reg, "aimtrainer_shots_total", "hit"); got != 2 {
		t.Errorf("hits = %f, want 2", got)
	}
	if got := gatherValue(t, reg, "aimtrainer_shots_total", "miss"); got != 1 {
		t.Errorf("misses = %f, want 1", got)
	}
	if r.Count("shots_hit") != 2 || r.Count("shots_miss") != 1 {
		t.Errorf("Count() = %d/%d, want 2/1", r.Count("shots_hit"), r.Count("shots_miss"))
	}
}

func TestRecorder_FramesAndRooms(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.Frame(time.Millisecond)
	r.Frame(2 * time.Millisecond)
	r.SetRooms(3)
	r.Reaction(250)
	r.ScenarioCompleted("GridShot")

	if got := gatherValue(t, reg, "aimtrainer_frames_total", ""); got != 2 {
		t.Errorf("frames = %f, want 2", got)
	}
	if got := gatherValue(t, reg, "aimtrainer_frame_step_seconds", ""); got != 2 {
		t.Errorf("frame samples = %f, want 2", got)
	}
	if got := gatherValue(t, reg, "aimtrainer_active_rooms", ""); got != 3 {
		t.Errorf("rooms = %f, want 3", got)
	}
	if got := gatherValue(t, reg, "aimtrainer_reaction_milliseconds", ""); got != 1 {
		t.Errorf("reaction samples = %f, want 1", got)
	}
	if got := gatherValue(t, reg, "aimtrainer_scenarios_completed_total", "GridShot"); got != 1 {
		t.Errorf("GridShot completions = %f, want 1", got)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.Shot(true)
	r.Frame(time.Millisecond)
	r.SetRooms(1)
	r.Reaction(1)
	r.ScenarioCompleted("x")
	if r.Count("frames") != 0 {
		t.Error("nil recorder should count nothing")
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.Shot(true)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `aimtrainer_shots_total{result="hit"} 1`) {
		t.Errorf("metrics output missing shot counter:\n%s", body)
	}
}
