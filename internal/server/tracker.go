package server

import (
	"context"
	"log"
	"sync"
	"time"

	"aimtrainer/internal/analytics"
	"aimtrainer/internal/db"
	"aimtrainer/internal/gamedata"
	"aimtrainer/internal/rooms"
	"aimtrainer/internal/scenario"
)

const (
	shotBufferSize = 1000
	shotBatchSize  = 50
	shotFlushEvery = 500 * time.Millisecond
	dbTimeout      = 2 * time.Second
)

// runTracker follows one scenario run in a room: it opens the session row,
// records each scenario as it ends and closes the session with badges when
// the run completes. Score and metrics are reset per scenario, so the
// run total lives here.
type runTracker struct {
	playerID  string
	sessionID string
	scenarios []analytics.ScenarioStats
}

func (t *runTracker) total() int {
	sum := 0
	for _, sc := range t.scenarios {
		sum += sc.Score
	}
	return sum
}

type trackers struct {
	mu   sync.Mutex
	runs map[string]*runTracker
}

func (ts *trackers) get(code string) *runTracker {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.runs == nil {
		return nil
	}
	return ts.runs[code]
}

func (ts *trackers) set(code string, t *runTracker) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.runs == nil {
		ts.runs = make(map[string]*runTracker)
	}
	ts.runs[code] = t
}

func (ts *trackers) drop(code string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	delete(ts.runs, code)
}

func isRunStart(tr scenario.Transition) bool {
	return tr.Phase == scenario.PhaseDelay && tr.Index == 0 && tr.At == 0 && !tr.Ended && !tr.Complete
}

// observe feeds one frame's outcome into metrics and persistence. It runs on
// the goroutine that drives the room's game.
func (s *Server) observe(ctx context.Context, room *rooms.Room, res gamedata.FrameResult, snap gamedata.Snapshot) {
	for _, tr := range res.Transitions {
		if isRunStart(tr) {
			s.beginRun(ctx, room)
		}
	}

	for _, rt := range res.Reactions {
		s.Metrics.Reaction(float64(rt) / float64(time.Millisecond))
	}
	if res.Score.ShotFired {
		s.Metrics.Shot(res.Score.HitRegistered)
		s.recordShot(room, res, snap)
	}

	for _, tr := range res.Transitions {
		if tr.Ended {
			s.endScenario(ctx, room, tr.EndedIndex, res)
		}
		if tr.Complete {
			s.endRun(ctx, room)
		}
	}
}

func (s *Server) beginRun(ctx context.Context, room *rooms.Room) {
	t := &runTracker{playerID: room.HostID}
	if s.Store != nil {
		ctx, cancel := context.WithTimeout(ctx, dbTimeout)
		defer cancel()
		ms := int(room.Game.Config.ScenarioDuration / time.Millisecond)
		id, err := s.Store.CreateSession(ctx, room.Code, room.HostID, ms)
		if err != nil {
			log.Printf("[DB] CreateSession error: %v\n", err)
		} else {
			t.sessionID = id
			room.Game.SetSessionID(id)
		}
	}
	s.runs.set(room.Code, t)
	log.Printf("[Room] %s started a run\n", room.Code)
}

func (s *Server) recordShot(room *rooms.Room, res gamedata.FrameResult, snap gamedata.Snapshot) {
	t := s.runs.get(room.Code)
	if t == nil || t.sessionID == "" || s.ShotBuffer == nil {
		return
	}
	ev := db.ShotEvent{
		SessionID:     t.sessionID,
		PlayerID:      t.playerID,
		ScenarioIndex: res.ScenarioIndex,
		Hit:           res.Score.HitRegistered,
		Yaw:           snap.Yaw,
		Pitch:         snap.Pitch,
		FiredAt:       time.Now(),
	}
	if res.Shot.Hit {
		ev.TargetID = res.Shot.TargetID
		ev.Distance = res.Shot.Distance
	}
	if len(res.Reactions) > 0 {
		ms := int(res.Reactions[0].Milliseconds())
		ev.ReactionMs = &ms
	}
	select {
	case s.ShotBuffer <- ev:
	default:
		log.Println("[DB] Shot buffer full, dropping event")
	}
}

func (s *Server) endScenario(ctx context.Context, room *rooms.Room, index int, res gamedata.FrameResult) {
	g := room.Game
	name := ""
	if index >= 0 && index < len(g.Sequencer.Scenarios) {
		name = g.Sequencer.Scenarios[index].Name
	}
	stats := analytics.ScenarioStats{
		Index:         index,
		Name:          name,
		Score:         res.Score.Score,
		Hits:          res.Score.Hits,
		Misses:        res.Score.Misses,
		Accuracy:      float64(res.Score.Accuracy),
		AvgReactionMs: g.Metrics.AverageReactionMs(),
	}
	g.ResetStats()
	s.Metrics.ScenarioCompleted(name)

	t := s.runs.get(room.Code)
	if t == nil {
		return
	}
	t.scenarios = append(t.scenarios, stats)
	if s.Store == nil || t.sessionID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	err := s.Store.AddScenarioResult(ctx, db.ScenarioResult{
		SessionID:     t.sessionID,
		Index:         stats.Index,
		Name:          stats.Name,
		Score:         stats.Score,
		Hits:          stats.Hits,
		Misses:        stats.Misses,
		Accuracy:      stats.Accuracy,
		AvgReactionMs: stats.AvgReactionMs,
	})
	if err != nil {
		log.Printf("[DB] AddScenarioResult error: %v\n", err)
	}
}

func (s *Server) endRun(ctx context.Context, room *rooms.Room) {
	t := s.runs.get(room.Code)
	if t == nil {
		return
	}
	s.runs.drop(room.Code)

	total := t.total()
	room.Game.Players.RecordRun(t.playerID, total)
	log.Printf("[Room] %s finished a run: %d points\n", room.Code, total)

	if s.Store == nil || t.sessionID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	if err := s.Store.EndSession(ctx, t.sessionID, total); err != nil {
		log.Printf("[DB] EndSession error: %v\n", err)
		return
	}

	stats := analytics.NewSessionStats(t.sessionID, t.playerID, t.scenarios)
	sessionID := t.sessionID
	for _, b := range analytics.EvaluateSessionBadges(stats) {
		if err := s.Store.AwardBadge(ctx, t.playerID, string(b.ID), &sessionID); err != nil {
			log.Printf("[DB] AwardBadge error: %v\n", err)
		}
	}

	if s.Analytics == nil {
		return
	}
	life, err := s.Analytics.GetPlayerLifetimeStats(ctx, t.playerID)
	if err != nil {
		log.Printf("[DB] GetPlayerLifetimeStats error: %v\n", err)
		return
	}
	for _, b := range life.Badges {
		if err := s.Store.AwardBadge(ctx, t.playerID, string(b.ID), nil); err != nil {
			log.Printf("[DB] AwardBadge error: %v\n", err)
		}
	}
}

// shotBatchWriter drains the shot buffer into the store in batches until ctx
// is done, then flushes what is left.
func shotBatchWriter(ctx context.Context, store SessionStore, buffer <-chan db.ShotEvent) error {
	ticker := time.NewTicker(shotFlushEvery)
	defer ticker.Stop()

	batch := make([]db.ShotEvent, 0, shotBatchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := store.BatchRecordShots(ctx, batch); err != nil {
			log.Printf("[DB] BatchRecordShots error: %v\n", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case ev := <-buffer:
					batch = append(batch, ev)
				default:
					flushCtx, cancel := context.WithTimeout(context.Background(), dbTimeout)
					flush(flushCtx)
					cancel()
					return nil
				}
			}
		case ev := <-buffer:
			batch = append(batch, ev)
			if len(batch) >= shotBatchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}
