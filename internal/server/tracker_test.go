package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"aimtrainer/internal/analytics"
	"aimtrainer/internal/combat"
	"aimtrainer/internal/db"
	"aimtrainer/internal/gamedata"
	"aimtrainer/internal/metrics"
	"aimtrainer/internal/rooms"
	"aimtrainer/internal/scenario"
	"aimtrainer/internal/scoring"
	"aimtrainer/internal/server/mocks"
	"aimtrainer/internal/wshub"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/mock/gomock"
)

const testHost = "host-1"

func newTrackedRoom(t *testing.T, store SessionStore) (*Server, *rooms.Room) {
	t.Helper()
	cfg := testGameConfig()
	cfg.ScenarioDuration = time.Second
	cfg.ScenarioDelay = 0
	cfg.Scenarios = scenario.Catalog()[:2]
	srv := &Server{
		Rooms:   rooms.NewStore(cfg),
		Store:   store,
		Metrics: metrics.New(prometheus.NewRegistry()),
	}
	room, err := srv.Rooms.Create(testHost)
	if err != nil {
		t.Fatal(err)
	}
	room.Game.Players.Add(testHost, "Host")
	return srv, room
}

// playRun starts a run and steps idle frames until it completes.
func playRun(t *testing.T, srv *Server, room *rooms.Room) {
	t.Helper()
	ctx := context.Background()
	if err := srv.handleClientMessage(ctx, room, testHost, wshub.ClientMessage{Type: "start"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 100 && room.Game.Scene() == gamedata.SceneCombat; i++ {
		if err := srv.handleClientMessage(ctx, room, testHost, wshub.ClientMessage{Type: "frame", DT: 100}); err != nil {
			t.Fatalf("frame: %v", err)
		}
	}
	if room.Game.Scene() != gamedata.SceneRecap {
		t.Fatalf("scene = %q, want %q", room.Game.Scene(), gamedata.SceneRecap)
	}
}

func TestTracker_RunWithoutDatabase(t *testing.T) {
	srv, room := newTrackedRoom(t, nil)
	playRun(t, srv, room)

	p := room.Game.Players.Get(testHost)
	if p.Runs != 1 {
		t.Errorf("Runs = %d, want 1", p.Runs)
	}
	if srv.runs.get(room.Code) != nil {
		t.Error("tracker should be dropped after the run completes")
	}
	if got := srv.Metrics.Count("scenarios"); got != 2 {
		t.Errorf("scenarios completed = %d, want 2", got)
	}
}

func TestTracker_PersistsRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	srv, room := newTrackedRoom(t, store)

	var results []db.ScenarioResult
	gomock.InOrder(
		store.EXPECT().CreateSession(gomock.Any(), room.Code, testHost, 1000).Return("sess-1", nil),
		store.EXPECT().AddScenarioResult(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r db.ScenarioResult) error {
				results = append(results, r)
				return nil
			}).Times(2),
		store.EXPECT().EndSession(gomock.Any(), "sess-1", 0).Return(nil),
	)

	playRun(t, srv, room)

	if len(results) != 2 {
		t.Fatalf("scenario results = %d, want 2", len(results))
	}
	for i, r := range results {
		if r.SessionID != "sess-1" || r.Index != i {
			t.Errorf("result %d = %+v", i, r)
		}
		if r.Name != scenario.Catalog()[i].Name {
			t.Errorf("result %d name = %q, want %q", i, r.Name, scenario.Catalog()[i].Name)
		}
	}
	if room.Game.SessionID() != "sess-1" {
		t.Errorf("SessionID() = %q, want sess-1", room.Game.SessionID())
	}
}

func TestTracker_CreateSessionFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	store.EXPECT().CreateSession(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("db down"))

	srv, room := newTrackedRoom(t, store)
	playRun(t, srv, room)

	// No further writes without a session, but the room still counts the run
	if p := room.Game.Players.Get(testHost); p.Runs != 1 {
		t.Errorf("Runs = %d, want 1", p.Runs)
	}
}

func TestTracker_AwardsSessionBadges(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	srv, room := newTrackedRoom(t, store)

	srv.runs.set(room.Code, &runTracker{
		playerID:  testHost,
		sessionID: "sess-1",
		scenarios: []analytics.ScenarioStats{{Index: 0, Score: 2000, Hits: 20, Misses: 0}},
	})

	var awarded []string
	store.EXPECT().EndSession(gomock.Any(), "sess-1", 2000).Return(nil)
	store.EXPECT().AwardBadge(gomock.Any(), testHost, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, badge string, sessionID *string) error {
			if sessionID == nil || *sessionID != "sess-1" {
				t.Errorf("badge %s awarded without the session id", badge)
			}
			awarded = append(awarded, badge)
			return nil
		}).AnyTimes()

	srv.endRun(context.Background(), room)

	want := map[string]bool{string(analytics.BadgeSharpshooter): true, string(analytics.BadgePerfectionist): true}
	if len(awarded) != len(want) {
		t.Fatalf("awarded = %v, want %v", awarded, want)
	}
	for _, b := range awarded {
		if !want[b] {
			t.Errorf("unexpected badge %s", b)
		}
	}
	if p := room.Game.Players.Get(testHost); p.Best != 2000 {
		t.Errorf("Best = %d, want 2000", p.Best)
	}
}

func TestTracker_RecordsShots(t *testing.T) {
	srv, room := newTrackedRoom(t, nil)
	srv.ShotBuffer = make(chan db.ShotEvent, 10)
	srv.runs.set(room.Code, &runTracker{playerID: testHost, sessionID: "sess-1"})

	res := gamedata.FrameResult{
		Shot:          combat.Shot{Accepted: true, Hit: true, TargetID: 7, Distance: 12},
		Score:         scoring.Tracker{ShotFired: true, HitRegistered: true},
		Reactions:     []time.Duration{250 * time.Millisecond},
		ScenarioIndex: 1,
	}
	srv.observe(context.Background(), room, res, gamedata.Snapshot{Yaw: 0.5, Pitch: -0.1})

	select {
	case ev := <-srv.ShotBuffer:
		if ev.SessionID != "sess-1" || ev.PlayerID != testHost || ev.ScenarioIndex != 1 {
			t.Errorf("shot = %+v", ev)
		}
		if !ev.Hit || ev.TargetID != 7 || ev.Distance != 12 {
			t.Errorf("shot hit fields = %+v", ev)
		}
		if ev.ReactionMs == nil || *ev.ReactionMs != 250 {
			t.Errorf("ReactionMs = %v, want 250", ev.ReactionMs)
		}
		if ev.Yaw != 0.5 || ev.Pitch != -0.1 {
			t.Errorf("yaw/pitch = %f/%f", ev.Yaw, ev.Pitch)
		}
	default:
		t.Fatal("no shot buffered")
	}
	if srv.Metrics.Count("shots_hit") != 1 {
		t.Errorf("shots_hit = %d, want 1", srv.Metrics.Count("shots_hit"))
	}
}

func TestTracker_MissWithoutSessionIsNotBuffered(t *testing.T) {
	srv, room := newTrackedRoom(t, nil)
	srv.ShotBuffer = make(chan db.ShotEvent, 10)

	res := gamedata.FrameResult{
		Shot:  combat.Shot{Accepted: true},
		Score: scoring.Tracker{ShotFired: true},
	}
	srv.observe(context.Background(), room, res, gamedata.Snapshot{})

	if len(srv.ShotBuffer) != 0 {
		t.Error("shots outside a session should not be persisted")
	}
	if srv.Metrics.Count("shots_miss") != 1 {
		t.Errorf("shots_miss = %d, want 1", srv.Metrics.Count("shots_miss"))
	}
}

func TestTracker_ResetDropsRun(t *testing.T) {
	srv, room := newTrackedRoom(t, nil)
	ctx := context.Background()
	srv.handleClientMessage(ctx, room, testHost, wshub.ClientMessage{Type: "start"})
	if srv.runs.get(room.Code) == nil {
		t.Fatal("start should open a tracker")
	}

	srv.handleClientMessage(ctx, room, testHost, wshub.ClientMessage{Type: "reset"})
	if srv.runs.get(room.Code) != nil {
		t.Error("reset should drop the tracker")
	}
	if room.Game.Scene() != gamedata.SceneLobby {
		t.Errorf("scene = %q, want %q", room.Game.Scene(), gamedata.SceneLobby)
	}
}

func TestShotBatchWriter_FlushesOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)

	var mu sync.Mutex
	written := 0
	store.EXPECT().BatchRecordShots(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, events []db.ShotEvent) error {
			mu.Lock()
			written += len(events)
			mu.Unlock()
			return nil
		}).MinTimes(1)

	buffer := make(chan db.ShotEvent, 10)
	for i := 0; i < 3; i++ {
		buffer <- db.ShotEvent{SessionID: "sess-1", TargetID: i}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- shotBatchWriter(ctx, store, buffer) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("shotBatchWriter() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("writer did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if written != 3 {
		t.Errorf("written = %d, want 3", written)
	}
}
