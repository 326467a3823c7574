package db

import (
	"context"
	"os"
	"testing"
	"time"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	ctx := context.Background()
	database, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		for _, table := range []string{"player_badges", "shot_events", "session_scenarios", "sessions", "players"} {
			database.conn.Exec("DELETE FROM " + table)
		}
		database.Close()
	})
	return database
}

func createSession(t *testing.T, database *DB, playerID string) string {
	t.Helper()
	ctx := context.Background()
	if err := database.UpsertPlayer(ctx, playerID, "Host", "#aabbcc"); err != nil {
		t.Fatalf("UpsertPlayer() error: %v", err)
	}
	id, err := database.CreateSession(ctx, "ABCD", playerID, 30000)
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	return id
}

func TestConnect(t *testing.T) {
	database := getTestDB(t)
	if err := database.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	database := getTestDB(t)

	tables := []string{"players", "sessions", "session_scenarios", "shot_events", "player_badges"}
	for _, table := range tables {
		var exists bool
		err := database.conn.QueryRow(`
			SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)
		`, table).Scan(&exists)
		if err != nil {
			t.Errorf("checking table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s does not exist", table)
		}
	}

	// Running again must be harmless
	if err := database.Migrate(context.Background()); err != nil {
		t.Errorf("second Migrate() error: %v", err)
	}
}

func TestUpsertPlayer(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()

	id := "550e8400-e29b-41d4-a716-446655440000"
	if err := database.UpsertPlayer(ctx, id, "Alice", "#ff0000"); err != nil {
		t.Fatalf("UpsertPlayer() error: %v", err)
	}
	if err := database.UpsertPlayer(ctx, id, "Alice Updated", "#00ff00"); err != nil {
		t.Fatalf("UpsertPlayer() update error: %v", err)
	}

	p, err := database.GetPlayer(ctx, id)
	if err != nil {
		t.Fatalf("GetPlayer() error: %v", err)
	}
	if p.Name != "Alice Updated" {
		t.Errorf("name = %q, want %q", p.Name, "Alice Updated")
	}
	if p.Color != "#00ff00" {
		t.Errorf("color = %q, want %q", p.Color, "#00ff00")
	}
}

func TestGetPlayer_NotFound(t *testing.T) {
	database := getTestDB(t)

	_, err := database.GetPlayer(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err == nil {
		t.Error("GetPlayer() should return error for nonexistent player")
	}
}

func TestCreateAndEndSession(t *testing.T) {
	database := getTestDB(t)
	sessionID := createSession(t, database, "550e8400-e29b-41d4-a716-446655440001")
	if sessionID == "" {
		t.Fatal("CreateSession() returned empty ID")
	}

	if err := database.EndSession(context.Background(), sessionID, 1234); err != nil {
		t.Fatalf("EndSession() error: %v", err)
	}

	var endedAt *time.Time
	var total int
	database.conn.QueryRow("SELECT ended_at, total_score FROM sessions WHERE id = $1", sessionID).Scan(&endedAt, &total)
	if endedAt == nil {
		t.Error("ended_at should be set after EndSession()")
	}
	if total != 1234 {
		t.Errorf("total_score = %d, want %d", total, 1234)
	}
}

func TestAddScenarioResult(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()
	sessionID := createSession(t, database, "550e8400-e29b-41d4-a716-446655440002")

	r := ScenarioResult{SessionID: sessionID, Index: 0, Name: "GridShot", Score: 500, Hits: 5, Misses: 1, Accuracy: 83.3, AvgReactionMs: 410}
	if err := database.AddScenarioResult(ctx, r); err != nil {
		t.Fatalf("AddScenarioResult() error: %v", err)
	}

	// Re-recording the same scenario replaces it
	r.Score = 600
	if err := database.AddScenarioResult(ctx, r); err != nil {
		t.Fatalf("AddScenarioResult() upsert error: %v", err)
	}

	var score, count int
	database.conn.QueryRow("SELECT MAX(score), COUNT(*) FROM session_scenarios WHERE session_id = $1", sessionID).Scan(&score, &count)
	if count != 1 || score != 600 {
		t.Errorf("rows = %d score = %d, want 1 and 600", count, score)
	}
}

func TestBatchRecordShots(t *testing.T) {
	database := getTestDB(t)
	playerID := "550e8400-e29b-41d4-a716-446655440004"
	sessionID := createSession(t, database, playerID)

	now := time.Now()
	events := []ShotEvent{
		{SessionID: sessionID, PlayerID: playerID, Hit: true, TargetID: 1, FiredAt: now},
		{SessionID: sessionID, PlayerID: playerID, Hit: false, FiredAt: now},
		{SessionID: sessionID, PlayerID: playerID, ScenarioIndex: 1, Hit: true, TargetID: 2, FiredAt: now},
	}
	if err := database.BatchRecordShots(context.Background(), events); err != nil {
		t.Fatalf("BatchRecordShots() error: %v", err)
	}

	var count int
	database.conn.QueryRow("SELECT COUNT(*) FROM shot_events WHERE session_id = $1", sessionID).Scan(&count)
	if count != 3 {
		t.Errorf("shot count = %d, want 3", count)
	}
}

func TestAwardBadge(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()
	playerID := "550e8400-e29b-41d4-a716-446655440005"
	sessionID := createSession(t, database, playerID)

	if err := database.AwardBadge(ctx, playerID, "centurion", &sessionID); err != nil {
		t.Fatalf("AwardBadge() error: %v", err)
	}
	// Awarding twice is a no-op
	if err := database.AwardBadge(ctx, playerID, "centurion", nil); err != nil {
		t.Fatalf("AwardBadge() repeat error: %v", err)
	}
	if err := database.AwardBadge(ctx, playerID, "veteran", nil); err != nil {
		t.Fatalf("AwardBadge() error: %v", err)
	}

	badges, err := database.GetPlayerBadges(ctx, playerID)
	if err != nil {
		t.Fatalf("GetPlayerBadges() error: %v", err)
	}
	if len(badges) != 2 {
		t.Errorf("badges = %v, want 2 entries", badges)
	}
}
