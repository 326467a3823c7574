package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ScenarioResult is one scenario's outcome inside a training session.
type ScenarioResult struct {
	SessionID     string
	Index         int
	Name          string
	Score         int
	Hits          int
	Misses        int
	Accuracy      float64
	AvgReactionMs float64
}

// CreateSession opens a training run for a player and returns its id.
func (d *DB) CreateSession(ctx context.Context, roomCode, playerID string, scenarioDurationMs int) (string, error) {
	id := uuid.NewString()
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO sessions (id, room_code, player_id, scenario_duration_ms)
		VALUES ($1, $2, $3, $4)
	`, id, roomCode, playerID, scenarioDurationMs)
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return id, nil
}

func (d *DB) EndSession(ctx context.Context, sessionID string, totalScore int) error {
	_, err := d.conn.ExecContext(ctx, `
		UPDATE sessions SET ended_at = now(), total_score = $2 WHERE id = $1
	`, sessionID, totalScore)
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	return nil
}

func (d *DB) AddScenarioResult(ctx context.Context, r ScenarioResult) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO session_scenarios (session_id, scenario_index, scenario_name, score, hits, misses, accuracy, avg_reaction_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id, scenario_index) DO UPDATE
		SET score = $4, hits = $5, misses = $6, accuracy = $7, avg_reaction_ms = $8
	`, r.SessionID, r.Index, r.Name, r.Score, r.Hits, r.Misses, r.Accuracy, r.AvgReactionMs)
	if err != nil {
		return fmt.Errorf("adding scenario result: %w", err)
	}
	return nil
}
