package db

import (
	"context"
	"fmt"
	"time"
)

// ShotEvent is one accepted shot. ReactionMs is set only for hits that closed
// a spawn-to-hit interval.
type ShotEvent struct {
	SessionID     string
	PlayerID      string
	ScenarioIndex int
	Hit           bool
	TargetID      int
	Distance      float32
	Yaw           float32
	Pitch         float32
	ReactionMs    *int
	FiredAt       time.Time
}

const insertShot = `
	INSERT INTO shot_events (session_id, player_id, scenario_index, hit, target_id, distance, yaw, pitch, reaction_ms, fired_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (d *DB) BatchRecordShots(ctx context.Context, events []ShotEvent) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertShot)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx, ev.SessionID, ev.PlayerID, ev.ScenarioIndex, ev.Hit, ev.TargetID,
			ev.Distance, ev.Yaw, ev.Pitch, ev.ReactionMs, ev.FiredAt); err != nil {
			return fmt.Errorf("recording shot in batch: %w", err)
		}
	}

	return tx.Commit()
}
