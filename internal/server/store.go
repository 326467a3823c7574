package server

import (
	"context"

	"aimtrainer/internal/db"
)

//go:generate go tool mockgen -destination=./mocks/store_mock.go -package=mocks . SessionStore

// SessionStore is the persistence used while rooms run. *db.DB implements it.
type SessionStore interface {
	Ping(ctx context.Context) error
	UpsertPlayer(ctx context.Context, id, name, color string) error
	GetPlayer(ctx context.Context, id string) (*db.PlayerRecord, error)
	GetPlayerBadges(ctx context.Context, playerID string) ([]string, error)
	CreateSession(ctx context.Context, roomCode, playerID string, scenarioDurationMs int) (string, error)
	EndSession(ctx context.Context, sessionID string, totalScore int) error
	AddScenarioResult(ctx context.Context, r db.ScenarioResult) error
	BatchRecordShots(ctx context.Context, events []db.ShotEvent) error
	AwardBadge(ctx context.Context, playerID, badgeID string, sessionID *string) error
}

var _ SessionStore = (*db.DB)(nil)
