package analytics

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the read side of the database. *db.DB satisfies it.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Queries struct {
	DB Querier
}

func NewQueries(q Querier) *Queries {
	return &Queries{DB: q}
}

func (q *Queries) GetScenarioStats(ctx context.Context, sessionID string) ([]ScenarioStats, error) {
	rows, err := q.DB.QueryContext(ctx, `
		SELECT scenario_index, scenario_name, score, hits, misses, accuracy, avg_reaction_ms
		FROM session_scenarios
		WHERE session_id = $1
		ORDER BY scenario_index
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting scenario stats: %w", err)
	}
	defer rows.Close()

	var out []ScenarioStats
	for rows.Next() {
		var s ScenarioStats
		if err := rows.Scan(&s.Index, &s.Name, &s.Score, &s.Hits, &s.Misses, &s.Accuracy, &s.AvgReactionMs); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (q *Queries) GetSessionStats(ctx context.Context, sessionID string) (*SessionStats, error) {
	var playerID string
	err := q.DB.QueryRowContext(ctx, `SELECT player_id FROM sessions WHERE id = $1`, sessionID).Scan(&playerID)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	scenarios, err := q.GetScenarioStats(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	stats := NewSessionStats(sessionID, playerID, scenarios)
	return &stats, nil
}

func (q *Queries) GetPlayerLifetimeStats(ctx context.Context, playerID string) (*PlayerLifetimeStats, error) {
	stats := &PlayerLifetimeStats{
		PlayerID: playerID,
	}

	err := q.DB.QueryRowContext(ctx, `SELECT name, color FROM players WHERE id = $1`, playerID).
		Scan(&stats.PlayerName, &stats.PlayerColor)
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}

	err = q.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as sessions_played,
			COALESCE(SUM(total_score), 0) as total_score,
			COALESCE(MAX(total_score), 0) as best_session
		FROM sessions
		WHERE player_id = $1 AND ended_at IS NOT NULL
	`, playerID).Scan(&stats.SessionsPlayed, &stats.TotalScore, &stats.BestSession)
	if err != nil {
		return nil, fmt.Errorf("getting lifetime stats: %w", err)
	}

	err = q.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE hit) as hits,
			COUNT(*) as shots,
			COALESCE(MIN(reaction_ms), 0) as best_reaction
		FROM shot_events
		WHERE player_id = $1
	`, playerID).Scan(&stats.TotalHits, &stats.TotalShots, &stats.BestReactionMs)
	if err != nil {
		return nil, fmt.Errorf("getting shot stats: %w", err)
	}
	if stats.TotalShots > 0 {
		stats.Accuracy = float64(stats.TotalHits) / float64(stats.TotalShots) * 100
	}

	// Per-session accuracy, most recent first
	rows, err := q.DB.QueryContext(ctx, `
		SELECT COALESCE(SUM(sc.hits)::float * 100 / NULLIF(SUM(sc.hits + sc.misses), 0), 0)
		FROM sessions s
		LEFT JOIN session_scenarios sc ON sc.session_id = s.id
		WHERE s.player_id = $1 AND s.ended_at IS NOT NULL
		GROUP BY s.id, s.ended_at
		ORDER BY s.ended_at DESC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting streak: %w", err)
	}
	defer rows.Close()

	var accuracies []float64
	for rows.Next() {
		var a float64
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		accuracies = append(accuracies, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	stats.Streak = Streak(accuracies, StreakAccuracy)

	stats.Badges = EvaluateLifetimeBadges(*stats)

	return stats, nil
}

// LeaderboardQuery returns the SQL for a leaderboard category. The query takes
// the row limit as its only parameter.
func LeaderboardQuery(category string) (string, error) {
	switch category {
	case "score":
		return `
			SELECT p.id, p.name, p.color, COALESCE(MAX(s.total_score), 0)::float as value
			FROM players p
			JOIN sessions s ON s.player_id = p.id AND s.ended_at IS NOT NULL
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`, nil
	case "accuracy":
		return `
			SELECT p.id, p.name, p.color,
				ROUND((COUNT(*) FILTER (WHERE se.hit))::numeric * 100 / COUNT(*), 1)::float as value
			FROM players p
			JOIN shot_events se ON se.player_id = p.id
			GROUP BY p.id, p.name, p.color
			HAVING COUNT(*) >= 20
			ORDER BY value DESC
			LIMIT $1`, nil
	case "reaction":
		return `
			SELECT p.id, p.name, p.color, AVG(se.reaction_ms)::float as value
			FROM players p
			JOIN shot_events se ON se.player_id = p.id AND se.reaction_ms IS NOT NULL
			GROUP BY p.id, p.name, p.color
			ORDER BY value ASC
			LIMIT $1`, nil
	case "hits":
		return `
			SELECT p.id, p.name, p.color, (COUNT(*) FILTER (WHERE se.hit))::float as value
			FROM players p
			JOIN shot_events se ON se.player_id = p.id
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`, nil
	case "sessions":
		return `
			SELECT p.id, p.name, p.color, COUNT(*)::float as value
			FROM players p
			JOIN sessions s ON s.player_id = p.id AND s.ended_at IS NOT NULL
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`, nil
	}
	return "", fmt.Errorf("unknown leaderboard category: %s", category)
}

func (q *Queries) GetLeaderboard(ctx context.Context, category string, limit int) ([]LeaderboardEntry, error) {
	query, err := LeaderboardQuery(category)
	if err != nil {
		return nil, err
	}

	rows, err := q.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.PlayerColor, &e.Value); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (q *Queries) GetSessionRecap(ctx context.Context, sessionID string) (*SessionRecap, error) {
	recap := &SessionRecap{SessionID: sessionID}

	var playerID string
	err := q.DB.QueryRowContext(ctx, `
		SELECT room_code, player_id, started_at, ended_at FROM sessions WHERE id = $1
	`, sessionID).Scan(&recap.RoomCode, &playerID, &recap.StartedAt, &recap.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	scenarios, err := q.GetScenarioStats(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	recap.Stats = NewSessionStats(sessionID, playerID, scenarios)

	rows, err := q.DB.QueryContext(ctx, `
		SELECT badge_id FROM player_badges WHERE session_id = $1 ORDER BY awarded_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting session badges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		recap.Badges = append(recap.Badges, id)
	}

	return recap, rows.Err()
}
