package analytics

import "time"

type ScenarioStats struct {
	Index         int     `json:"index"`
	Name          string  `json:"name"`
	Score         int     `json:"score"`
	Hits          int     `json:"hits"`
	Misses        int     `json:"misses"`
	Accuracy      float64 `json:"accuracy"`
	AvgReactionMs float64 `json:"avg_reaction_ms"`
}

func (s ScenarioStats) Shots() int {
	return s.Hits + s.Misses
}

// SessionStats aggregates one training run for one player.
type SessionStats struct {
	SessionID     string          `json:"session_id"`
	PlayerID      string          `json:"player_id"`
	TotalScore    int             `json:"total_score"`
	Shots         int             `json:"shots"`
	Hits          int             `json:"hits"`
	Accuracy      float64         `json:"accuracy"`
	AvgReactionMs float64         `json:"avg_reaction_ms"`
	Scenarios     []ScenarioStats `json:"scenarios"`
}

// NewSessionStats totals the per-scenario rows of a run. Reaction time is
// averaged over scenarios that measured one, weighted by hits.
func NewSessionStats(sessionID, playerID string, scenarios []ScenarioStats) SessionStats {
	s := SessionStats{SessionID: sessionID, PlayerID: playerID, Scenarios: scenarios}
	var reactionSum float64
	var reactionHits int
	for _, sc := range scenarios {
		s.TotalScore += sc.Score
		s.Shots += sc.Shots()
		s.Hits += sc.Hits
		if sc.AvgReactionMs > 0 && sc.Hits > 0 {
			reactionSum += sc.AvgReactionMs * float64(sc.Hits)
			reactionHits += sc.Hits
		}
	}
	if s.Shots > 0 {
		s.Accuracy = float64(s.Hits) / float64(s.Shots) * 100
	}
	if reactionHits > 0 {
		s.AvgReactionMs = reactionSum / float64(reactionHits)
	}
	return s
}

type PlayerLifetimeStats struct {
	PlayerID       string   `json:"player_id"`
	PlayerName     string   `json:"player_name"`
	PlayerColor    string   `json:"player_color"`
	SessionsPlayed int      `json:"sessions_played"`
	TotalScore     int      `json:"total_score"`
	BestSession    int      `json:"best_session"`
	TotalHits      int      `json:"total_hits"`
	TotalShots     int      `json:"total_shots"`
	Accuracy       float64  `json:"accuracy"`
	BestReactionMs float64  `json:"best_reaction_ms"`
	Streak         int      `json:"streak"` // consecutive recent sessions at StreakAccuracy or better
	Badges         []Badge  `json:"badges"`
	Awarded        []string `json:"awarded,omitempty"` // badge ids persisted for the player
}

type LeaderboardEntry struct {
	PlayerID    string  `json:"player_id"`
	PlayerName  string  `json:"player_name"`
	PlayerColor string  `json:"player_color"`
	Value       float64 `json:"value"`
	Rank        int     `json:"rank"`
}

type SessionRecap struct {
	SessionID string       `json:"session_id"`
	RoomCode  string       `json:"room_code"`
	StartedAt *time.Time   `json:"started_at"`
	EndedAt   *time.Time   `json:"ended_at"`
	Stats     SessionStats `json:"stats"`
	Badges    []string     `json:"badges"`
}
