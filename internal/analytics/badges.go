package analytics

type BadgeID string

const (
	BadgeSharpshooter  BadgeID = "sharpshooter"
	BadgeSpeedDemon    BadgeID = "speed_demon"
	BadgeUnstoppable   BadgeID = "unstoppable"
	BadgeCenturion     BadgeID = "centurion"
	BadgeTriggerHappy  BadgeID = "trigger_happy"
	BadgeVeteran       BadgeID = "veteran"
	BadgePerfectionist BadgeID = "perfectionist"
)

// Thresholds.
const (
	SharpshooterAccuracy = 90.0
	SharpshooterShots    = 20
	SpeedDemonMs         = 300.0
	CenturionHits        = 100
	TriggerHappyShots    = 500
	PerfectionistShots   = 10
	VeteranSessions      = 10
	StreakAccuracy       = 80.0
	StreakLength         = 3
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeSharpshooter:  {ID: BadgeSharpshooter, Name: "Sharpshooter", Description: "90%+ accuracy over 20+ shots in a session", Icon: "🎯"},
	BadgeSpeedDemon:    {ID: BadgeSpeedDemon, Name: "Speed Demon", Description: "Average reaction time under 300ms", Icon: "⚡"},
	BadgeUnstoppable:   {ID: BadgeUnstoppable, Name: "Unstoppable", Description: "3 sessions in a row at 80%+ accuracy", Icon: "🔥"},
	BadgeCenturion:     {ID: BadgeCenturion, Name: "Centurion", Description: "100+ hits in a single session", Icon: "💯"},
	BadgeTriggerHappy:  {ID: BadgeTriggerHappy, Name: "Trigger Happy", Description: "500+ shots in a single session", Icon: "🔫"},
	BadgeVeteran:       {ID: BadgeVeteran, Name: "Veteran", Description: "Trained 10+ sessions", Icon: "🏅"},
	BadgePerfectionist: {ID: BadgePerfectionist, Name: "Perfectionist", Description: "A flawless scenario of 10+ shots", Icon: "✨"},
}

// EvaluateSessionBadges checks which badges a player earned in a single session.
func EvaluateSessionBadges(stats SessionStats) []Badge {
	var earned []Badge

	if stats.Shots >= SharpshooterShots && stats.Accuracy >= SharpshooterAccuracy {
		earned = append(earned, AllBadges[BadgeSharpshooter])
	}

	if stats.Hits > 0 && stats.AvgReactionMs > 0 && stats.AvgReactionMs < SpeedDemonMs {
		earned = append(earned, AllBadges[BadgeSpeedDemon])
	}

	if stats.Hits >= CenturionHits {
		earned = append(earned, AllBadges[BadgeCenturion])
	}

	if stats.Shots >= TriggerHappyShots {
		earned = append(earned, AllBadges[BadgeTriggerHappy])
	}

	for _, sc := range stats.Scenarios {
		if sc.Shots() >= PerfectionistShots && sc.Misses == 0 {
			earned = append(earned, AllBadges[BadgePerfectionist])
			break
		}
	}

	return earned
}

// EvaluateLifetimeBadges checks which badges a player earned across their career.
func EvaluateLifetimeBadges(stats PlayerLifetimeStats) []Badge {
	var earned []Badge

	if stats.Streak >= StreakLength {
		earned = append(earned, AllBadges[BadgeUnstoppable])
	}

	if stats.SessionsPlayed >= VeteranSessions {
		earned = append(earned, AllBadges[BadgeVeteran])
	}

	return earned
}

// Streak counts the leading run of accuracies (most recent first) at or
// above threshold.
func Streak(accuracies []float64, threshold float64) int {
	n := 0
	for _, a := range accuracies {
		if a < threshold {
			break
		}
		n++
	}
	return n
}
