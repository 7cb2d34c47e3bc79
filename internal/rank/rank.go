// Package rank computes the derived urgency score used to order tasks in
// caller UIs. Scores are never persisted and never feed back into replay;
// they are a pure function of (priority, story points, pending sub-item
// age, evaluation time) so every client ranks identically.
package rank

import (
	"math"
	"time"
)

// Steepness is the logistic growth constant. With the midpoint at 30
// days, urgency reaches ~90% one steepness-unit past the midpoint.
var Steepness = math.Log(9) / 30

// midpointDays is where the urgency curve crosses 0.5.
const midpointDays = 30

// Circadian bonus applied when the evaluation hour falls in the morning
// window [6, 11).
const (
	morningBonus     = 1.15
	morningStartHour = 6
	morningEndHour   = 11
)

// Urgency maps the age of a pending sub-item onto [0, 1) via a logistic
// curve centered at 30 days.
func Urgency(created, now time.Time) float64 {
	days := now.Sub(created).Hours() / 24
	return 1 / (1 + math.Exp(-Steepness*(days-midpointDays)))
}

// Score computes the final rank: priority x urgency x sqrt(storyPoints),
// boosted by the morning bonus when now's local hour is in [6, 11).
func Score(priority int, storyPoints float64, created, now time.Time) float64 {
	bonus := 1.0
	if h := now.Hour(); h >= morningStartHour && h < morningEndHour {
		bonus = morningBonus
	}
	return float64(priority) * Urgency(created, now) * math.Sqrt(storyPoints) * bonus
}
