package rank

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(day int, hour int) time.Time {
	return time.Date(2026, 8, day, hour, 0, 0, 0, time.UTC)
}

func TestUrgencyMidpoint(t *testing.T) {
	created := at(1, 12)
	now := created.AddDate(0, 0, 30)

	assert.InDelta(t, 0.5, Urgency(created, now), 1e-9,
		"urgency crosses one half exactly at the midpoint age")
}

func TestUrgencyBounds(t *testing.T) {
	created := at(1, 12)

	fresh := Urgency(created, created)
	old := Urgency(created, created.AddDate(1, 0, 0))

	assert.Greater(t, fresh, 0.0)
	assert.Less(t, fresh, 0.5, "a brand new item is below the midpoint")
	assert.Greater(t, old, 0.99, "a year-old item saturates toward 1")
	assert.Less(t, old, 1.0)
}

func TestUrgencyIsMonotonic(t *testing.T) {
	created := at(1, 12)
	prev := -1.0
	for days := 0; days <= 90; days += 5 {
		u := Urgency(created, created.AddDate(0, 0, days))
		assert.Greater(t, u, prev, "urgency at %d days", days)
		prev = u
	}
}

func TestUrgencySteepness(t *testing.T) {
	created := at(1, 12)

	// One steepness period past the midpoint sits at 90%: the logistic
	// constant is ln(9)/30 so that +30 days moves 0.5 to 0.9.
	u := Urgency(created, created.AddDate(0, 0, 60))
	assert.InDelta(t, 0.9, u, 1e-9)
}

func TestScoreComposition(t *testing.T) {
	created := at(1, 12)
	now := created.AddDate(0, 0, 30) // midpoint, afternoon: no bonus

	got := Score(4, 9, created, now)
	assert.InDelta(t, 4*0.5*3, got, 1e-9, "priority x urgency x sqrt(points)")
}

func TestScoreMorningBonus(t *testing.T) {
	created := at(1, 12)

	tests := []struct {
		name  string
		now   time.Time
		bonus float64
	}{
		{"afternoon", at(31, 14), 1.0},
		{"morning window", at(31, 9), 1.15},
		{"window start", at(31, 6), 1.15},
		{"window end is exclusive", at(31, 11), 1.0},
		{"before window", at(31, 5), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := 3 * Urgency(created, tt.now) * tt.bonus
			assert.InDelta(t, want, Score(3, 1, created, tt.now), 1e-9)
		})
	}
}

func TestScoreZeroPoints(t *testing.T) {
	created := at(1, 12)
	assert.Zero(t, Score(5, 0, created, created.AddDate(0, 0, 30)))
	assert.False(t, math.IsNaN(Score(5, 0, created, created)))
}
