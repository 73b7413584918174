// Package health computes a relationship-health score from a person's
// cadence goal and last-meeting date. It keeps no state and writes
// nothing; a report is re-derivable from (goal, lastMeetingDate, today).
package health

import (
	"math"
	"time"

	"github.com/oikio/oikio-mcp/internal/store"
)

// Status is a health tier. Tiers only ever degrade in order
// good -> warning -> critical as time passes.
type Status string

const (
	StatusGood     Status = "good"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// graceRatio is the share of the expected interval granted as a warning
// window past the goal before the relationship turns critical.
const graceRatio = 0.2

// Report is the result of evaluating one person.
type Report struct {
	Score                int    `json:"score"`
	Status               Status `json:"status"`
	DaysSinceLastMeeting *int   `json:"daysSinceLastMeeting"`
	IsOverdue            bool   `json:"isOverdue"`
	DaysOverdue          int    `json:"daysOverdue"`
}

// Evaluate scores a person as of today. The score runs 100 (just met)
// down to 0, dropping through 70 at the cadence goal and 50 at the end of
// the grace window.
func Evaluate(p store.Person, today time.Time) Report {
	if p.LastMeetingDate == nil {
		if p.MeetingFrequencyGoal == "" {
			// No goal to violate and no history to score.
			return Report{Score: 50, Status: StatusWarning}
		}
		return Report{Score: 0, Status: StatusCritical}
	}

	elapsed := daysBetween(*p.LastMeetingDate, today)
	if elapsed < 0 {
		elapsed = 0
	}
	expected := p.MeetingFrequencyGoal.Days()
	grace := float64(expected) * graceRatio

	rep := Report{
		DaysSinceLastMeeting: &elapsed,
		IsOverdue:            elapsed > expected,
		DaysOverdue:          max(0, elapsed-expected),
	}

	switch over := float64(elapsed - expected); {
	case elapsed <= expected:
		rep.Status = StatusGood
		rep.Score = round(100 - 30*float64(elapsed)/float64(expected))
	case over <= grace:
		rep.Status = StatusWarning
		rep.Score = round(70 - 20*over/grace)
	default:
		rep.Status = StatusCritical
		rep.Score = max(0, round(50*(1-(over-grace)/(float64(expected)-grace))))
	}
	return rep
}

func daysBetween(from, to time.Time) int {
	return int(startOfDay(to).Sub(startOfDay(from)) / (24 * time.Hour))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func round(f float64) int {
	return int(math.Round(f))
}
