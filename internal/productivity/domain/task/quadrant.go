package task

import (
	"errors"
	"time"
)

// ErrInvalidQuadrant is returned when parsing anything other than Q1..Q4.
var ErrInvalidQuadrant = errors.New("invalid quadrant")

// UrgencyWindowDays is the inclusive number of whole days before a deadline
// during which a task counts as urgent.
const UrgencyWindowDays = 3

// Quadrant is an Eisenhower-matrix bucket.
type Quadrant string

const (
	Q1 Quadrant = "Q1" // important and urgent
	Q2 Quadrant = "Q2" // important, not urgent
	Q3 Quadrant = "Q3" // urgent, not important
	Q4 Quadrant = "Q4" // neither
)

// AllQuadrants lists the quadrants in matrix order.
func AllQuadrants() []Quadrant {
	return []Quadrant{Q1, Q2, Q3, Q4}
}

// ParseQuadrant accepts exactly "Q1", "Q2", "Q3" or "Q4".
func ParseQuadrant(s string) (Quadrant, error) {
	q := Quadrant(s)
	if !q.IsValid() {
		return "", ErrInvalidQuadrant
	}
	return q, nil
}

func (q Quadrant) IsValid() bool {
	switch q {
	case Q1, Q2, Q3, Q4:
		return true
	}
	return false
}

func (q Quadrant) String() string { return string(q) }

// Label is the action the quadrant calls for.
func (q Quadrant) Label() string {
	switch q {
	case Q1:
		return "Do First"
	case Q2:
		return "Schedule"
	case Q3:
		return "Delegate"
	case Q4:
		return "Eliminate"
	default:
		return "Unknown"
	}
}

// DaysUntil returns the whole days from now to deadline, rounded toward
// negative infinity. A deadline 12 hours ago is -1 days away, one 36 hours
// ahead is 1 day away. Every day count in the system uses this rule.
func DaysUntil(deadline, now time.Time) int {
	const day = 24 * time.Hour
	d := deadline.Sub(now)
	days := int(d / day)
	if d%day < 0 {
		days--
	}
	return days
}

// IsOverdue reports whether the deadline has passed.
func IsOverdue(deadline, now time.Time) bool {
	return DaysUntil(deadline, now) < 0
}

// IsUrgent reports whether a deadline is present and at most
// UrgencyWindowDays away. Overdue deadlines are urgent.
func IsUrgent(deadline *time.Time, now time.Time) bool {
	return deadline != nil && DaysUntil(*deadline, now) <= UrgencyWindowDays
}

// Classify derives the quadrant from importance and urgency at now.
func Classify(important bool, deadline *time.Time, now time.Time) Quadrant {
	urgent := IsUrgent(deadline, now)
	switch {
	case important && urgent:
		return Q1
	case important:
		return Q2
	case urgent:
		return Q3
	default:
		return Q4
	}
}
