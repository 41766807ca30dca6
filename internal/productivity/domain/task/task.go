package task

import (
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/google/uuid"
)

var ErrEmptyTitle = errors.New("task title cannot be empty")

// Task is a unit of work placed in the Eisenhower matrix. The quadrant is
// derived: it is computed on create, recomputed when importance or the
// deadline of an open task changes, and frozen once the task is completed.
type Task struct {
	domain.BaseAggregateRoot
	ownerID     uuid.UUID
	title       string
	description string
	important   bool
	deadline    *time.Time
	quadrant    Quadrant
	completed   bool
	completedAt *time.Time
}

// NewTask creates an open task owned by ownerID and classifies it at now.
func NewTask(ownerID uuid.UUID, title, description string, important bool, deadline *time.Time, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(now),
		ownerID:           ownerID,
		title:             title,
		description:       strings.TrimSpace(description),
		important:         important,
		deadline:          utcPtr(deadline),
	}
	t.quadrant = Classify(t.important, t.deadline, now)

	t.AddDomainEvent(NewTaskCreated(t, now))
	return t, nil
}

// State is the stored form of a task.
type State struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	Important   bool
	Deadline    *time.Time
	Quadrant    Quadrant
	Completed   bool
	CompletedAt *time.Time
}

// Rehydrate rebuilds a task from storage without reclassifying it.
func Rehydrate(entity domain.BaseEntity, s State) *Task {
	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(entity),
		ownerID:           s.OwnerID,
		title:             s.Title,
		description:       s.Description,
		important:         s.Important,
		deadline:          utcPtr(s.Deadline),
		quadrant:          s.Quadrant,
		completed:         s.Completed,
		completedAt:       utcPtr(s.CompletedAt),
	}
}

func (t *Task) OwnerID() uuid.UUID      { return t.ownerID }
func (t *Task) Title() string           { return t.title }
func (t *Task) Description() string     { return t.description }
func (t *Task) IsImportant() bool       { return t.important }
func (t *Task) Deadline() *time.Time    { return t.deadline }
func (t *Task) Quadrant() Quadrant      { return t.quadrant }
func (t *Task) IsCompleted() bool       { return t.completed }
func (t *Task) CompletedAt() *time.Time { return t.completedAt }

// DaysUntilDeadline returns nil when the task has no deadline.
func (t *Task) DaysUntilDeadline(now time.Time) *int {
	if t.deadline == nil {
		return nil
	}
	d := DaysUntil(*t.deadline, now)
	return &d
}

// IsOverdue reports whether the task has a deadline that has passed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.deadline != nil && IsOverdue(*t.deadline, now)
}

// Reclassify returns the quadrant the task would have at now and whether
// it differs from the stored one. Completed tasks never change.
func (t *Task) Reclassify(now time.Time) (Quadrant, bool) {
	if t.completed {
		return t.quadrant, false
	}
	q := Classify(t.important, t.deadline, now)
	return q, q != t.quadrant
}

// Changes is a partial update. Nil fields are left alone.
type Changes struct {
	Title       *string
	Description *string
	Important   *bool
	Deadline    *time.Time
	// ClearDeadline removes the deadline. It wins over Deadline.
	ClearDeadline bool
	Completed     *bool
}

// Update applies ch and records one TaskUpdated event naming the fields
// that changed. Field edits are stored on completed tasks too, but only an
// open task is reclassified. Reopening clears completedAt and reclassifies.
func (t *Task) Update(ch Changes, now time.Time) ([]string, error) {
	var fields []string
	reclassify := false

	if ch.Title != nil {
		title := strings.TrimSpace(*ch.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		if title != t.title {
			t.title = title
			fields = append(fields, "title")
		}
	}
	if ch.Description != nil {
		desc := strings.TrimSpace(*ch.Description)
		if desc != t.description {
			t.description = desc
			fields = append(fields, "description")
		}
	}
	if ch.Important != nil && *ch.Important != t.important {
		t.important = *ch.Important
		fields = append(fields, "is_important")
		reclassify = true
	}
	if ch.ClearDeadline {
		if t.deadline != nil {
			t.deadline = nil
			fields = append(fields, "deadline_at")
			reclassify = true
		}
	} else if ch.Deadline != nil && (t.deadline == nil || !t.deadline.Equal(*ch.Deadline)) {
		t.deadline = utcPtr(ch.Deadline)
		fields = append(fields, "deadline_at")
		reclassify = true
	}

	if ch.Completed != nil && *ch.Completed != t.completed {
		if *ch.Completed {
			// Reclassify before freezing so the edit lands in the frozen value.
			if q := Classify(t.important, t.deadline, now); reclassify && q != t.quadrant {
				t.quadrant = q
				fields = append(fields, "quadrant")
			}
			t.markCompleted(now)
			reclassify = false
		} else {
			t.completed = false
			t.completedAt = nil
			reclassify = true
		}
		fields = append(fields, "completed")
	}

	if reclassify && !t.completed {
		if q := Classify(t.important, t.deadline, now); q != t.quadrant {
			t.quadrant = q
			fields = append(fields, "quadrant")
		}
	}

	if len(fields) == 0 {
		return nil, nil
	}
	t.Touch(now)
	t.AddDomainEvent(NewTaskUpdated(t, fields, now))
	return fields, nil
}

// Complete marks the task done and freezes its quadrant. Completing a
// completed task is a no-op.
func (t *Task) Complete(now time.Time) bool {
	if t.completed {
		return false
	}
	t.markCompleted(now)
	t.Touch(now)
	t.AddDomainEvent(NewTaskCompleted(t, now))
	return true
}

// MarkDeleted records the deletion event. The row itself is removed by
// the repository.
func (t *Task) MarkDeleted(now time.Time) {
	t.AddDomainEvent(NewTaskDeleted(t, now))
}

func (t *Task) markCompleted(now time.Time) {
	at := now.UTC()
	t.completed = true
	t.completedAt = &at
}

func utcPtr(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	u := v.UTC()
	return &u
}
