package queries

import (
	"time"

	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	"github.com/google/uuid"
)

// Status messages reported for a single task.
const (
	StatusOverdue = "overdue"
	StatusOnTrack = "on track"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	IsImportant       bool       `json:"is_important"`
	DeadlineAt        *time.Time `json:"deadline_at"`
	Quadrant          string     `json:"quadrant"`
	QuadrantLabel     string     `json:"quadrant_label"`
	Completed         bool       `json:"completed"`
	CompletedAt       *time.Time `json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	OwnerID           uuid.UUID  `json:"owner_id"`
	DaysUntilDeadline *int       `json:"days_until_deadline"`
}

// TaskDetailDTO is a TaskDTO with a human status line.
type TaskDetailDTO struct {
	TaskDTO
	StatusMessage string `json:"status_message"`
}

// NewTaskDTO maps a task, computing days_until_deadline at now.
func NewTaskDTO(t *task.Task, now time.Time) TaskDTO {
	return TaskDTO{
		ID:                t.ID(),
		Title:             t.Title(),
		Description:       t.Description(),
		IsImportant:       t.IsImportant(),
		DeadlineAt:        t.Deadline(),
		Quadrant:          t.Quadrant().String(),
		QuadrantLabel:     t.Quadrant().Label(),
		Completed:         t.IsCompleted(),
		CompletedAt:       t.CompletedAt(),
		CreatedAt:         t.CreatedAt(),
		UpdatedAt:         t.UpdatedAt(),
		OwnerID:           t.OwnerID(),
		DaysUntilDeadline: t.DaysUntilDeadline(now),
	}
}

// NewTaskDetailDTO maps a task with its status line at now.
func NewTaskDetailDTO(t *task.Task, now time.Time) TaskDetailDTO {
	detail := TaskDetailDTO{TaskDTO: NewTaskDTO(t, now), StatusMessage: StatusOnTrack}
	if t.IsOverdue(now) {
		detail.StatusMessage = StatusOverdue
	}
	return detail
}

func toDTOs(tasks []*task.Task, now time.Time) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = NewTaskDTO(t, now)
	}
	return dtos
}
