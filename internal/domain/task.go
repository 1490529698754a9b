package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task belongs to exactly one project. PredecessorTaskID is a same-project
// reference only; it carries no ownership and no cascading effect.
type Task struct {
	TaskID            uuid.UUID
	ProjectID         uuid.UUID
	Description       string
	StartDate         *time.Time
	EndDate           *time.Time
	PredecessorTaskID *uuid.UUID
	Status            TaskStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TaskDetail is the read model returned to callers, joined with the
// owning project's name and the predecessor's description.
type TaskDetail struct {
	Task
	ProjectName            string
	PredecessorDescription string
}

// ValidateSchedule rejects an end date earlier than the start date.
// Equal dates are allowed; either side may be absent.
func ValidateSchedule(start, end *time.Time) error {
	if start == nil || end == nil {
		return nil
	}
	if end.Before(*start) {
		return fmt.Errorf("%w: end date cannot be before start date", ErrInvalidInput)
	}
	return nil
}

// CheckPredecessor validates that candidate may precede a task with the given
// id in the given project. taskID is uuid.Nil for tasks not yet created.
func CheckPredecessor(taskID, projectID uuid.UUID, candidate Task) error {
	if taskID != uuid.Nil && candidate.TaskID == taskID {
		return fmt.Errorf("%w: a task cannot be its own predecessor", ErrInvalidInput)
	}
	if candidate.ProjectID != projectID {
		return fmt.Errorf("%w: predecessor task must belong to the same project", ErrInvalidInput)
	}
	return nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
