package domain

import (
	"fmt"
	"strings"
)

// ProjectStatus is the closed set of project lifecycle states.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "ACTIVE"
	ProjectInactive ProjectStatus = "INACTIVE"
)

// ParseProjectStatus accepts a case-insensitive status name and rejects anything outside the set.
func ParseProjectStatus(raw string) (ProjectStatus, error) {
	switch s := ProjectStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case ProjectActive, ProjectInactive:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown project status %q", ErrInvalidInput, raw)
	}
}

// Valid reports whether s is a declared project status. Stores check it when decoding rows.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectInactive:
		return true
	default:
		return false
	}
}

// TaskStatus is the closed set of task completion states.
type TaskStatus string

const (
	TaskDone    TaskStatus = "DONE"
	TaskNotDone TaskStatus = "NOT_DONE"
)

// ParseTaskStatus accepts a case-insensitive status name and rejects anything outside the set.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	switch s := TaskStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case TaskDone, TaskNotDone:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown task status %q", ErrInvalidInput, raw)
	}
}

// Valid reports whether s is a declared task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskDone, TaskNotDone:
		return true
	default:
		return false
	}
}
