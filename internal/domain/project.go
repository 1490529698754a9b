package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Project is owned by exactly one user; its name is unique within that owner.
type Project struct {
	ProjectID       uuid.UUID
	OwnerID         uuid.UUID
	Name            string
	Description     string
	Status          ProjectStatus
	AvailableBudget *decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OwnedBy reports whether userID is the project's owner.
func (p Project) OwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}

// ProjectDetail is the read model returned to callers.
// Task counts are computed by the store at read time, never persisted.
type ProjectDetail struct {
	Project
	TaskCount     int
	DoneTaskCount int
}
