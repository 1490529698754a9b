package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the account that owns projects.
// It carries only what authentication and ownership checks need.
type User struct {
	UserID       uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
