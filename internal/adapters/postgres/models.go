package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type userModel struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Name         string    `gorm:"column:name"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type projectModel struct {
	ProjectID       uuid.UUID           `gorm:"column:project_id;type:uuid;primaryKey"`
	OwnerID         uuid.UUID           `gorm:"column:owner_id;type:uuid"`
	Name            string              `gorm:"column:name"`
	Description     string              `gorm:"column:description"`
	Status          string              `gorm:"column:status"`
	AvailableBudget decimal.NullDecimal `gorm:"column:available_budget;type:numeric(15,2)"`
	CreatedAt       time.Time           `gorm:"column:created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at"`
}

func (projectModel) TableName() string { return "projects" }

// projectDetailRow is the scan target for the projects/tasks aggregate join.
type projectDetailRow struct {
	Project       projectModel `gorm:"embedded"`
	TaskCount     int          `gorm:"column:task_count"`
	DoneTaskCount int          `gorm:"column:done_task_count"`
}

type taskModel struct {
	TaskID            uuid.UUID  `gorm:"column:task_id;type:uuid;primaryKey"`
	ProjectID         uuid.UUID  `gorm:"column:project_id;type:uuid"`
	Description       string     `gorm:"column:description"`
	StartDate         *time.Time `gorm:"column:start_date;type:date"`
	EndDate           *time.Time `gorm:"column:end_date;type:date"`
	PredecessorTaskID *uuid.UUID `gorm:"column:predecessor_task_id;type:uuid"`
	Status            string     `gorm:"column:status"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (taskModel) TableName() string { return "tasks" }

// taskDetailRow is the scan target for the task/project/predecessor join.
type taskDetailRow struct {
	Task                   taskModel `gorm:"embedded"`
	ProjectName            string    `gorm:"column:project_name"`
	PredecessorDescription *string   `gorm:"column:predecessor_description"`
}
