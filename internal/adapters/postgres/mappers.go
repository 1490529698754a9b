package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/viralforge/project-tracker/internal/domain"
	"gorm.io/gorm"
)

func toDomainUser(row userModel) domain.User {
	return domain.User{
		UserID:       row.UserID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func toUserModel(user domain.User) userModel {
	return userModel{
		UserID:       user.UserID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toDomainProject(row projectModel) (domain.Project, error) {
	status := domain.ProjectStatus(row.Status)
	if !status.Valid() {
		return domain.Project{}, fmt.Errorf("project %s has unknown status %q", row.ProjectID, row.Status)
	}
	var budget *decimal.Decimal
	if row.AvailableBudget.Valid {
		b := row.AvailableBudget.Decimal
		budget = &b
	}
	return domain.Project{
		ProjectID:       row.ProjectID,
		OwnerID:         row.OwnerID,
		Name:            row.Name,
		Description:     row.Description,
		Status:          status,
		AvailableBudget: budget,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}, nil
}

func toProjectModel(project domain.Project) projectModel {
	var budget decimal.NullDecimal
	if project.AvailableBudget != nil {
		budget = decimal.NewNullDecimal(*project.AvailableBudget)
	}
	return projectModel{
		ProjectID:       project.ProjectID,
		OwnerID:         project.OwnerID,
		Name:            project.Name,
		Description:     project.Description,
		Status:          string(project.Status),
		AvailableBudget: budget,
		CreatedAt:       project.CreatedAt,
		UpdatedAt:       project.UpdatedAt,
	}
}

func toDomainProjectDetail(row projectDetailRow) (domain.ProjectDetail, error) {
	project, err := toDomainProject(row.Project)
	if err != nil {
		return domain.ProjectDetail{}, err
	}
	return domain.ProjectDetail{
		Project:       project,
		TaskCount:     row.TaskCount,
		DoneTaskCount: row.DoneTaskCount,
	}, nil
}

func toDomainTask(row taskModel) (domain.Task, error) {
	status := domain.TaskStatus(row.Status)
	if !status.Valid() {
		return domain.Task{}, fmt.Errorf("task %s has unknown status %q", row.TaskID, row.Status)
	}
	return domain.Task{
		TaskID:            row.TaskID,
		ProjectID:         row.ProjectID,
		Description:       row.Description,
		StartDate:         datePtr(row.StartDate),
		EndDate:           datePtr(row.EndDate),
		PredecessorTaskID: row.PredecessorTaskID,
		Status:            status,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}, nil
}

func toTaskModel(task domain.Task) taskModel {
	return taskModel{
		TaskID:            task.TaskID,
		ProjectID:         task.ProjectID,
		Description:       task.Description,
		StartDate:         task.StartDate,
		EndDate:           task.EndDate,
		PredecessorTaskID: task.PredecessorTaskID,
		Status:            string(task.Status),
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}
}

func toDomainTaskDetail(row taskDetailRow) (domain.TaskDetail, error) {
	task, err := toDomainTask(row.Task)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	detail := domain.TaskDetail{Task: task, ProjectName: row.ProjectName}
	if row.PredecessorDescription != nil {
		detail.PredecessorDescription = *row.PredecessorDescription
	}
	return detail, nil
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.DateOnly(*t)
	return &d
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// translateWriteError maps constraint violations reported by the driver to domain.ErrConflict.
// GORM's TranslateError turns pg codes 23505 and 23503 into these sentinels.
func translateWriteError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	}
	return err
}
