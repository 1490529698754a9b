package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/viralforge/project-tracker/internal/domain"
	"gorm.io/gorm"
)

type taskRepository struct {
	db *gorm.DB
}

func (r *taskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	rec := toTaskModel(task)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Task{}, translateWriteError(err, "task references a missing project or predecessor")
	}
	return toDomainTask(rec)
}

func (r *taskRepository) GetByID(ctx context.Context, taskID uuid.UUID) (domain.Task, error) {
	var rec taskModel
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Take(&rec).Error; err != nil {
		return domain.Task{}, mapNotFound(err)
	}
	return toDomainTask(rec)
}

// detailQuery joins the owning project and the optional predecessor.
func (r *taskRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("tasks AS t").
		Select("t.*, p.name AS project_name, pred.description AS predecessor_description").
		Joins("JOIN projects p ON p.project_id = t.project_id").
		Joins("LEFT JOIN tasks pred ON pred.task_id = t.predecessor_task_id")
}

func (r *taskRepository) GetDetail(ctx context.Context, taskID uuid.UUID) (domain.TaskDetail, error) {
	var rows []taskDetailRow
	if err := r.detailQuery(ctx).Where("t.task_id = ?", taskID).Scan(&rows).Error; err != nil {
		return domain.TaskDetail{}, fmt.Errorf("load task detail: %w", err)
	}
	if len(rows) == 0 {
		return domain.TaskDetail{}, domain.ErrNotFound
	}
	return toDomainTaskDetail(rows[0])
}

func (r *taskRepository) ListDetailsByProject(ctx context.Context, projectID uuid.UUID, filter domain.TaskFilter) ([]domain.TaskDetail, error) {
	return r.listDetails(ctx, r.detailQuery(ctx).Where("t.project_id = ?", projectID), filter)
}

func (r *taskRepository) ListDetailsByOwner(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]domain.TaskDetail, error) {
	return r.listDetails(ctx, r.detailQuery(ctx).Where("p.owner_id = ?", ownerID), filter)
}

func (r *taskRepository) listDetails(_ context.Context, q *gorm.DB, filter domain.TaskFilter) ([]domain.TaskDetail, error) {
	switch filter.Mode() {
	case domain.FilterByText:
		q = q.Where(`LOWER(t.description) LIKE ? ESCAPE '\'`, domain.ContainsPattern(filter.DescriptionContains))
	case domain.FilterByStatus:
		q = q.Where("t.status = ?", string(*filter.Status))
	case domain.FilterNone:
	}

	var rows []taskDetailRow
	if err := q.Order("t.created_at ASC, t.task_id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := make([]domain.TaskDetail, 0, len(rows))
	for _, row := range rows {
		detail, err := toDomainTaskDetail(row)
		if err != nil {
			return nil, err
		}
		out = append(out, detail)
	}
	return out, nil
}

func (r *taskRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&taskModel{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count tasks by project: %w", err)
	}
	return int(count), nil
}

func (r *taskRepository) ExistsByPredecessor(ctx context.Context, taskID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&taskModel{}).Where("predecessor_task_id = ?", taskID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count tasks by predecessor: %w", err)
	}
	return count > 0, nil
}

func (r *taskRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	rec := toTaskModel(task)
	res := r.db.WithContext(ctx).
		Model(&taskModel{}).
		Where("task_id = ?", task.TaskID).
		Updates(map[string]any{
			"description":         rec.Description,
			"start_date":          rec.StartDate,
			"end_date":            rec.EndDate,
			"predecessor_task_id": rec.PredecessorTaskID,
			"status":              rec.Status,
			"updated_at":          rec.UpdatedAt,
		})
	if res.Error != nil {
		return domain.Task{}, translateWriteError(res.Error, "task references a missing predecessor")
	}
	if res.RowsAffected == 0 {
		return domain.Task{}, domain.ErrNotFound
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, taskID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&taskModel{})
	if res.Error != nil {
		return translateWriteError(res.Error, "task is referenced as a predecessor")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
