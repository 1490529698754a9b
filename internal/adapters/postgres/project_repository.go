package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/viralforge/project-tracker/internal/domain"
	"gorm.io/gorm"
)

type projectRepository struct {
	db *gorm.DB
}

func (r *projectRepository) Create(ctx context.Context, project domain.Project) (domain.Project, error) {
	rec := toProjectModel(project)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Project{}, translateWriteError(err, "a project with this name already exists")
	}
	return toDomainProject(rec)
}

func (r *projectRepository) GetByID(ctx context.Context, projectID uuid.UUID) (domain.Project, error) {
	var rec projectModel
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Take(&rec).Error; err != nil {
		return domain.Project{}, mapNotFound(err)
	}
	return toDomainProject(rec)
}

// detailQuery aggregates task counts per project in one pass over the join.
func (r *projectRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("projects AS p").
		Select("p.*, COUNT(t.task_id) AS task_count, COUNT(t.task_id) FILTER (WHERE t.status = ?) AS done_task_count", string(domain.TaskDone)).
		Joins("LEFT JOIN tasks t ON t.project_id = p.project_id").
		Group("p.project_id")
}

func (r *projectRepository) GetDetail(ctx context.Context, projectID uuid.UUID) (domain.ProjectDetail, error) {
	var rows []projectDetailRow
	if err := r.detailQuery(ctx).Where("p.project_id = ?", projectID).Scan(&rows).Error; err != nil {
		return domain.ProjectDetail{}, fmt.Errorf("load project detail: %w", err)
	}
	if len(rows) == 0 {
		return domain.ProjectDetail{}, domain.ErrNotFound
	}
	return toDomainProjectDetail(rows[0])
}

func (r *projectRepository) ListDetails(ctx context.Context, ownerID uuid.UUID, filter domain.ProjectFilter) ([]domain.ProjectDetail, error) {
	q := r.detailQuery(ctx).Where("p.owner_id = ?", ownerID)
	switch filter.Mode() {
	case domain.FilterByText:
		q = q.Where(`LOWER(p.name) LIKE ? ESCAPE '\'`, domain.ContainsPattern(filter.NameContains))
	case domain.FilterByStatus:
		q = q.Where("p.status = ?", string(*filter.Status))
	case domain.FilterNone:
	}

	var rows []projectDetailRow
	if err := q.Order("p.created_at ASC, p.project_id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]domain.ProjectDetail, 0, len(rows))
	for _, row := range rows {
		detail, err := toDomainProjectDetail(row)
		if err != nil {
			return nil, err
		}
		out = append(out, detail)
	}
	return out, nil
}

func (r *projectRepository) ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&projectModel{}).Where("owner_id = ? AND name = ?", ownerID, name)
	if excludeID != uuid.Nil {
		q = q.Where("project_id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("count projects by name: %w", err)
	}
	return count > 0, nil
}

func (r *projectRepository) Update(ctx context.Context, project domain.Project) (domain.Project, error) {
	rec := toProjectModel(project)
	res := r.db.WithContext(ctx).
		Model(&projectModel{}).
		Where("project_id = ?", project.ProjectID).
		Updates(map[string]any{
			"name":             rec.Name,
			"description":      rec.Description,
			"status":           rec.Status,
			"available_budget": rec.AvailableBudget,
			"updated_at":       rec.UpdatedAt,
		})
	if res.Error != nil {
		return domain.Project{}, translateWriteError(res.Error, "a project with this name already exists")
	}
	if res.RowsAffected == 0 {
		return domain.Project{}, domain.ErrNotFound
	}
	return project, nil
}

func (r *projectRepository) Delete(ctx context.Context, projectID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&projectModel{})
	if res.Error != nil {
		return translateWriteError(res.Error, "project still has tasks")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
