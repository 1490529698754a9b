package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/project-tracker/internal/domain"
)

type projectRepository struct {
	db DBTX
}

const projectColumns = `project_id, owner_id, name, description, status, available_budget, created_at, updated_at`

const projectDetailSelect = `SELECT p.project_id, p.owner_id, p.name, p.description, p.status, p.available_budget,
		p.created_at, p.updated_at,
		COUNT(t.task_id) AS task_count,
		COALESCE(SUM(CASE WHEN t.status = 'DONE' THEN 1 ELSE 0 END), 0) AS done_task_count
	FROM projects p
	LEFT JOIN tasks t ON t.project_id = p.project_id`

func (r *projectRepository) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ProjectID.String(),
		p.OwnerID.String(),
		p.Name,
		p.Description,
		string(p.Status),
		formatDecimal(p.AvailableBudget),
		formatTimestamp(p.CreatedAt),
		formatTimestamp(p.UpdatedAt),
	)
	if err != nil {
		return domain.Project{}, translateWriteError(err, "a project with this name already exists")
	}
	return p, nil
}

func (r *projectRepository) GetByID(ctx context.Context, projectID uuid.UUID) (domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE project_id = ?`, projectID.String())
	return scanProject(row)
}

func (r *projectRepository) GetDetail(ctx context.Context, projectID uuid.UUID) (domain.ProjectDetail, error) {
	row := r.db.QueryRowContext(ctx, projectDetailSelect+`
	WHERE p.project_id = ?
	GROUP BY p.project_id`, projectID.String())
	return scanProjectDetail(row)
}

func (r *projectRepository) ListDetails(ctx context.Context, ownerID uuid.UUID, filter domain.ProjectFilter) ([]domain.ProjectDetail, error) {
	where := []string{"p.owner_id = ?"}
	args := []any{ownerID.String()}
	switch filter.Mode() {
	case domain.FilterByText:
		where = append(where, `casefold(p.name) LIKE ? ESCAPE '\'`)
		args = append(args, domain.ContainsPattern(filter.NameContains))
	case domain.FilterByStatus:
		where = append(where, "p.status = ?")
		args = append(args, string(*filter.Status))
	case domain.FilterNone:
	}

	query := projectDetailSelect + `
	WHERE ` + strings.Join(where, " AND ") + `
	GROUP BY p.project_id
	ORDER BY p.created_at, p.project_id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	out := []domain.ProjectDetail{}
	for rows.Next() {
		d, err := scanProjectDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return out, nil
}

func (r *projectRepository) ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE owner_id = ? AND name = ? AND project_id <> ?)`,
		ownerID.String(), name, excludeID.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking project name: %w", err)
	}
	return exists, nil
}

func (r *projectRepository) Update(ctx context.Context, p domain.Project) (domain.Project, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, status = ?, available_budget = ?, updated_at = ?
		WHERE project_id = ?`,
		p.Name,
		p.Description,
		string(p.Status),
		formatDecimal(p.AvailableBudget),
		formatTimestamp(p.UpdatedAt),
		p.ProjectID.String(),
	)
	if err != nil {
		return domain.Project{}, translateWriteError(err, "a project with this name already exists")
	}
	if err := requireRowAffected(res); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (r *projectRepository) Delete(ctx context.Context, projectID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE project_id = ?`, projectID.String())
	if err != nil {
		return translateWriteError(err, "project still has tasks")
	}
	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProject(row rowScanner) (domain.Project, error) {
	var (
		p   domain.Project
		raw projectText
	)
	if err := row.Scan(projectDest(&p, &raw)...); err != nil {
		return domain.Project{}, mapNotFound(err)
	}
	if err := raw.decode(&p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// projectText holds the TEXT columns that need parsing after Scan.
type projectText struct {
	id, ownerID, status  string
	budget               sql.NullString
	createdAt, updatedAt string
}

func projectDest(p *domain.Project, raw *projectText) []any {
	return []any{&raw.id, &raw.ownerID, &p.Name, &p.Description, &raw.status, &raw.budget, &raw.createdAt, &raw.updatedAt}
}

func (raw *projectText) decode(p *domain.Project) error {
	var err error
	if p.ProjectID, err = uuid.Parse(raw.id); err != nil {
		return fmt.Errorf("parsing project id: %w", err)
	}
	if p.OwnerID, err = uuid.Parse(raw.ownerID); err != nil {
		return fmt.Errorf("parsing owner id: %w", err)
	}
	if p.Status = domain.ProjectStatus(raw.status); !p.Status.Valid() {
		return fmt.Errorf("project %s has unknown status %q", raw.id, raw.status)
	}
	if p.AvailableBudget, err = parseDecimal(raw.budget); err != nil {
		return err
	}
	if p.CreatedAt, err = parseTimestamp(raw.createdAt); err != nil {
		return err
	}
	if p.UpdatedAt, err = parseTimestamp(raw.updatedAt); err != nil {
		return err
	}
	return nil
}

func scanProjectDetail(row rowScanner) (domain.ProjectDetail, error) {
	var (
		d   domain.ProjectDetail
		raw projectText
	)
	dest := append(projectDest(&d.Project, &raw), &d.TaskCount, &d.DoneTaskCount)
	if err := row.Scan(dest...); err != nil {
		return domain.ProjectDetail{}, mapNotFound(err)
	}
	if err := raw.decode(&d.Project); err != nil {
		return domain.ProjectDetail{}, err
	}
	return d, nil
}
