package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/viralforge/project-tracker/internal/domain"
)

type taskRepository struct {
	db DBTX
}

const taskColumns = `task_id, project_id, description, start_date, end_date, predecessor_task_id, status, created_at, updated_at`

const taskDetailSelect = `SELECT t.task_id, t.project_id, t.description, t.start_date, t.end_date,
		t.predecessor_task_id, t.status, t.created_at, t.updated_at,
		p.name, pred.description
	FROM tasks t
	JOIN projects p ON p.project_id = t.project_id
	LEFT JOIN tasks pred ON pred.task_id = t.predecessor_task_id`

func (r *taskRepository) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TaskID.String(),
		t.ProjectID.String(),
		t.Description,
		formatDate(t.StartDate),
		formatDate(t.EndDate),
		formatUUID(t.PredecessorTaskID),
		string(t.Status),
		formatTimestamp(t.CreatedAt),
		formatTimestamp(t.UpdatedAt),
	)
	if err != nil {
		return domain.Task{}, translateWriteError(err, "task references a missing project or predecessor")
	}
	return t, nil
}

func (r *taskRepository) GetByID(ctx context.Context, taskID uuid.UUID) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE task_id = ?`, taskID.String())
	var (
		t   domain.Task
		raw taskText
	)
	if err := row.Scan(raw.dest(&t)...); err != nil {
		return domain.Task{}, mapNotFound(err)
	}
	if err := raw.decode(&t); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (r *taskRepository) GetDetail(ctx context.Context, taskID uuid.UUID) (domain.TaskDetail, error) {
	row := r.db.QueryRowContext(ctx, taskDetailSelect+` WHERE t.task_id = ?`, taskID.String())
	return scanTaskDetail(row)
}

func (r *taskRepository) ListDetailsByProject(ctx context.Context, projectID uuid.UUID, filter domain.TaskFilter) ([]domain.TaskDetail, error) {
	return r.listDetails(ctx, "t.project_id = ?", projectID.String(), filter)
}

func (r *taskRepository) ListDetailsByOwner(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]domain.TaskDetail, error) {
	return r.listDetails(ctx, "p.owner_id = ?", ownerID.String(), filter)
}

func (r *taskRepository) listDetails(ctx context.Context, scope string, scopeArg string, filter domain.TaskFilter) ([]domain.TaskDetail, error) {
	query := taskDetailSelect + ` WHERE ` + scope
	args := []any{scopeArg}
	switch filter.Mode() {
	case domain.FilterByText:
		query += ` AND casefold(t.description) LIKE ? ESCAPE '\'`
		args = append(args, domain.ContainsPattern(filter.DescriptionContains))
	case domain.FilterByStatus:
		query += ` AND t.status = ?`
		args = append(args, string(*filter.Status))
	case domain.FilterNone:
	}
	query += ` ORDER BY t.created_at, t.task_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	out := []domain.TaskDetail{}
	for rows.Next() {
		d, err := scanTaskDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return out, nil
}

func (r *taskRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id = ?`, projectID.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return n, nil
}

func (r *taskRepository) ExistsByPredecessor(ctx context.Context, taskID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE predecessor_task_id = ?)`, taskID.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking predecessor references: %w", err)
	}
	return exists, nil
}

func (r *taskRepository) Update(ctx context.Context, t domain.Task) (domain.Task, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET description = ?, start_date = ?, end_date = ?, predecessor_task_id = ?, status = ?, updated_at = ?
		WHERE task_id = ?`,
		t.Description,
		formatDate(t.StartDate),
		formatDate(t.EndDate),
		formatUUID(t.PredecessorTaskID),
		string(t.Status),
		formatTimestamp(t.UpdatedAt),
		t.TaskID.String(),
	)
	if err != nil {
		return domain.Task{}, translateWriteError(err, "task references a missing predecessor")
	}
	if err := requireRowAffected(res); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (r *taskRepository) Delete(ctx context.Context, taskID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE task_id = ?`, taskID.String())
	if err != nil {
		return translateWriteError(err, "task is referenced as a predecessor")
	}
	return requireRowAffected(res)
}

type taskText struct {
	id, projectID, status string
	start, end            sql.NullString
	predecessor           sql.NullString
	createdAt, updatedAt  string
}

func (raw *taskText) dest(t *domain.Task) []any {
	return []any{&raw.id, &raw.projectID, &t.Description, &raw.start, &raw.end, &raw.predecessor, &raw.status, &raw.createdAt, &raw.updatedAt}
}

func (raw *taskText) decode(t *domain.Task) error {
	var err error
	if t.TaskID, err = uuid.Parse(raw.id); err != nil {
		return fmt.Errorf("parsing task id: %w", err)
	}
	if t.ProjectID, err = uuid.Parse(raw.projectID); err != nil {
		return fmt.Errorf("parsing project id: %w", err)
	}
	if t.StartDate, err = parseDate(raw.start); err != nil {
		return err
	}
	if t.EndDate, err = parseDate(raw.end); err != nil {
		return err
	}
	if t.PredecessorTaskID, err = parseUUID(raw.predecessor); err != nil {
		return err
	}
	if t.Status = domain.TaskStatus(raw.status); !t.Status.Valid() {
		return fmt.Errorf("task %s has unknown status %q", raw.id, raw.status)
	}
	if t.CreatedAt, err = parseTimestamp(raw.createdAt); err != nil {
		return err
	}
	if t.UpdatedAt, err = parseTimestamp(raw.updatedAt); err != nil {
		return err
	}
	return nil
}

func scanTaskDetail(row rowScanner) (domain.TaskDetail, error) {
	var (
		d               domain.TaskDetail
		raw             taskText
		predDescription sql.NullString
	)
	dest := append(raw.dest(&d.Task), &d.ProjectName, &predDescription)
	if err := row.Scan(dest...); err != nil {
		return domain.TaskDetail{}, mapNotFound(err)
	}
	if err := raw.decode(&d.Task); err != nil {
		return domain.TaskDetail{}, err
	}
	d.PredecessorDescription = predDescription.String
	return d, nil
}
