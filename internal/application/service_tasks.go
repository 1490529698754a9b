package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/viralforge/project-tracker/internal/domain"
	"github.com/viralforge/project-tracker/internal/ports"
)

const (
	eventTaskCreated = "task.created"
	eventTaskUpdated = "task.updated"
	eventTaskDeleted = "task.deleted"
)

// CreateTask checks, in order: project existence and ownership, date order,
// then predecessor existence and same-project membership. Status defaults to NOT_DONE.
func (s *Service) CreateTask(ctx context.Context, ownerID uuid.UUID, req TaskRequest) (resp TaskResponse, err error) {
	defer func() { logResult(ctx, "create_task", err, "owner_id", ownerID) }()

	description, err := requireText(req.Description, "task description")
	if err != nil {
		return TaskResponse{}, err
	}
	if req.ProjectID == nil || *req.ProjectID == uuid.Nil {
		return TaskResponse{}, fmt.Errorf("%w: project id is required", domain.ErrInvalidInput)
	}
	status, err := parseOptionalTaskStatus(req.Status)
	if err != nil {
		return TaskResponse{}, err
	}

	now := s.nowFn()
	task := domain.Task{
		TaskID:      uuid.New(),
		ProjectID:   *req.ProjectID,
		Description: description,
		StartDate:   dateTime(req.StartDate),
		EndDate:     dateTime(req.EndDate),
		Status:      domain.TaskNotDone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status != nil {
		task.Status = *status
	}

	var detail domain.TaskDetail
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := loadOwnedProject(ctx, repos, task.ProjectID, ownerID); err != nil {
			return err
		}
		if err := domain.ValidateSchedule(task.StartDate, task.EndDate); err != nil {
			return err
		}
		predecessor, err := resolvePredecessor(ctx, repos, uuid.Nil, task.ProjectID, req.PredecessorTaskID)
		if err != nil {
			return err
		}
		task.PredecessorTaskID = predecessor

		if _, err := repos.Tasks.Create(ctx, task); err != nil {
			return err
		}
		detail, err = repos.Tasks.GetDetail(ctx, task.TaskID)
		return err
	})
	if err != nil {
		return TaskResponse{}, err
	}

	resp = toTaskResponse(detail)
	s.publish(ctx, eventTaskCreated, resp.ProjectID.String(), resp)
	return resp, nil
}

// ListTasks lists one project's tasks after the ownership gate.
// A description filter takes precedence over a status filter.
func (s *Service) ListTasks(ctx context.Context, ownerID, projectID uuid.UUID, query TaskQuery) ([]TaskResponse, error) {
	filter, err := taskFilter(query)
	if err != nil {
		return nil, err
	}
	var details []domain.TaskDetail
	err = s.store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := loadOwnedProject(ctx, repos, projectID, ownerID); err != nil {
			return err
		}
		var err error
		details, err = repos.Tasks.ListDetailsByProject(ctx, projectID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTaskResponses(details), nil
}

// ListOwnerTasks lists tasks across every project the owner has.
func (s *Service) ListOwnerTasks(ctx context.Context, ownerID uuid.UUID, query TaskQuery) ([]TaskResponse, error) {
	filter, err := taskFilter(query)
	if err != nil {
		return nil, err
	}
	var details []domain.TaskDetail
	err = s.store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		details, err = repos.Tasks.ListDetailsByOwner(ctx, ownerID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTaskResponses(details), nil
}

func (s *Service) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (TaskResponse, error) {
	var detail domain.TaskDetail
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := loadOwnedTask(ctx, repos, taskID, ownerID); err != nil {
			return err
		}
		var err error
		detail, err = repos.Tasks.GetDetail(ctx, taskID)
		return err
	})
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(detail), nil
}

// UpdateTask overwrites description, dates and predecessor; a nil predecessor detaches it.
// An omitted status keeps the current one. Tasks never move between projects.
func (s *Service) UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, req TaskRequest) (resp TaskResponse, err error) {
	defer func() { logResult(ctx, "update_task", err, "owner_id", ownerID, "task_id", taskID) }()

	description, err := requireText(req.Description, "task description")
	if err != nil {
		return TaskResponse{}, err
	}
	status, err := parseOptionalTaskStatus(req.Status)
	if err != nil {
		return TaskResponse{}, err
	}

	var detail domain.TaskDetail
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		task, err := loadOwnedTask(ctx, repos, taskID, ownerID)
		if err != nil {
			return err
		}
		if req.ProjectID != nil && *req.ProjectID != uuid.Nil && *req.ProjectID != task.ProjectID {
			return fmt.Errorf("%w: a task cannot be moved to another project", domain.ErrInvalidInput)
		}

		task.Description = description
		task.StartDate = dateTime(req.StartDate)
		task.EndDate = dateTime(req.EndDate)
		if err := domain.ValidateSchedule(task.StartDate, task.EndDate); err != nil {
			return err
		}
		if task.PredecessorTaskID, err = resolvePredecessor(ctx, repos, task.TaskID, task.ProjectID, req.PredecessorTaskID); err != nil {
			return err
		}
		if status != nil {
			task.Status = *status
		}
		task.UpdatedAt = s.nowFn()

		if _, err := repos.Tasks.Update(ctx, task); err != nil {
			return err
		}
		detail, err = repos.Tasks.GetDetail(ctx, taskID)
		return err
	})
	if err != nil {
		return TaskResponse{}, err
	}

	resp = toTaskResponse(detail)
	s.publish(ctx, eventTaskUpdated, resp.ProjectID.String(), resp)
	return resp, nil
}

// DeleteTask refuses while another task names this one as its predecessor.
func (s *Service) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) (err error) {
	defer func() { logResult(ctx, "delete_task", err, "owner_id", ownerID, "task_id", taskID) }()

	var projectID uuid.UUID
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		task, err := loadOwnedTask(ctx, repos, taskID, ownerID)
		if err != nil {
			return err
		}
		projectID = task.ProjectID
		referenced, err := repos.Tasks.ExistsByPredecessor(ctx, taskID)
		if err != nil {
			return err
		}
		if referenced {
			return fmt.Errorf("%w: task is the predecessor of another task", domain.ErrConflict)
		}
		return repos.Tasks.Delete(ctx, taskID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, eventTaskDeleted, projectID.String(), map[string]any{"id": taskID, "project_id": projectID})
	return nil
}

func taskFilter(query TaskQuery) (domain.TaskFilter, error) {
	filter := domain.TaskFilter{DescriptionContains: query.DescriptionContains}
	if filter.Mode() == domain.FilterByText {
		return filter, nil
	}
	status, err := parseOptionalTaskStatus(&query.Status)
	if err != nil {
		return domain.TaskFilter{}, err
	}
	filter.Status = status
	return filter, nil
}

func toTaskResponses(details []domain.TaskDetail) []TaskResponse {
	out := make([]TaskResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toTaskResponse(d))
	}
	return out
}
