package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/viralforge/project-tracker/internal/domain"
	"github.com/viralforge/project-tracker/internal/ports"
)

const (
	eventProjectCreated = "project.created"
	eventProjectUpdated = "project.updated"
	eventProjectDeleted = "project.deleted"
)

// CreateProject fails NotFound for an unknown owner and Conflict when the owner
// already has a project with that name. Status defaults to ACTIVE.
func (s *Service) CreateProject(ctx context.Context, ownerID uuid.UUID, req ProjectRequest) (resp ProjectResponse, err error) {
	defer func() { logResult(ctx, "create_project", err, "owner_id", ownerID) }()

	name, err := requireText(req.Name, "project name")
	if err != nil {
		return ProjectResponse{}, err
	}
	status, err := parseOptionalProjectStatus(req.Status)
	if err != nil {
		return ProjectResponse{}, err
	}
	budget, err := normalizeBudget(req.AvailableBudget)
	if err != nil {
		return ProjectResponse{}, err
	}

	now := s.nowFn()
	project := domain.Project{
		ProjectID:       uuid.New(),
		OwnerID:         ownerID,
		Name:            name,
		Description:     req.Description,
		Status:          domain.ProjectActive,
		AvailableBudget: budget,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if status != nil {
		project.Status = *status
	}

	var detail domain.ProjectDetail
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Users.GetByID(ctx, ownerID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: owner not found", domain.ErrNotFound)
			}
			return err
		}
		if err := ensureProjectNameFree(ctx, repos, ownerID, name, uuid.Nil); err != nil {
			return err
		}
		if _, err := repos.Projects.Create(ctx, project); err != nil {
			return err
		}
		var err error
		detail, err = repos.Projects.GetDetail(ctx, project.ProjectID)
		return err
	})
	if err != nil {
		return ProjectResponse{}, err
	}

	resp = toProjectResponse(detail)
	s.publish(ctx, eventProjectCreated, resp.ID.String(), resp)
	return resp, nil
}

// ListProjects returns the owner's projects ordered by creation time.
// A name filter takes precedence over a status filter.
func (s *Service) ListProjects(ctx context.Context, ownerID uuid.UUID, query ProjectQuery) ([]ProjectResponse, error) {
	filter := domain.ProjectFilter{NameContains: query.NameContains}
	if filter.Mode() != domain.FilterByText {
		status, err := parseOptionalProjectStatus(&query.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}

	var details []domain.ProjectDetail
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		details, err = repos.Projects.ListDetails(ctx, ownerID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ProjectResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toProjectResponse(d))
	}
	return out, nil
}

func (s *Service) GetProject(ctx context.Context, ownerID, projectID uuid.UUID) (ProjectResponse, error) {
	var detail domain.ProjectDetail
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := loadOwnedProject(ctx, repos, projectID, ownerID); err != nil {
			return err
		}
		var err error
		detail, err = repos.Projects.GetDetail(ctx, projectID)
		return err
	})
	if err != nil {
		return ProjectResponse{}, err
	}
	return toProjectResponse(detail), nil
}

// UpdateProject overwrites name, description and budget. An omitted status keeps the current one.
func (s *Service) UpdateProject(ctx context.Context, ownerID, projectID uuid.UUID, req ProjectRequest) (resp ProjectResponse, err error) {
	defer func() { logResult(ctx, "update_project", err, "owner_id", ownerID, "project_id", projectID) }()

	name, err := requireText(req.Name, "project name")
	if err != nil {
		return ProjectResponse{}, err
	}
	status, err := parseOptionalProjectStatus(req.Status)
	if err != nil {
		return ProjectResponse{}, err
	}
	budget, err := normalizeBudget(req.AvailableBudget)
	if err != nil {
		return ProjectResponse{}, err
	}

	var detail domain.ProjectDetail
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		project, err := loadOwnedProject(ctx, repos, projectID, ownerID)
		if err != nil {
			return err
		}
		if name != project.Name {
			if err := ensureProjectNameFree(ctx, repos, ownerID, name, projectID); err != nil {
				return err
			}
		}
		project.Name = name
		project.Description = req.Description
		project.AvailableBudget = budget
		if status != nil {
			project.Status = *status
		}
		project.UpdatedAt = s.nowFn()

		if _, err := repos.Projects.Update(ctx, project); err != nil {
			return err
		}
		detail, err = repos.Projects.GetDetail(ctx, projectID)
		return err
	})
	if err != nil {
		return ProjectResponse{}, err
	}

	resp = toProjectResponse(detail)
	s.publish(ctx, eventProjectUpdated, resp.ID.String(), resp)
	return resp, nil
}

// DeleteProject refuses while the project still has tasks; there is no cascade.
func (s *Service) DeleteProject(ctx context.Context, ownerID, projectID uuid.UUID) (err error) {
	defer func() { logResult(ctx, "delete_project", err, "owner_id", ownerID, "project_id", projectID) }()

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := loadOwnedProject(ctx, repos, projectID, ownerID); err != nil {
			return err
		}
		count, err := repos.Tasks.CountByProject(ctx, projectID)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: project has %d task(s); delete them first", domain.ErrConflict, count)
		}
		return repos.Projects.Delete(ctx, projectID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, eventProjectDeleted, projectID.String(), map[string]any{"id": projectID, "owner_id": ownerID})
	return nil
}

func ensureProjectNameFree(ctx context.Context, repos ports.Repositories, ownerID uuid.UUID, name string, excludeID uuid.UUID) error {
	exists, err := repos.Projects.ExistsByOwnerAndName(ctx, ownerID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: a project named %q already exists", domain.ErrConflict, name)
	}
	return nil
}
