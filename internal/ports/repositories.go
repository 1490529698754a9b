package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/viralforge/project-tracker/internal/domain"
)

// UserRepository persists identities. Email uniqueness is enforced by the store.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ProjectRepository persists projects. Name uniqueness per owner is enforced by the store
// and surfaces as domain.ErrConflict.
type ProjectRepository interface {
	Create(ctx context.Context, project domain.Project) (domain.Project, error)
	GetByID(ctx context.Context, projectID uuid.UUID) (domain.Project, error)
	GetDetail(ctx context.Context, projectID uuid.UUID) (domain.ProjectDetail, error)
	ListDetails(ctx context.Context, ownerID uuid.UUID, filter domain.ProjectFilter) ([]domain.ProjectDetail, error)
	ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, project domain.Project) (domain.Project, error)
	Delete(ctx context.Context, projectID uuid.UUID) error
}

// TaskRepository persists tasks and the joins needed for their read model.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	GetByID(ctx context.Context, taskID uuid.UUID) (domain.Task, error)
	GetDetail(ctx context.Context, taskID uuid.UUID) (domain.TaskDetail, error)
	ListDetailsByProject(ctx context.Context, projectID uuid.UUID, filter domain.TaskFilter) ([]domain.TaskDetail, error)
	ListDetailsByOwner(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]domain.TaskDetail, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int, error)
	ExistsByPredecessor(ctx context.Context, taskID uuid.UUID) (bool, error)
	Update(ctx context.Context, task domain.Task) (domain.Task, error)
	Delete(ctx context.Context, taskID uuid.UUID) error
}

// Repositories is the set of repositories bound to one unit of work.
type Repositories struct {
	Users    UserRepository
	Projects ProjectRepository
	Tasks    TaskRepository
}

// UnitOfWork runs fn with repositories bound to a single transaction.
// A returned error or a panic rolls the transaction back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	WithinReadTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Store is a persistence backend: a unit of work plus lifecycle hooks.
type Store interface {
	UnitOfWork
	Ping(ctx context.Context) error
	Close() error
}
