package sqlite_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralforge/project-tracker/internal/adapters/sqlite"
	"github.com/viralforge/project-tracker/internal/domain"
	"github.com/viralforge/project-tracker/internal/ports"
	"github.com/viralforge/project-tracker/internal/testutil"
)

func seedUser(t *testing.T, store ports.UnitOfWork) domain.User {
	t.Helper()
	now := time.Now().UTC()
	user := domain.User{UserID: uuid.New(), Name: "Alice", Email: uuid.NewString() + "@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.WithinTx(context.Background(), func(ctx context.Context, repos ports.Repositories) error {
		_, err := repos.Users.Create(ctx, user)
		return err
	}))
	return user
}

func newProject(owner uuid.UUID, name string) domain.Project {
	now := time.Now().UTC()
	return domain.Project{ProjectID: uuid.New(), OwnerID: owner, Name: name, Status: domain.ProjectActive, CreatedAt: now, UpdatedAt: now}
}

func newTask(projectID uuid.UUID, description string, predecessor *uuid.UUID) domain.Task {
	now := time.Now().UTC()
	return domain.Task{TaskID: uuid.New(), ProjectID: projectID, Description: description, PredecessorTaskID: predecessor, Status: domain.TaskNotDone, CreatedAt: now, UpdatedAt: now}
}

func TestUniqueConstraintsSurfaceAsConflict(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	user := seedUser(t, store)

	err := store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		_, err := repos.Users.Create(ctx, domain.User{UserID: uuid.New(), Name: "Dup", Email: user.Email, PasswordHash: "x"})
		return err
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	err = store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Projects.Create(ctx, newProject(user.UserID, "Website")); err != nil {
			return err
		}
		_, err := repos.Projects.Create(ctx, newProject(user.UserID, "Website"))
		return err
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	var count int
	require.NoError(t, store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		list, err := repos.Projects.ListDetails(ctx, user.UserID, domain.ProjectFilter{})
		count = len(list)
		return err
	}))
	assert.Zero(t, count, "failed unit of work rolled back")
}

func TestForeignKeysSurfaceAsConflict(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	user := seedUser(t, store)
	project := newProject(user.UserID, "Website")
	first := newTask(project.ProjectID, "Design", nil)
	second := newTask(project.ProjectID, "Build", &first.TaskID)

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Projects.Create(ctx, project); err != nil {
			return err
		}
		if _, err := repos.Tasks.Create(ctx, first); err != nil {
			return err
		}
		_, err := repos.Tasks.Create(ctx, second)
		return err
	}))

	err := store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		return repos.Projects.Delete(ctx, project.ProjectID)
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	err = store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		return repos.Tasks.Delete(ctx, first.TaskID)
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	err = store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		return repos.Tasks.Delete(ctx, uuid.New())
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDetailReadsRoundTrip(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	user := seedUser(t, store)

	budget := decimal.RequireFromString("99.90")
	project := newProject(user.UserID, "Website")
	project.AvailableBudget = &budget
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	design := newTask(project.ProjectID, "Design", nil)
	design.StartDate, design.EndDate = &start, &end
	design.Status = domain.TaskDone
	build := newTask(project.ProjectID, "Build", &design.TaskID)

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		for _, step := range []func() error{
			func() error { _, err := repos.Projects.Create(ctx, project); return err },
			func() error { _, err := repos.Tasks.Create(ctx, design); return err },
			func() error { _, err := repos.Tasks.Create(ctx, build); return err },
		} {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		pd, err := repos.Projects.GetDetail(ctx, project.ProjectID)
		require.NoError(t, err)
		assert.Equal(t, 2, pd.TaskCount)
		assert.Equal(t, 1, pd.DoneTaskCount)
		require.NotNil(t, pd.AvailableBudget)
		assert.True(t, budget.Equal(*pd.AvailableBudget))

		td, err := repos.Tasks.GetDetail(ctx, build.TaskID)
		require.NoError(t, err)
		assert.Equal(t, "Website", td.ProjectName)
		assert.Equal(t, "Design", td.PredecessorDescription)

		dd, err := repos.Tasks.GetDetail(ctx, design.TaskID)
		require.NoError(t, err)
		require.NotNil(t, dd.StartDate)
		assert.True(t, start.Equal(*dd.StartDate))
		assert.Empty(t, dd.PredecessorDescription)

		_, err = repos.Tasks.GetDetail(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	}))
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	user := seedUser(t, store)

	assert.Panics(t, func() {
		_ = store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
			if _, err := repos.Projects.Create(ctx, newProject(user.UserID, "Doomed")); err != nil {
				return err
			}
			panic("boom")
		})
	})

	err := store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		exists, err := repos.Projects.ExistsByOwnerAndName(ctx, user.UserID, "Doomed", uuid.Nil)
		if err != nil {
			return err
		}
		if exists {
			return errors.New("project survived rollback")
		}
		return nil
	})
	require.NoError(t, err)
}

func TestOpenKeepsReservedCharactersInPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "odd?name#1%20.db")
	ctx := context.Background()

	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	seedUser(t, sqlite.NewStore(db))

	_, err = os.Stat(path)
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Contains(t, e.Name(), "odd?name#1%20.db")
	}
}

func TestTextFilterFoldsUnicodeCase(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	user := seedUser(t, store)
	portal := newProject(user.UserID, "ÉCOLE Portal")

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Projects.Create(ctx, portal); err != nil {
			return err
		}
		_, err := repos.Tasks.Create(ctx, newTask(portal.ProjectID, "Über Planung", nil))
		return err
	}))

	require.NoError(t, store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		projects, err := repos.Projects.ListDetails(ctx, user.UserID, domain.ProjectFilter{NameContains: "école"})
		require.NoError(t, err)
		assert.Len(t, projects, 1)

		tasks, err := repos.Tasks.ListDetailsByProject(ctx, portal.ProjectID, domain.TaskFilter{DescriptionContains: "ÜBER"})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
		return nil
	}))
}

func TestUnknownStoredStatusIsRejected(t *testing.T) {
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := sqlite.NewStore(db)
	ctx := context.Background()
	user := seedUser(t, store)
	project := newProject(user.UserID, "Website")
	task := newTask(project.ProjectID, "Design", nil)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Projects.Create(ctx, project); err != nil {
			return err
		}
		_, err := repos.Tasks.Create(ctx, task)
		return err
	}))

	_, err = db.ExecContext(ctx, `PRAGMA ignore_check_constraints = ON`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `UPDATE projects SET status = 'ARCHIVED' WHERE project_id = ?`, project.ProjectID.String())
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `UPDATE tasks SET status = 'done' WHERE task_id = ?`, task.TaskID.String())
	require.NoError(t, err)

	err = store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		_, err := repos.Projects.GetByID(ctx, project.ProjectID)
		return err
	})
	require.ErrorContains(t, err, `unknown status "ARCHIVED"`)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	err = store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		_, err := repos.Tasks.GetDetail(ctx, task.TaskID)
		return err
	})
	require.ErrorContains(t, err, `unknown status "done"`)
}
