package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viralforge/project-tracker/internal/ports"
)

// Store implements ports.Store on a *sql.DB.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func newRepositories(tx DBTX) ports.Repositories {
	return ports.Repositories{
		Users:    &userRepository{db: tx},
		Projects: &projectRepository{db: tx},
		Tasks:    &taskRepository{db: tx},
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	return s.run(ctx, fn)
}

// WithinReadTx uses a plain transaction: a SQLite transaction that only reads
// never takes the write lock.
func (s *Store) WithinReadTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	return s.run(ctx, fn)
}

func (s *Store) run(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, newRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return translateWriteError(fmt.Errorf("committing transaction: %w", err), "constraint violated at commit")
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
