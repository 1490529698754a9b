package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viralforge/project-tracker/internal/ports"
	"gorm.io/gorm"
)

// Store is the GORM-backed ports.Store.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func newRepositories(db *gorm.DB) ports.Repositories {
	return ports.Repositories{
		Users:    &userRepository{db: db},
		Projects: &projectRepository{db: db},
		Tasks:    &taskRepository{db: db},
	}
}

// WithinTx runs fn inside a read-write transaction.
// gorm rolls back on error or panic and re-panics afterwards.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newRepositories(tx))
	})
}

func (s *Store) WithinReadTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newRepositories(tx))
	}, &sql.TxOptions{ReadOnly: true})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("gorm sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("gorm sql db: %w", err)
	}
	return sqlDB.Close()
}
