package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/viralforge/project-tracker/internal/domain"
)

type userRepository struct {
	db DBTX
}

const userColumns = `user_id, name, email, password_hash, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		user.UserID.String(),
		user.Name,
		user.Email,
		user.PasswordHash,
		formatTimestamp(user.CreatedAt),
		formatTimestamp(user.UpdatedAt),
	)
	if err != nil {
		return domain.User{}, translateWriteError(err, "email already registered")
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID.String())
	return scanUser(row)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                    domain.User
		id                   string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &createdAt, &updatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	var err error
	if u.UserID, err = uuid.Parse(id); err != nil {
		return domain.User{}, fmt.Errorf("parsing user id: %w", err)
	}
	if u.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return domain.User{}, err
	}
	if u.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
