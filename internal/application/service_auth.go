package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/project-tracker/internal/domain"
	"github.com/viralforge/project-tracker/internal/ports"
)

const (
	eventUserRegistered = "user.registered"
	tokenTypeBearer     = "Bearer"
)

// Register creates an account and returns a signed token for it.
// The email fast-path check is backed by the store's unique constraint.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (result AuthResult, err error) {
	defer func() { logResult(ctx, "register", err) }()

	name, err := requireText(req.Name, "name")
	if err != nil {
		return AuthResult{}, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return AuthResult{}, err
	}
	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	user := domain.User{
		UserID:       uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		exists, err := repos.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		user, err = repos.Users.Create(ctx, user)
		return err
	})
	if err != nil {
		return AuthResult{}, err
	}

	s.publish(ctx, eventUserRegistered, user.UserID.String(), map[string]any{
		"user_id":       user.UserID,
		"email":         user.Email,
		"registered_at": user.CreatedAt,
	})
	return s.issueToken(user)
}

// Login verifies credentials. Unknown email and wrong password share one error.
// After FailedLoginThreshold consecutive failures the email is locked for LockoutDuration.
func (s *Service) Login(ctx context.Context, req LoginRequest) (result AuthResult, err error) {
	defer func() { logResult(ctx, "login", err) }()

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if req.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	lockKey := "login:" + email
	if state, lockErr := s.lockouts.Get(ctx, lockKey); lockErr == nil && state.Locked(s.nowFn()) {
		return AuthResult{}, fmt.Errorf("%w: too many failed attempts, try again later", domain.ErrAccountLocked)
	}

	var user domain.User
	err = s.store.WithinReadTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		user, err = repos.Users.GetByEmail(ctx, email)
		return err
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return AuthResult{}, err
	}
	hash := user.PasswordHash
	if err != nil {
		hash = s.dummyHash()
	}
	if s.hasher.Compare(hash, req.Password) != nil || err != nil {
		s.recordLoginFailure(ctx, lockKey)
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	if err := s.lockouts.Clear(ctx, lockKey); err != nil {
		logResult(ctx, "clear_lockout", err)
	}
	return s.issueToken(user)
}

func (s *Service) recordLoginFailure(ctx context.Context, lockKey string) {
	if s.cfg.FailedLoginThreshold <= 0 {
		return
	}
	if _, err := s.lockouts.RecordFailure(ctx, lockKey, s.nowFn(), s.cfg.FailedLoginThreshold, s.cfg.LockoutDuration); err != nil {
		logResult(ctx, "record_login_failure", err)
	}
}

func (s *Service) issueToken(user domain.User) (AuthResult, error) {
	now := s.nowFn()
	token, err := s.tokenSigner.Sign(ports.TokenClaims{
		UserID:    user.UserID,
		Email:     user.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	})
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign token: %w", err)
	}
	return AuthResult{
		Token:     token,
		TokenType: tokenTypeBearer,
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		ExpiresIn: int64(s.cfg.TokenTTL.Seconds()),
	}, nil
}

// ValidateToken verifies a bearer token and returns the identity it binds.
func (s *Service) ValidateToken(_ context.Context, rawToken string) (Identity, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return Identity{}, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)
	}
	claims, err := s.tokenSigner.Verify(rawToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)
	}
	return Identity{UserID: claims.UserID, Email: claims.Email, ExpiresAt: claims.ExpiresAt}, nil
}

// Authorize never fails: an absent or bad token just yields no identity.
func (s *Service) Authorize(ctx context.Context, rawToken string) (Identity, bool) {
	identity, err := s.ValidateToken(ctx, rawToken)
	if err != nil {
		return Identity{}, false
	}
	return identity, true
}

func (s *Service) PublicJWKs() ([]map[string]any, error) {
	return s.tokenSigner.PublicJWKs()
}
