// Package testutil wires a real service against a throwaway SQLite file for tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/viralforge/project-tracker/internal/adapters/security"
	"github.com/viralforge/project-tracker/internal/adapters/sqlite"
	"github.com/viralforge/project-tracker/internal/application"
	"github.com/viralforge/project-tracker/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

// NewStore opens a migrated SQLite store in t.TempDir().
func NewStore(t testing.TB) *sqlite.Store {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlite.NewStore(db)
}

// Env is a fully wired service plus the collaborators tests may want to inspect.
type Env struct {
	Service   *application.Service
	Store     *sqlite.Store
	Signer    *security.JWTSigner
	Lockouts  *MemoryLockoutStore
	Publisher *RecordingPublisher
}

// NewEnv wires a service on a fresh store. Options may replace collaborators
// or config before the service is built.
func NewEnv(t testing.TB, opts ...func(*application.Dependencies)) *Env {
	t.Helper()
	signer, err := security.NewEphemeralJWTSigner("test-key")
	require.NoError(t, err)

	env := &Env{
		Store:     NewStore(t),
		Signer:    signer,
		Lockouts:  NewMemoryLockoutStore(),
		Publisher: &RecordingPublisher{},
	}
	deps := application.Dependencies{
		Config: application.Config{
			TokenTTL:             time.Hour,
			FailedLoginThreshold: 3,
			LockoutDuration:      15 * time.Minute,
		},
		Store:       env.Store,
		Lockouts:    env.Lockouts,
		Hasher:      security.NewBcryptHasher(bcrypt.MinCost),
		TokenSigner: signer,
		Publisher:   env.Publisher,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	env.Service = application.NewService(deps)
	return env
}

// MemoryLockoutStore is an in-process ports.LockoutStore.
type MemoryLockoutStore struct {
	mu     sync.Mutex
	states map[string]ports.LockoutState
}

func NewMemoryLockoutStore() *MemoryLockoutStore {
	return &MemoryLockoutStore{states: map[string]ports.LockoutState{}}
}

func (m *MemoryLockoutStore) Get(_ context.Context, key string) (ports.LockoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[key], nil
}

func (m *MemoryLockoutStore) RecordFailure(_ context.Context, key string, now time.Time, threshold int, window time.Duration) (ports.LockoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.states[key]
	state.FailedCount++
	if state.FailedCount >= threshold {
		until := now.Add(window)
		state.LockedUntil = &until
	}
	m.states[key] = state
	return state, nil
}

func (m *MemoryLockoutStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, key)
	return nil
}

// RecordingPublisher keeps every published event type in order.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *RecordingPublisher) Publish(_ context.Context, eventType string, _ []byte, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *RecordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
