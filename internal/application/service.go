package application

import (
	"context"
	"sync"
	"time"

	"github.com/viralforge/project-tracker/internal/ports"
)

const serviceName = "project-tracker"

// Service implements the credential service and the project and task registries.
// Every registry method takes the caller's user id explicitly and runs as one unit of work.
type Service struct {
	cfg         Config
	store       ports.Store
	lockouts    ports.LockoutStore
	hasher      ports.PasswordHasher
	tokenSigner ports.TokenSigner
	publisher   ports.EventPublisher
	nowFn       func() time.Time
	// dummyHash is compared against on unknown emails so both login
	// failure paths pay the same hashing cost.
	dummyHash func() string
}

type Dependencies struct {
	Config      Config
	Store       ports.Store
	Lockouts    ports.LockoutStore
	Hasher      ports.PasswordHasher
	TokenSigner ports.TokenSigner
	Publisher   ports.EventPublisher
	Now         func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	hasher := deps.Hasher
	return &Service{
		cfg:         cfg,
		store:       deps.Store,
		lockouts:    deps.Lockouts,
		hasher:      hasher,
		tokenSigner: deps.TokenSigner,
		publisher:   deps.Publisher,
		nowFn:       nowFn,
		dummyHash: sync.OnceValue(func() string {
			hash, err := hasher.Hash("unused-login-placeholder-0")
			if err != nil {
				return ""
			}
			return hash
		}),
	}
}

// Ready reports whether the backing store answers.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}
