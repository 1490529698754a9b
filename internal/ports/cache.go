package ports

import (
	"context"
	"time"
)

// LockoutState counts consecutive failed logins for one email.
type LockoutState struct {
	FailedCount int
	LockedUntil *time.Time
}

// Locked reports whether logins are refused at now.
func (s LockoutState) Locked(now time.Time) bool {
	return s.LockedUntil != nil && s.LockedUntil.After(now)
}

// LockoutStore keeps login lockout counters outside the relational store.
// Counters expire on their own once the lockout window passes.
type LockoutStore interface {
	Get(ctx context.Context, key string) (LockoutState, error)
	RecordFailure(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (LockoutState, error)
	Clear(ctx context.Context, key string) error
}
