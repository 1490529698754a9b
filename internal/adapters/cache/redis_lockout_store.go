package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/project-tracker/internal/ports"
)

const lockoutKeyPrefix = "tracker:login:lockout:"

// RedisLockoutStore keeps failed-login counters in a Redis hash per login key.
type RedisLockoutStore struct {
	client redis.Cmdable
}

func NewRedisLockoutStore(client redis.Cmdable) *RedisLockoutStore {
	return &RedisLockoutStore{client: client}
}

func (s *RedisLockoutStore) Get(ctx context.Context, key string) (ports.LockoutState, error) {
	data, err := s.client.HGetAll(ctx, lockoutKeyPrefix+key).Result()
	if err != nil {
		return ports.LockoutState{}, err
	}
	return decodeLockout(data), nil
}

func decodeLockout(data map[string]string) ports.LockoutState {
	var state ports.LockoutState
	if n, err := strconv.Atoi(data["failed_count"]); err == nil {
		state.FailedCount = n
	}
	if unix, err := strconv.ParseInt(data["locked_until"], 10, 64); err == nil && unix > 0 {
		t := time.Unix(unix, 0).UTC()
		state.LockedUntil = &t
	}
	return state
}

// RecordFailure bumps the counter and, once threshold is reached, stamps locked_until.
// The hash expires on its own so stale counters never outlive the window by much.
func (s *RedisLockoutStore) RecordFailure(ctx context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (ports.LockoutState, error) {
	redisKey := lockoutKeyPrefix + key

	count, err := s.client.HIncrBy(ctx, redisKey, "failed_count", 1).Result()
	if err != nil {
		return ports.LockoutState{}, err
	}
	state := ports.LockoutState{FailedCount: int(count)}

	if threshold > 0 && int(count) >= threshold {
		lockedUntil := now.Add(lockoutWindow).UTC()
		_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, redisKey, "locked_until", lockedUntil.Unix())
			p.Expire(ctx, redisKey, lockoutWindow)
			return nil
		})
		if err != nil {
			return ports.LockoutState{}, err
		}
		state.LockedUntil = &lockedUntil
		return state, nil
	}

	if err := s.client.Expire(ctx, redisKey, 24*time.Hour).Err(); err != nil {
		return ports.LockoutState{}, err
	}
	return state, nil
}

func (s *RedisLockoutStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, lockoutKeyPrefix+key).Err()
}

// NoopLockoutStore disables lockout. Used when no Redis is configured.
type NoopLockoutStore struct{}

func (NoopLockoutStore) Get(context.Context, string) (ports.LockoutState, error) {
	return ports.LockoutState{}, nil
}

func (NoopLockoutStore) RecordFailure(context.Context, string, time.Time, int, time.Duration) (ports.LockoutState, error) {
	return ports.LockoutState{}, nil
}

func (NoopLockoutStore) Clear(context.Context, string) error { return nil }
