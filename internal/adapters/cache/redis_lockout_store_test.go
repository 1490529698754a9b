package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLockout(t *testing.T) {
	state := decodeLockout(map[string]string{"failed_count": "3", "locked_until": "1700000000"})
	assert.Equal(t, 3, state.FailedCount)
	require.NotNil(t, state.LockedUntil)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), *state.LockedUntil)

	empty := decodeLockout(map[string]string{})
	assert.Zero(t, empty.FailedCount)
	assert.Nil(t, empty.LockedUntil)
}

func TestNoopLockoutStore(t *testing.T) {
	ctx := context.Background()
	var s NoopLockoutStore
	state, err := s.RecordFailure(ctx, "k", time.Now(), 1, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, state.LockedUntil)
	require.NoError(t, s.Clear(ctx, "k"))
}

func TestRedisLockoutStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisLockoutStore(client)
	key := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Clear(ctx, key) })

	now := time.Now().UTC()
	state, err := store.RecordFailure(ctx, key, now, 2, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, state.FailedCount)
	assert.Nil(t, state.LockedUntil)

	state, err = store.RecordFailure(ctx, key, now, 2, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, state.LockedUntil)

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FailedCount)
	require.NotNil(t, got.LockedUntil)

	require.NoError(t, store.Clear(ctx, key))
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, got.FailedCount)
}
