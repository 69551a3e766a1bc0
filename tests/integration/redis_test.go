package integration

import (
	"context"
	"testing"
	"time"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/infrastructure/cache"
	"github.com/erp/purchase/internal/infrastructure/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisIdempotencyStore(t *testing.T) {
	client := NewTestRedis(t, 1)
	store := cache.NewRedisIdempotencyStore(client, "test:")
	ctx := context.Background()

	ok, err := store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second reservation of the same key must fail")

	_, found, err := store.Result(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, found, "pending key has no result")

	require.NoError(t, store.Complete(ctx, "key-1", []byte(`{"status":201}`), time.Minute))
	payload, found, err := store.Result(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"status":201}`, string(payload))

	require.NoError(t, store.Forget(ctx, "key-1"))
	ok, err = store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := client.TTL(ctx, "test:key-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisLocker(t *testing.T) {
	client := NewTestRedis(t, 2)
	locker := lock.NewRedisLocker(client).WithoutRetry()
	ctx := context.Background()

	held, err := locker.Obtain(ctx, "purchase-request:tenant:supplier", 10*time.Second)
	require.NoError(t, err)

	_, err = locker.Obtain(ctx, "purchase-request:tenant:supplier", 10*time.Second)
	assert.ErrorIs(t, err, shared.ErrLockNotObtained)

	other, err := locker.Obtain(ctx, "purchase-request:tenant:other", 10*time.Second)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, held.Release(ctx))
	again, err := locker.Obtain(ctx, "purchase-request:tenant:supplier", 10*time.Second)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}
