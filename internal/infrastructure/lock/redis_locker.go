// Package lock implements shared.Locker on redis and in process memory.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRetryBackoff = 100 * time.Millisecond
	defaultRetries      = 20
)

// RedisLocker obtains locks with redislock, retrying on a linear backoff
// before giving up with shared.ErrLockNotObtained.
type RedisLocker struct {
	client *redislock.Client
	retry  redislock.RetryStrategy
}

// NewRedisLocker creates a locker on client
func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(client),
		retry:  redislock.LimitRetry(redislock.LinearBackoff(defaultRetryBackoff), defaultRetries),
	}
}

// WithoutRetry makes Obtain fail at once when the key is held
func (l *RedisLocker) WithoutRetry() *RedisLocker {
	cp := *l
	cp.retry = redislock.NoRetry()
	return &cp
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	lk, err := l.client.Obtain(ctx, key, ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return redisLock{lk}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

// Release ignores a lock that already expired
func (r redisLock) Release(ctx context.Context) error {
	if err := r.lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return err
	}
	return nil
}

var _ shared.Locker = (*RedisLocker)(nil)
