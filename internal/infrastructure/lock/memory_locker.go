package lock

import (
	"context"
	"sync"
	"time"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
)

// MemoryLocker serializes callers of a single process
type MemoryLocker struct {
	mu      sync.Mutex
	held    map[string]memoryHold
	backoff time.Duration
	retries int
}

type memoryHold struct {
	token     uuid.UUID
	expiresAt time.Time
}

// NewMemoryLocker creates an in-process locker with the same retry policy as RedisLocker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held:    make(map[string]memoryHold),
		backoff: defaultRetryBackoff,
		retries: defaultRetries,
	}
}

func (l *MemoryLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	for attempt := 0; ; attempt++ {
		if lk, ok := l.tryObtain(key, ttl); ok {
			return lk, nil
		}
		if attempt >= l.retries {
			return nil, shared.ErrLockNotObtained
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}
}

func (l *MemoryLocker) tryObtain(key string, ttl time.Duration) (*memoryLock, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if h, ok := l.held[key]; ok && now.Before(h.expiresAt) {
		return nil, false
	}
	token := uuid.New()
	l.held[key] = memoryHold{token: token, expiresAt: now.Add(ttl)}
	return &memoryLock{locker: l, key: key, token: token}, true
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
	token  uuid.UUID
}

// Release frees the key unless another holder took it after expiry
func (m *memoryLock) Release(context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()
	if h, ok := m.locker.held[m.key]; ok && h.token == m.token {
		delete(m.locker.held, m.key)
	}
	return nil
}

var _ shared.Locker = (*MemoryLocker)(nil)
