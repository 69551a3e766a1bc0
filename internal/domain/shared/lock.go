package shared

import (
	"context"
	"time"
)

// ErrLockNotObtained is returned when a lock is held by someone else
var ErrLockNotObtained = NewDomainError("LOCK_NOT_OBTAINED", "Resource is being processed, retry later")

// Lock is a held lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker hands out named locks that expire after ttl
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
