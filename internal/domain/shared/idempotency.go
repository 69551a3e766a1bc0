package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed request keys and, once a request
// finished, the payload to replay for it.
type IdempotencyStore interface {
	// MarkProcessed reserves key for ttl.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete stores the result of the request that reserved key
	Complete(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Result returns the stored payload. ok is false while the key is
	// reserved but not completed, or unknown.
	Result(ctx context.Context, key string) (payload []byte, ok bool, err error)

	// Forget removes a key so that a failed request can be retried
	Forget(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
