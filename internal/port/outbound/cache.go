package outbound

import (
	"context"
	"time"
)

// ResponseCachePort stores replayable HTTP responses keyed by idempotency key.
type ResponseCachePort interface {
	// Get returns the cached value, or nil when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Lock atomically claims key for ttl. It returns false when already claimed.
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Unlock releases a claim taken by Lock.
	Unlock(ctx context.Context, key string) error
}
