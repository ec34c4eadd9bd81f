package ports

import (
	"context"
	"time"
)

// Cache defines a minimal key-value cache contract over raw bytes.
// Implementations must be safe for concurrent use and should surface backend
// errors so callers can decide whether a miss is real or the backend is down;
// the loose facade in application/services collapses that distinction.
type Cache interface {
	// Get returns the raw bytes for key. ok=false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL (0 or negative means no expiration if supported).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the keys and reports how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)
	// Clear removes every entry in the cache's namespace.
	Clear(ctx context.Context) error
}
