package interfaces

import (
	"context"
	"time"
)

// Cache is a TTL keyed byte cache shielding services from redundant reads
// within a short window. Production implementation is redis; services also
// accept a nil cache and fall through to the store. A miss is models.ErrNotFound.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}
