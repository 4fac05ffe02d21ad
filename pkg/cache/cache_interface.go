package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract used by the HTTP layer.
type Cache interface {
	// Get unmarshals the cached value into dest. found is false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}
