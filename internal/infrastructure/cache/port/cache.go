package port

import (
	"context"
	"errors"
	"time"
)

// Cache is a string key-value store with per-key expiry. It backs lookups
// that are safe to serve slightly stale, like group name resolution.
type Cache interface {
	// Get returns ErrMiss for absent or expired keys.
	Get(ctx context.Context, key string) (string, error)
	// Set with a non-positive ttl keeps the value until it is deleted.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Ping(ctx context.Context) error
}

var ErrMiss = errors.New("cache: miss")
