// Package kvstore is the small key-value surface used for caches and rate
// limiting. Callers depend on the interfaces so they run against Redis in
// production and against MemoryStore in tests or single-node setups.
package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for a missing or expired key.
var ErrNotFound = errors.New("kvstore: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// Counter is a fixed-window counter.
type Counter interface {
	// Incr increments key and returns the new value. The key expires window
	// after its first increment.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Pinger reports whether the backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
