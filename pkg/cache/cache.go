// Package cache stores encoded results of cycler operations.
//
// Every operation in [github.com/matzehuels/cycler/pkg/pipeline] is a pure
// function of its input bytes and options, so results are cached under a key
// derived from both. Four backends share the [Cache] interface:
//
//   - [FileCache]: one file per entry below a directory, for the CLI
//   - [MemoryCache]: a bounded in-process LRU, for the HTTP server
//   - [RedisCache]: a shared store for multi-instance deployments
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys are produced by a [Keyer] so that key layout can be changed or
// namespaced (see [ScopedKeyer]) without touching the callers.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	TTLDocument = 24 * time.Hour
	TTLGraph    = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil). Errors are reserved for backend
// failures; callers treat them as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
