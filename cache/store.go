package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-resource-cache/internal/cacheinfra"
)

// ErrNotFound is returned by Store.Get when the key is absent or expired.
var ErrNotFound = cacheinfra.ErrNotFound

// Store is the key/value capability the resource caching layer depends on.
// Values are opaque bytes; the caller owns encoding. A ttl of zero asks the
// backend for its default entry lifetime.
//
// Batch operations apply each key independently and are not transactional.
// Implementations must be safe for concurrent use from many request
// goroutines.
type Store interface {
	// Has reports whether key currently holds an unexpired entry.
	Has(ctx context.Context, key string) (bool, error)

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetMany returns the values for the given keys. Missing keys are simply
	// absent from the result map.
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set stores value under key with the given lifetime.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetMany stores every entry with the given lifetime, best-effort.
	SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
