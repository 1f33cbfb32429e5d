package cacheinfra

import (
	"context"
	"errors"
	"time"

	"github.com/viccon/sturdyc"
)

// ErrNotFound is returned when a key is absent or expired. The public cache
// package re-exports this value as cache.ErrNotFound.
var ErrNotFound = errors.New("cache: key not found")

// Config holds the configuration for the sturdyc store adapter.
type Config struct {
	// Capacity defines the maximum number of entries that the store can hold.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the time-to-live for stored entries. After this duration,
	// entries are treated as absent. Must be greater than 0.
	//
	// sturdyc applies the TTL client-wide, so every entry written through
	// this adapter shares one lifetime regardless of the per-call ttl hint
	// on Set/SetMany. Backends with per-entry expiry honor the hint instead.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the store reaches its capacity. Must be between 1-100.
	// Default: 10
	EvictionPercentage int

	// EvictionInterval sets how often the store checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
// The 100s TTL is the window within which cached page memberships are allowed
// to go stale before they self-heal.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                100 * time.Second,
		EvictionPercentage: 10,
		EvictionInterval:   0,
	}
}

// ToSturdycOptions converts the Config to sturdyc.Option slice.
// Capacity, NumShards, TTL, and EvictionPercentage are passed directly
// to sturdyc.New() and are not included in the options.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// sturdycStore adapts a sturdyc client to the point/batch store operations
// the resource caching layer needs.
type sturdycStore struct {
	client *sturdyc.Client[[]byte]
}

// NewSturdycStore creates a new sturdyc-backed store.
// It validates the configuration and initializes a sturdyc client with the
// provided settings.
func NewSturdycStore(cfg Config) (*sturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &sturdycStore{client: client}, nil
}

// Has reports whether key holds an unexpired entry.
func (s *sturdycStore) Has(ctx context.Context, key string) (bool, error) {
	_, ok := s.client.Get(key)
	return ok, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *sturdycStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := s.client.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

// GetMany returns the values held for keys. Missing keys are absent from the
// result rather than reported as errors.
func (s *sturdycStore) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	found := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := s.client.Get(key); ok {
			found[key] = value
		}
	}
	return found, nil
}

// Set stores value under key. The ttl hint is accepted for interface
// compatibility; sturdyc expires entries at the client-wide TTL.
func (s *sturdycStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.client.Set(key, value)
	return nil
}

// SetMany stores every entry independently, best-effort.
func (s *sturdycStore) SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	for key, value := range entries {
		s.client.Set(key, value)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *sturdycStore) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}
