package cache

import (
	"time"

	"github.com/goliatone/go-resource-cache/internal/cacheinfra"
)

// DefaultTTL is the entry lifetime applied when nothing else is configured.
// It covers page-index entries and the item bodies written alongside them.
const DefaultTTL = 100 * time.Second

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	// Capacity is the maximum number of entries the store can hold.
	Capacity int

	// NumShards determines how many shards back the store for concurrent access.
	NumShards int

	// TTL is the lifetime applied to cached entries.
	TTL time.Duration

	// EvictionPercentage is how much of the store is evicted when capacity
	// is reached, in percent.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are collected.
	// Zero uses the backend default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewStore constructs the default sturdyc-backed store using the provided
// configuration.
func NewStore(cfg Config) (Store, error) {
	return cacheinfra.NewSturdycStore(cfg.toInternal())
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
