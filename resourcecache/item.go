package resourcecache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goliatone/go-resource-cache/cache"
)

// FetchItemFn loads one resource from the source of truth and serializes it.
// It fails with ErrNotFound when the resource is absent.
type FetchItemFn func(ctx context.Context) (Representation, error)

// ItemCache implements the cache-aside protocol for single resources. Every
// operation touches exactly one item key; collection keys are never written
// or invalidated from here, so collection staleness resolves via TTL alone.
type ItemCache struct {
	store  cache.Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewItemCache builds an ItemCache over the given store.
func NewItemCache(store cache.Store, ttl time.Duration, logger *slog.Logger) *ItemCache {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &ItemCache{store: store, ttl: ttl, logger: logger}
}

// GetOrFetch returns the cached body under key without consulting the data
// source, or on a miss invokes fetch, populates the key and returns the
// fresh body. The second return reports whether the body came from cache.
//
// Store failures never fail the request: the fetch runs and its result is
// returned uncached.
func (c *ItemCache) GetOrFetch(ctx context.Context, key string, fetch FetchItemFn) (Representation, bool, error) {
	if bypassFromContext(ctx) {
		body, err := fetch(ctx)
		return body, false, err
	}

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		body, derr := cache.DecodeBody(data)
		if derr == nil {
			return Representation(body), true, nil
		}
		c.logger.Warn("item cache entry corrupt, refetching", "key", key, "error", derr)
	case !errors.Is(err, cache.ErrNotFound):
		c.degraded(&CacheUnavailableError{Op: "get", Key: key, Err: err})
		body, ferr := fetch(ctx)
		return body, false, ferr
	}

	body, err := fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	c.write(ctx, key, body)
	return body, false, nil
}

// Populate unconditionally overwrites key with body. Used after create and
// update, where the fresh body is already in hand and re-fetching would be
// wasted work.
func (c *ItemCache) Populate(ctx context.Context, key string, body Representation) {
	if bypassFromContext(ctx) {
		return
	}
	c.write(ctx, key, body)
}

// Invalidate removes the item under key. Invalidating an absent key is a
// no-op.
func (c *ItemCache) Invalidate(ctx context.Context, key string) {
	if bypassFromContext(ctx) {
		return
	}

	ok, err := c.store.Has(ctx, key)
	if err != nil {
		c.degraded(&CacheUnavailableError{Op: "has", Key: key, Err: err})
		return
	}
	if !ok {
		return
	}
	if err := c.store.Delete(ctx, key); err != nil {
		c.degraded(&CacheUnavailableError{Op: "delete", Key: key, Err: err})
	}
}

func (c *ItemCache) write(ctx context.Context, key string, body Representation) {
	data, err := cache.EncodeBody(body)
	if err != nil {
		c.logger.Warn("item cache encode failed, skipping write", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.degraded(&CacheUnavailableError{Op: "set", Key: key, Err: err})
	}
}

func (c *ItemCache) degraded(err *CacheUnavailableError) {
	c.logger.Warn("item cache degraded, serving from source", "op", err.Op, "key", err.Key, "error", err.Err)
}
