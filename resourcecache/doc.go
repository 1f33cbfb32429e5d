// Package resourcecache provides a transparent caching overlay for
// CRUD-style resource operations.
//
// # Overview
//
// The package caches two things: the serialized representation of individual
// resources (item entries, keyed by resource type and identifier) and the
// membership of filtered or paginated collection views (page-index entries,
// keyed by the exact request signature). Mutations keep the cache consistent
// through per-item population and invalidation; page indexes self-heal via
// TTL expiry or, optionally, explicit invalidation on write.
//
// # Components
//
//   - ItemCache: cache-aside for single resources (retrieve/create/update/delete)
//   - CollectionCache: two-tier list caching (page index + item bodies)
//   - Coordinator: per-request orchestration composing both around a
//     DataSource and Serializer
//   - ActionSet: per-operation dispatch for transport bindings
//
// # Basic Usage
//
//	store, _ := cache.NewStore(cache.DefaultConfig())
//	users := resourcecache.New(
//		resourcecache.Resource{Name: "User", Paginated: true},
//		userSource,                           // your DataSource[User]
//		resourcecache.NewMapSerializer[User](),
//		store,
//	)
//
//	result, err := users.List(ctx, resourcecache.Request{Path: "/users", RawQuery: "tier=gold"})
//	body, err := users.Retrieve(ctx, resourcecache.Request{ID: "42"})
//
// A second List with the same path and query inside the TTL window is served
// from the page index without touching the data source, and returns the same
// bodies in the same order even if the underlying data changed in between.
//
// # Consistency model
//
// Requests share no mutable state except the store. Concurrent requests with
// the same signature may both miss and both populate; last write wins and
// both writes describe a valid snapshot. Deleting a resource removes exactly
// its item key; a page index referencing the id keeps serving the
// last-cached body until either expires. This staleness window is bounded by
// the TTL and is a deliberate trade; WithWriteInvalidation tightens it at
// the cost of hit rate.
//
// Cache failures are never request failures: any store error degrades the
// operation to a direct data-source path and is logged. The cache layer
// never converts a data-source error into a different kind and never serves
// expired entries to paper over a primary-path failure.
//
// # Error Handling
//
//   - *ValidationError: malformed input, surfaced before any cache interaction
//   - ErrNotFound: absent resource, surfaced with no cache write
//   - *CacheUnavailableError: logged and recovered by bypassing the cache
//   - serialization failures propagate unchanged; no partial cache writes
//
// # See Also
//
// For key derivation, the store capability and the entry codec, see the
// cache package. For a bun-backed DataSource, see the bunsource package.
package resourcecache
