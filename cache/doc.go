// Package cache provides the key derivation and storage capability used by
// the resource caching layer.
//
// # Overview
//
// This package exports two main interfaces and their default implementations:
//
//   - Store: a TTL-based key/value capability holding opaque byte values
//   - KeyDeriver: pure functions turning resource types, identifiers and
//     request signatures into stable cache keys
//
// It also provides the codec used to encode the two kinds of entries the
// resource layer stores: item bodies (field -> value maps) and page-index
// id lists.
//
// # Keys
//
// Three key shapes exist:
//
//	typeKey := deriver.ResourceTypeKey("user")           // namespace for a resource type
//	itemKey := deriver.ItemKey(typeKey, "42")            // one serialized resource body
//	pageKey := deriver.RequestSignatureKey("/users?tier=gold", "")
//
// The request signature covers the full path and raw query string exactly as
// received. Two requests that differ only in query parameter ordering produce
// different keys; the layer does not canonicalize queries. When a collection
// is scoped to the caller, the caller identity is folded into the signature
// so two callers never share a page-index entry.
//
// # Store contract
//
// Get returns ErrNotFound for absent or expired keys. GetMany never fails on
// missing keys; they are simply absent from the result. Batch operations are
// best-effort, applied per key, never transactional. Implementations must be
// safe for concurrent use.
//
// The default in-process implementation is backed by sturdyc and constructed
// via NewStore. Networked backends (Redis, Memcache) can implement Store
// directly; the ttl arguments carry per-entry lifetimes for backends that
// support them.
//
// # See Also
//
// For the cache-aside orchestration built on top of this package, see the
// resourcecache package.
package cache
