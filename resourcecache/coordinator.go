package resourcecache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-resource-cache/cache"
)

// Coordinator orchestrates the cache-aside protocol around the business
// operations of one resource type: it derives keys, consults the store
// through the item and collection caches, and on misses calls out to the
// data source and serializer before populating the store.
//
// A Coordinator holds no per-request state; it is safe for concurrent use
// from many request goroutines. The store is the only shared mutable
// resource.
type Coordinator[T any] struct {
	resource   Resource
	source     DataSource[T]
	serializer Serializer[T]
	store      cache.Store
	keys       cache.KeyDeriver
	identity   IdentityResolver
	logger     *slog.Logger
	ttl        time.Duration

	items       *ItemCache
	collections *CollectionCache

	// typeKey is derived once; it namespaces every item key of the resource.
	typeKey string

	// pageKeys tracks the page-index keys this coordinator has served, so
	// the write-invalidation policy can drop them without scanning the
	// store.
	pageKeys          *xsync.MapOf[string, struct{}]
	invalidateOnWrite bool
}

// Option configures a Coordinator.
type Option[T any] func(*Coordinator[T])

// WithLogger sets the logger used for cache degradation and debug events.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *Coordinator[T]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithKeyDeriver overrides the default key deriver.
func WithKeyDeriver[T any](keys cache.KeyDeriver) Option[T] {
	return func(c *Coordinator[T]) {
		if keys != nil {
			c.keys = keys
		}
	}
}

// WithIdentityResolver sets the resolver used for identity-scoped
// collections.
func WithIdentityResolver[T any](resolver IdentityResolver) Option[T] {
	return func(c *Coordinator[T]) {
		if resolver != nil {
			c.identity = resolver
		}
	}
}

// WithTTL sets the entry lifetime requested on cache writes.
func WithTTL[T any](ttl time.Duration) Option[T] {
	return func(c *Coordinator[T]) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithWriteInvalidation drops every tracked page-index entry of the resource
// after a successful create, update or delete. The default leaves page
// indexes to TTL expiry, trading a staleness window for hit rate.
func WithWriteInvalidation[T any]() Option[T] {
	return func(c *Coordinator[T]) {
		c.invalidateOnWrite = true
	}
}

// New builds a Coordinator for one resource type over the given
// collaborators.
func New[T any](resource Resource, source DataSource[T], serializer Serializer[T], store cache.Store, opts ...Option[T]) *Coordinator[T] {
	c := &Coordinator[T]{
		resource:   resource,
		source:     source,
		serializer: serializer,
		store:      store,
		keys:       cache.NewKeyDeriver(),
		identity:   RequestIdentity{},
		logger:     discardLogger(),
		ttl:        cache.DefaultTTL,
		pageKeys:   xsync.NewMapOf[string, struct{}](),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.typeKey = c.keys.ResourceTypeKey(resource.TypeName())
	c.items = NewItemCache(store, c.ttl, c.logger)
	c.collections = NewCollectionCache(store, c.keys, c.ttl, c.logger)

	return c
}

// Resource returns the descriptor this coordinator serves.
func (c *Coordinator[T]) Resource() Resource {
	return c.resource
}

// ListResult is the outcome of a List operation.
type ListResult struct {
	Items []Representation
	Total int

	// FromCache reports whether the page was reconstructed from the store.
	// Hits and misses are indistinguishable in shape; only latency and this
	// flag differ.
	FromCache bool
}

// List serves the collection view addressed by the request. Cache hits are
// reconstructed from the page index; for paginated resources the total is
// re-counted fresh so pagination metadata does not go stale with the page.
func (c *Coordinator[T]) List(ctx context.Context, req Request) (*ListResult, error) {
	pageKey := c.pageKey(req)
	q := req.query()

	items, total, hit, err := c.collections.List(ctx, pageKey, c.typeKey, func(ctx context.Context) ([]PageItem, int, error) {
		return c.fetchPage(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	c.pageKeys.Store(pageKey, struct{}{})

	if hit && c.resource.Paginated {
		total, err = c.source.Count(ctx, q)
		if err != nil {
			return nil, err
		}
	}

	c.logger.Debug("list served", "resource", c.resource.TypeName(), "hit", hit, "items", len(items))
	return &ListResult{Items: items, Total: total, FromCache: hit}, nil
}

// Retrieve serves a single resource body, from cache when present.
func (c *Coordinator[T]) Retrieve(ctx context.Context, req Request) (Representation, error) {
	key := c.keys.ItemKey(c.typeKey, req.ID)

	body, hit, err := c.items.GetOrFetch(ctx, key, func(ctx context.Context) (Representation, error) {
		record, err := c.source.FetchOne(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		return c.serializer.ToRepresentation(record)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("retrieve served", "resource", c.resource.TypeName(), "id", req.ID, "hit", hit)
	return body, nil
}

// Create validates the input, persists a new record and populates its item
// entry with the fresh body. Validation failures surface before any cache or
// persistence interaction.
func (c *Coordinator[T]) Create(ctx context.Context, req Request) (Representation, error) {
	validated, err := c.serializer.Validate(req.Body, false)
	if err != nil {
		return nil, err
	}

	record, err := c.source.Insert(ctx, validated)
	if err != nil {
		return nil, err
	}

	body, err := c.serializer.ToRepresentation(record)
	if err != nil {
		return nil, err
	}

	id, err := c.identifierOf(body)
	if err != nil {
		return nil, err
	}

	c.items.Populate(ctx, c.keys.ItemKey(c.typeKey, id), body)
	c.invalidatePages(ctx)
	return body, nil
}

// Update validates the input, persists the change against the existing
// record and overwrites the item entry with the fresh body. With partial set,
// absent fields keep their current values.
func (c *Coordinator[T]) Update(ctx context.Context, req Request, partial bool) (Representation, error) {
	validated, err := c.serializer.Validate(req.Body, partial)
	if err != nil {
		return nil, err
	}

	existing, err := c.source.FetchOne(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	current, err := c.serializer.ToRepresentation(existing)
	if err != nil {
		return nil, err
	}

	merged := mergeInput(current, validated, partial, c.resource.IDFieldName())

	record, err := c.source.Update(ctx, req.ID, merged)
	if err != nil {
		return nil, err
	}

	body, err := c.serializer.ToRepresentation(record)
	if err != nil {
		return nil, err
	}

	c.items.Populate(ctx, c.keys.ItemKey(c.typeKey, req.ID), body)
	c.invalidatePages(ctx)
	return body, nil
}

// Delete removes the record and its item entry. The item invalidation
// touches exactly one key; page indexes referencing the id are left to the
// configured invalidation policy.
func (c *Coordinator[T]) Delete(ctx context.Context, req Request) error {
	if err := c.source.Remove(ctx, req.ID); err != nil {
		return err
	}

	c.items.Invalidate(ctx, c.keys.ItemKey(c.typeKey, req.ID))
	c.invalidatePages(ctx)
	return nil
}

func (c *Coordinator[T]) fetchPage(ctx context.Context, q Query) ([]PageItem, int, error) {
	records, total, err := c.source.FetchMany(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	items := make([]PageItem, 0, len(records))
	for _, record := range records {
		body, serr := c.serializer.ToRepresentation(record)
		if serr != nil {
			return nil, 0, serr
		}
		id, ierr := c.identifierOf(body)
		if ierr != nil {
			return nil, 0, ierr
		}
		items = append(items, PageItem{ID: id, Body: body})
	}
	return items, total, nil
}

// pageKey derives the request signature, folding in the caller identity for
// scoped resources. Anonymous callers share one scope.
func (c *Coordinator[T]) pageKey(req Request) string {
	caller := ""
	if c.resource.ScopedByCaller {
		caller = c.identity.CallerID(req)
		if caller == "" {
			caller = "anonymous"
		}
	}
	return c.keys.RequestSignatureKey(req.FullPath(), caller)
}

// invalidatePages applies the write-invalidation policy: every page-index
// key this coordinator has served is dropped from the store and forgotten.
func (c *Coordinator[T]) invalidatePages(ctx context.Context) {
	if !c.invalidateOnWrite || bypassFromContext(ctx) {
		return
	}

	c.pageKeys.Range(func(key string, _ struct{}) bool {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("page index invalidation failed", "key", key, "error", err)
		}
		c.pageKeys.Delete(key)
		return true
	})
}

func (c *Coordinator[T]) identifierOf(body Representation) (string, error) {
	field := c.resource.IDFieldName()
	value, ok := body[field]
	if !ok || value == nil {
		return "", fmt.Errorf("resourcecache: representation of %s missing identifier field %q", c.resource.TypeName(), field)
	}
	return fmt.Sprintf("%v", value), nil
}

// mergeInput folds validated input into the current representation. Full
// updates replace every field but keep the identifier; partial updates only
// touch the provided fields.
func mergeInput(current, input Representation, partial bool, idField string) Representation {
	if !partial {
		merged := input.clone()
		if id, ok := current[idField]; ok {
			merged[idField] = id
		}
		return merged
	}

	merged := current.clone()
	for field, value := range input {
		merged[field] = value
	}
	return merged
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
