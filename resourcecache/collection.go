package resourcecache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goliatone/go-resource-cache/cache"
)

// PageItem is one serialized member of a fetched collection page, paired
// with the identifier it is cached under.
type PageItem struct {
	ID   string
	Body Representation
}

// FetchPageFn loads the filtered, paginated collection from the source of
// truth and serializes each member, returning the ordered page plus the
// total number of matching records.
type FetchPageFn func(ctx context.Context) ([]PageItem, int, error)

// CollectionCache implements the two-tier list caching scheme: an ordered
// id index per request signature, plus individually keyed item bodies. On a
// hit the response is reconstructed purely from cached bodies addressed
// through the cached index; no filtering is re-run.
type CollectionCache struct {
	store  cache.Store
	keys   cache.KeyDeriver
	ttl    time.Duration
	logger *slog.Logger
}

// NewCollectionCache builds a CollectionCache over the given store.
func NewCollectionCache(store cache.Store, keys cache.KeyDeriver, ttl time.Duration, logger *slog.Logger) *CollectionCache {
	if keys == nil {
		keys = cache.NewKeyDeriver()
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &CollectionCache{store: store, keys: keys, ttl: ttl, logger: logger}
}

// List serves the collection addressed by pageKey. On a miss it fetches the
// page, caches item bodies first-writer-wins plus the ordered id index, and
// returns the fresh page. On a hit it reconstructs the page from cache
// without touching the data source. The bool result reports a hit.
//
// An item body that expired independently of the page index is omitted from
// the reconstructed page, in index order; the page comes back shorter rather
// than failing. Store failures degrade to a direct fetch.
func (c *CollectionCache) List(ctx context.Context, pageKey, typeKey string, fetch FetchPageFn) ([]Representation, int, bool, error) {
	if bypassFromContext(ctx) {
		items, total, err := fetch(ctx)
		return bodiesOf(items), total, false, err
	}

	ok, err := c.store.Has(ctx, pageKey)
	if err != nil {
		c.degraded("has", pageKey, err)
		items, total, ferr := fetch(ctx)
		return bodiesOf(items), total, false, ferr
	}
	if !ok {
		return c.populate(ctx, pageKey, typeKey, fetch)
	}
	return c.reconstruct(ctx, pageKey, typeKey, fetch)
}

// populate fetches the page from the source and records it: every body not
// already cached is added to the batch (an existing body may be fresher than
// this snapshot, so it is left alone), and the full ordered id list is
// always written under the page key. The batch set is best-effort; a failed
// write only costs the next request a miss.
func (c *CollectionCache) populate(ctx context.Context, pageKey, typeKey string, fetch FetchPageFn) ([]Representation, int, bool, error) {
	items, total, err := fetch(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	batch := make(map[string][]byte, len(items)+1)
	ids := make([]string, 0, len(items))

	for _, item := range items {
		ids = append(ids, item.ID)

		itemKey := c.keys.ItemKey(typeKey, item.ID)
		exists, herr := c.store.Has(ctx, itemKey)
		if herr != nil {
			c.degraded("has", itemKey, herr)
			continue
		}
		if exists {
			continue
		}

		data, eerr := cache.EncodeBody(item.Body)
		if eerr != nil {
			c.logger.Warn("collection cache encode failed, skipping body", "key", itemKey, "error", eerr)
			continue
		}
		batch[itemKey] = data
	}

	if index, eerr := cache.EncodeIDList(ids); eerr == nil {
		batch[pageKey] = index
	} else {
		c.logger.Warn("collection cache index encode failed", "key", pageKey, "error", eerr)
	}

	if serr := c.store.SetMany(ctx, batch, c.ttl); serr != nil {
		c.degraded("setmany", pageKey, serr)
	}

	return bodiesOf(items), total, false, nil
}

// reconstruct replays a cached page: the ordered id list is read from the
// page key and the bodies batch-fetched. The cached id order is trusted
// as-is.
func (c *CollectionCache) reconstruct(ctx context.Context, pageKey, typeKey string, fetch FetchPageFn) ([]Representation, int, bool, error) {
	data, err := c.store.Get(ctx, pageKey)
	if err != nil {
		// The index can expire between the Has check and this read.
		if errors.Is(err, cache.ErrNotFound) {
			return c.populate(ctx, pageKey, typeKey, fetch)
		}
		c.degraded("get", pageKey, err)
		items, total, ferr := fetch(ctx)
		return bodiesOf(items), total, false, ferr
	}

	ids, derr := cache.DecodeIDList(data)
	if derr != nil {
		c.logger.Warn("collection cache index corrupt, repopulating", "key", pageKey, "error", derr)
		return c.populate(ctx, pageKey, typeKey, fetch)
	}

	itemKeys := make([]string, len(ids))
	for i, id := range ids {
		itemKeys[i] = c.keys.ItemKey(typeKey, id)
	}

	found, gerr := c.store.GetMany(ctx, itemKeys)
	if gerr != nil {
		c.degraded("getmany", pageKey, gerr)
		items, total, ferr := fetch(ctx)
		return bodiesOf(items), total, false, ferr
	}

	page := make([]Representation, 0, len(ids))
	for i, id := range ids {
		raw, ok := found[itemKeys[i]]
		if !ok {
			// Body expired independently of the index; omit it.
			continue
		}
		body, berr := cache.DecodeBody(raw)
		if berr != nil {
			c.logger.Warn("collection cache body corrupt, omitting", "key", itemKeys[i], "id", id, "error", berr)
			continue
		}
		page = append(page, Representation(body))
	}

	return page, len(page), true, nil
}

func (c *CollectionCache) degraded(op, key string, err error) {
	cerr := &CacheUnavailableError{Op: op, Key: key, Err: err}
	c.logger.Warn("collection cache degraded, serving from source", "op", cerr.Op, "key", cerr.Key, "error", cerr.Err)
}

func bodiesOf(items []PageItem) []Representation {
	out := make([]Representation, len(items))
	for i, item := range items {
		out[i] = item.Body
	}
	return out
}
