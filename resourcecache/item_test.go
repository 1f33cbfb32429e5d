package resourcecache

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-resource-cache/cache"
)

func itemFixture() (*ItemCache, *memStore) {
	store := newMemStore()
	return NewItemCache(store, 0, nil), store
}

func TestItemCache_GetOrFetch_MissPopulates(t *testing.T) {
	items, store := itemFixture()
	ctx := context.Background()

	fetches := 0
	body, hit, err := items.GetOrFetch(ctx, "type:1", func(ctx context.Context) (Representation, error) {
		fetches++
		return Representation{"id": "1", "name": "Ada"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Error("expected a miss on empty store")
	}
	if fetches != 1 {
		t.Errorf("expected 1 fetch, got %d", fetches)
	}
	if body["name"] != "Ada" {
		t.Errorf("unexpected body: %v", body)
	}
	if !store.hasKey("type:1") {
		t.Error("expected the miss to populate the item key")
	}
}

func TestItemCache_GetOrFetch_HitSkipsFetch(t *testing.T) {
	items, _ := itemFixture()
	ctx := context.Background()

	seed := func(ctx context.Context) (Representation, error) {
		return Representation{"id": "1", "name": "Ada"}, nil
	}
	if _, _, err := items.GetOrFetch(ctx, "type:1", seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	body, hit, err := items.GetOrFetch(ctx, "type:1", func(ctx context.Context) (Representation, error) {
		t.Fatal("fetch must not run on a hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hit {
		t.Error("expected a hit")
	}
	if body["name"] != "Ada" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestItemCache_GetOrFetch_FetchErrorNoWrite(t *testing.T) {
	items, store := itemFixture()

	_, _, err := items.GetOrFetch(context.Background(), "type:404", func(ctx context.Context) (Representation, error) {
		return nil, ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.keyCount() != 0 {
		t.Error("failed fetch must not write to the store")
	}
}

func TestItemCache_GetOrFetch_StoreFailureDegrades(t *testing.T) {
	items, store := itemFixture()
	store.failWith(errors.New("store down"))

	body, hit, err := items.GetOrFetch(context.Background(), "type:1", func(ctx context.Context) (Representation, error) {
		return Representation{"id": "1"}, nil
	})
	if err != nil {
		t.Fatalf("store outage must not fail the request: %v", err)
	}
	if hit {
		t.Error("degraded path cannot be a hit")
	}
	if body["id"] != "1" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestItemCache_Populate_Overwrites(t *testing.T) {
	items, _ := itemFixture()
	ctx := context.Background()

	items.Populate(ctx, "type:1", Representation{"id": "1", "name": "old"})
	items.Populate(ctx, "type:1", Representation{"id": "1", "name": "new"})

	body, hit, err := items.GetOrFetch(ctx, "type:1", func(ctx context.Context) (Representation, error) {
		t.Fatal("fetch must not run")
		return nil, nil
	})
	if err != nil || !hit {
		t.Fatalf("expected a hit, got hit=%v err=%v", hit, err)
	}
	if body["name"] != "new" {
		t.Errorf("expected the overwrite to win, got %v", body["name"])
	}
}

func TestItemCache_Invalidate_Idempotent(t *testing.T) {
	items, store := itemFixture()
	ctx := context.Background()

	items.Populate(ctx, "type:1", Representation{"id": "1"})
	items.Invalidate(ctx, "type:1")
	if store.hasKey("type:1") {
		t.Error("expected the key to be deleted")
	}

	// Absent key: still a no-op, no panic, no error surfaced anywhere.
	items.Invalidate(ctx, "type:1")
	items.Invalidate(ctx, "never-existed")
}

func TestItemCache_Bypass(t *testing.T) {
	items, store := itemFixture()
	ctx := WithCacheBypass(context.Background())

	fetches := 0
	_, hit, err := items.GetOrFetch(ctx, "type:1", func(ctx context.Context) (Representation, error) {
		fetches++
		return Representation{"id": "1"}, nil
	})
	if err != nil || hit {
		t.Fatalf("bypass must fetch directly, hit=%v err=%v", hit, err)
	}
	if fetches != 1 {
		t.Errorf("expected 1 fetch, got %d", fetches)
	}
	if store.keyCount() != 0 {
		t.Error("bypass must not write to the store")
	}

	items.Populate(ctx, "type:1", Representation{"id": "1"})
	if store.keyCount() != 0 {
		t.Error("bypassed populate must not write")
	}
}

func TestItemCache_CorruptEntryRefetches(t *testing.T) {
	store := newMemStore()
	items := NewItemCache(store, 0, nil)
	ctx := context.Background()

	if err := store.Set(ctx, "type:1", []byte{0xc1}, cache.DefaultTTL); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	fetches := 0
	body, hit, err := items.GetOrFetch(ctx, "type:1", func(ctx context.Context) (Representation, error) {
		fetches++
		return Representation{"id": "1", "name": "fresh"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit || fetches != 1 {
		t.Errorf("corrupt entry must refetch, hit=%v fetches=%d", hit, fetches)
	}
	if body["name"] != "fresh" {
		t.Errorf("unexpected body: %v", body)
	}
}
