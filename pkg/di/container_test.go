package di

import (
	"context"
	"testing"

	"github.com/goliatone/go-resource-cache/cache"
	"github.com/goliatone/go-resource-cache/pkg/testsupport"
	"github.com/goliatone/go-resource-cache/resourcecache"
)

func TestNewContainer(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults failed: %v", err)
	}

	if container.Store() == nil {
		t.Error("expected a store")
	}
	if container.KeyDeriver() == nil {
		t.Error("expected a key deriver")
	}
	if container.Config().TTL != cache.DefaultTTL {
		t.Errorf("expected the default TTL, got %v", container.Config().TTL)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.Capacity = 0

	if _, err := NewContainer(cfg); err == nil {
		t.Fatal("expected an error for an invalid config")
	}
}

func TestContainer_SingletonsShared(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults failed: %v", err)
	}

	if container.Store() != container.Store() {
		t.Error("the store is a singleton")
	}
	if container.KeyDeriver() != container.KeyDeriver() {
		t.Error("the key deriver is a singleton")
	}
}

func TestNewCoordinator_EndToEnd(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults failed: %v", err)
	}

	widgets := testsupport.NewWidgets(3)
	source := testsupport.NewWidgetSource(widgets...)

	c := NewCoordinator(
		container,
		resourcecache.Resource{Name: "Widget"},
		source,
		resourcecache.NewMapSerializer[testsupport.Widget](),
	)

	ctx := context.Background()
	req := resourcecache.Request{Path: "/widgets"}

	first, err := c.List(ctx, req)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if first.FromCache || len(first.Items) != 3 {
		t.Fatalf("expected a 3-item miss, hit=%v items=%d", first.FromCache, len(first.Items))
	}

	second, err := c.List(ctx, req)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !second.FromCache {
		t.Error("second list must be served from the container's store")
	}
	if source.Calls("FetchMany") != 1 {
		t.Errorf("expected 1 source fetch, got %d", source.Calls("FetchMany"))
	}

	body, err := c.Retrieve(ctx, resourcecache.Request{ID: widgets[0].ID})
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if body["name"] != widgets[0].Name {
		t.Errorf("unexpected body: %v", body)
	}
	if source.Calls("FetchOne") != 0 {
		t.Errorf("list must have populated the item entry, got %d source fetches", source.Calls("FetchOne"))
	}
}

func TestNewCoordinator_CoordinatorsShareTheStore(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults failed: %v", err)
	}

	widgets := testsupport.NewWidgets(1)
	source := testsupport.NewWidgetSource(widgets...)

	a := NewCoordinator(container, resourcecache.Resource{Name: "Widget"}, source, resourcecache.NewMapSerializer[testsupport.Widget]())
	b := NewCoordinator(container, resourcecache.Resource{Name: "Widget"}, source, resourcecache.NewMapSerializer[testsupport.Widget]())

	ctx := context.Background()

	if _, err := a.Retrieve(ctx, resourcecache.Request{ID: widgets[0].ID}); err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if _, err := b.Retrieve(ctx, resourcecache.Request{ID: widgets[0].ID}); err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if source.Calls("FetchOne") != 1 {
		t.Errorf("coordinators over one container share entries; expected 1 fetch, got %d", source.Calls("FetchOne"))
	}
}
