package di

import (
	"github.com/goliatone/go-resource-cache/cache"
	"github.com/goliatone/go-resource-cache/resourcecache"
)

// Container provides dependency injection for the caching components. It
// owns the singleton store and key deriver, so every coordinator built
// through it shares one cache; lifecycle belongs to the application
// bootstrap, not to individual handlers.
type Container struct {
	store  cache.Store
	keys   cache.KeyDeriver
	config cache.Config
}

// NewContainer creates a new DI container with the provided cache
// configuration, wiring the default sturdyc-backed store and key deriver.
func NewContainer(config cache.Config) (*Container, error) {
	store, err := cache.NewStore(config)
	if err != nil {
		return nil, err
	}

	return &Container{
		store:  store,
		keys:   cache.NewKeyDeriver(),
		config: config,
	}, nil
}

// NewContainerWithDefaults creates a new DI container using default
// configuration.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig())
}

// Store returns the singleton store instance.
func (c *Container) Store() cache.Store {
	return c.store
}

// KeyDeriver returns the singleton key deriver instance.
func (c *Container) KeyDeriver() cache.KeyDeriver {
	return c.keys
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewCoordinator builds a coordinator for one resource type over the
// container's shared store and key deriver.
//
// Since Go methods cannot have type parameters, this is provided as a
// package-level function.
func NewCoordinator[T any](
	container *Container,
	resource resourcecache.Resource,
	source resourcecache.DataSource[T],
	serializer resourcecache.Serializer[T],
	opts ...resourcecache.Option[T],
) *resourcecache.Coordinator[T] {
	base := []resourcecache.Option[T]{
		resourcecache.WithKeyDeriver[T](container.keys),
		resourcecache.WithTTL[T](container.config.TTL),
	}
	return resourcecache.New(resource, source, serializer, container.store, append(base, opts...)...)
}
