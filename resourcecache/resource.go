package resourcecache

import (
	"github.com/jinzhu/inflection"
)

// DefaultIDField is the representation field treated as the item identifier
// when a resource does not configure its own.
const DefaultIDField = "id"

// Resource describes one cached resource type. The zero value is not usable;
// Name must be set.
type Resource struct {
	// Name is the logical type name, e.g. "User" or "BillingAccount".
	// It is normalized to snake_case before being fingerprinted, so "User"
	// and "user" share a cache namespace.
	Name string

	// IDField names the representation field used as the cache-item
	// identifier. Defaults to "id".
	IDField string

	// ScopedByCaller marks collections whose membership depends on the
	// calling identity. Page-index entries for scoped resources fold the
	// caller id into the request signature.
	ScopedByCaller bool

	// Paginated marks resources served in pages. On a collection cache hit
	// the total is re-counted from the data source while the page bodies are
	// served from cache.
	Paginated bool
}

// TypeName returns the normalized type name used for key derivation.
func (r Resource) TypeName() string {
	return toSnake(r.Name)
}

// IDFieldName returns the configured identifier field, or the default.
func (r Resource) IDFieldName() string {
	if r.IDField == "" {
		return DefaultIDField
	}
	return r.IDField
}

// CollectionPath returns the conventional URL path for the resource
// collection, e.g. "/users" for a resource named "User". Transports are free
// to ignore it.
func (r Resource) CollectionPath() string {
	return "/" + inflection.Plural(r.TypeName())
}
