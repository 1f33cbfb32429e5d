package resourcecache

import (
	"context"
	"net/url"
	"strconv"
)

// Representation is the wire-shaped form of one resource: a mapping of field
// names to serialized values. It is what gets cached, never the domain object
// itself.
type Representation map[string]any

func (r Representation) clone() Representation {
	out := make(Representation, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Query carries the filter and pagination parameters of a collection fetch.
// Params holds the raw query parameters; how they map to filters is the data
// source's business.
type Query struct {
	Params url.Values
	Limit  int
	Offset int
}

// Request is the transport-neutral view of one inbound operation request.
type Request struct {
	// Path is the request path, e.g. "/users".
	Path string

	// RawQuery is the query string exactly as received, without the leading
	// "?". It participates verbatim in the request signature: parameter
	// reordering yields a distinct signature.
	RawQuery string

	// ID is the target resource identifier for retrieve/update/delete.
	ID string

	// Body is the parsed input payload for create/update.
	Body Representation

	// CallerID identifies the authenticated caller, when known. Empty means
	// anonymous.
	CallerID string
}

// FullPath returns the path plus query string, the input to request
// signature derivation.
func (r Request) FullPath() string {
	if r.RawQuery == "" {
		return r.Path
	}
	return r.Path + "?" + r.RawQuery
}

// query parses the raw query string into the Query handed to the data
// source. Unparseable query strings degrade to an empty parameter set; the
// request signature still distinguishes them.
func (r Request) query() Query {
	params, err := url.ParseQuery(r.RawQuery)
	if err != nil {
		params = url.Values{}
	}
	q := Query{Params: params}
	q.Limit = intParam(params, "limit")
	q.Offset = intParam(params, "offset")
	return q
}

func intParam(params url.Values, name string) int {
	raw := params.Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// DataSource loads and persists domain records of one resource type. It is
// the source of truth the cache falls back to; implementations decide how
// Query parameters translate to filtering.
//
// FetchOne and Remove fail with ErrNotFound when the record is absent.
// FetchMany returns the ordered page along with the total count of matching
// records.
type DataSource[T any] interface {
	FetchOne(ctx context.Context, id string) (T, error)
	FetchMany(ctx context.Context, q Query) ([]T, int, error)
	Count(ctx context.Context, q Query) (int, error)
	Insert(ctx context.Context, data Representation) (T, error)
	Update(ctx context.Context, id string, data Representation) (T, error)
	Remove(ctx context.Context, id string) error
}

// Serializer converts between domain records and their cached wire
// representation, and validates inbound payloads.
//
// Validate runs before any persistence or cache interaction; it fails with a
// *ValidationError for malformed input. When partial is true the input may be
// sparse (partial update semantics).
type Serializer[T any] interface {
	ToRepresentation(record T) (Representation, error)
	Validate(raw Representation, partial bool) (Representation, error)
}

// IdentityResolver resolves the calling identity for identity-scoped
// collections. An empty string means anonymous; anonymous callers share one
// cache scope.
type IdentityResolver interface {
	CallerID(req Request) string
}

// RequestIdentity is the default resolver: it trusts the CallerID the
// transport placed on the request.
type RequestIdentity struct{}

// CallerID implements IdentityResolver.
func (RequestIdentity) CallerID(req Request) string {
	return req.CallerID
}
