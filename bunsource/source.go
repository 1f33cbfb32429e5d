// Package bunsource implements resourcecache.DataSource over
// go-repository-bun repositories, so existing bun-backed repositories can
// sit behind the caching overlay unchanged.
package bunsource

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-resource-cache/resourcecache"
)

// DecodeFn builds a domain record from a validated representation.
type DecodeFn[T any] func(data resourcecache.Representation) (T, error)

// Source adapts a repository.Repository[T] to the DataSource contract.
// Query parameters are translated to equality filters over an allowlisted
// set of columns; limit and offset map onto the select query directly.
type Source[T any] struct {
	repo    repository.Repository[T]
	decode  DecodeFn[T]
	filters map[string]bool
}

// Option configures a Source.
type Option[T any] func(*Source[T])

// WithFilterFields allowlists the query parameters accepted as equality
// filters. Parameters outside the list are ignored, never an error.
func WithFilterFields[T any](fields ...string) Option[T] {
	return func(s *Source[T]) {
		for _, field := range fields {
			s.filters[field] = true
		}
	}
}

// WithDecoder overrides how validated input becomes a domain record. The
// default is a JSON round-trip, which works for models with JSON tags.
func WithDecoder[T any](decode DecodeFn[T]) Option[T] {
	return func(s *Source[T]) {
		if decode != nil {
			s.decode = decode
		}
	}
}

// New wraps a base repository as a DataSource.
func New[T any](repo repository.Repository[T], opts ...Option[T]) *Source[T] {
	s := &Source[T]{
		repo:    repo,
		decode:  jsonDecode[T],
		filters: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchOne loads a record by id, mapping missing rows to ErrNotFound.
func (s *Source[T]) FetchOne(ctx context.Context, id string) (T, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, fmt.Errorf("%w: %s", resourcecache.ErrNotFound, id)
		}
		return zero, err
	}
	return record, nil
}

// FetchMany loads the filtered, paginated page plus the total match count.
func (s *Source[T]) FetchMany(ctx context.Context, q resourcecache.Query) ([]T, int, error) {
	return s.repo.List(ctx, s.criteria(q, true)...)
}

// Count returns the number of records matching the filters, ignoring
// pagination.
func (s *Source[T]) Count(ctx context.Context, q resourcecache.Query) (int, error) {
	return s.repo.Count(ctx, s.criteria(q, false)...)
}

// Insert persists a new record built from validated input.
func (s *Source[T]) Insert(ctx context.Context, data resourcecache.Representation) (T, error) {
	record, err := s.decode(data)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.repo.Create(ctx, record)
}

// Update persists the merged representation of an existing record.
func (s *Source[T]) Update(ctx context.Context, id string, data resourcecache.Representation) (T, error) {
	record, err := s.decode(data)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.repo.Update(ctx, record)
}

// Remove deletes the record by id, mapping missing rows to ErrNotFound.
func (s *Source[T]) Remove(ctx context.Context, id string) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", resourcecache.ErrNotFound, id)
		}
		return err
	}
	return s.repo.Delete(ctx, record)
}

// criteria translates a Query into select criteria: one equality filter per
// allowlisted parameter, plus limit/offset when paging is requested.
func (s *Source[T]) criteria(q resourcecache.Query, paged bool) []repository.SelectCriteria {
	var criteria []repository.SelectCriteria

	for field := range s.filters {
		values, ok := q.Params[field]
		if !ok || len(values) == 0 {
			continue
		}
		field, value := field, values[0]
		criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("? = ?", bun.Ident(field), value)
		})
	}

	if paged {
		if q.Limit > 0 {
			limit := q.Limit
			criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
				return sq.Limit(limit)
			})
		}
		if q.Offset > 0 {
			offset := q.Offset
			criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
				return sq.Offset(offset)
			})
		}
	}

	return criteria
}

func jsonDecode[T any](data resourcecache.Representation) (T, error) {
	var record T
	raw, err := json.Marshal(data)
	if err != nil {
		return record, fmt.Errorf("bunsource: decode input: %w", err)
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return record, fmt.Errorf("bunsource: decode input: %w", err)
	}
	return record, nil
}

var _ resourcecache.DataSource[any] = (*Source[any])(nil)
