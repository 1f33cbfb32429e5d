package resourcecache

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MapSerializer is the default Serializer implementation. Representations
// are produced by a JSON round-trip of the record, so any struct with JSON
// tags works out of the box. Input validation is rule-based via
// ozzo-validation; a separate rule set may be supplied for partial updates,
// where required-field checks usually need to be relaxed.
type MapSerializer[T any] struct {
	rules        validation.Rule
	partialRules validation.Rule
}

// MapSerializerOption configures a MapSerializer.
type MapSerializerOption[T any] func(*MapSerializer[T])

// WithRules sets the validation rules applied to create and full-update
// input. Typically a validation.Map rule over the expected fields.
func WithRules[T any](rules validation.Rule) MapSerializerOption[T] {
	return func(s *MapSerializer[T]) {
		s.rules = rules
	}
}

// WithPartialRules sets the rules applied to partial-update input. When
// unset, partial input is accepted as-is.
func WithPartialRules[T any](rules validation.Rule) MapSerializerOption[T] {
	return func(s *MapSerializer[T]) {
		s.partialRules = rules
	}
}

// NewMapSerializer builds a MapSerializer with the provided options.
func NewMapSerializer[T any](opts ...MapSerializerOption[T]) *MapSerializer[T] {
	s := &MapSerializer[T]{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ToRepresentation converts a record to its cached wire form.
func (s *MapSerializer[T]) ToRepresentation(record T) (Representation, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("resourcecache: serialize %T: %w", record, err)
	}

	var rep Representation
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("resourcecache: serialize %T: %w", record, err)
	}
	return rep, nil
}

// Validate checks the raw input against the configured rule set and returns
// the validated payload. Failures come back as *ValidationError, before any
// cache or persistence interaction has happened.
func (s *MapSerializer[T]) Validate(raw Representation, partial bool) (Representation, error) {
	if raw == nil {
		raw = Representation{}
	}

	rules := s.rules
	if partial {
		rules = s.partialRules
	}

	if rules != nil {
		if err := validation.Validate(map[string]any(raw), rules); err != nil {
			return nil, &ValidationError{Err: err}
		}
	}

	return raw.clone(), nil
}

var _ Serializer[any] = (*MapSerializer[any])(nil)
