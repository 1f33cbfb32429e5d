package resourcecache

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a referenced resource as absent from the source of
// truth. It propagates to the caller unchanged and never results in a cache
// write.
var ErrNotFound = errors.New("resourcecache: resource not found")

// ErrUnsupportedOperation is returned by ActionSet.Dispatch for operations
// the set was not composed with.
var ErrUnsupportedOperation = errors.New("resourcecache: unsupported operation")

// ValidationError wraps a failed input validation. It surfaces before any
// cache or persistence interaction.
type ValidationError struct {
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "resourcecache: validation failed: " + e.Err.Error()
}

// Unwrap exposes the underlying validation detail, e.g. ozzo field errors.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CacheUnavailableError records a failed store interaction. It is recovered
// locally: the operation degrades to a direct data-source path and the error
// is logged, never surfaced as a request failure.
type CacheUnavailableError struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface.
func (e *CacheUnavailableError) Error() string {
	return fmt.Sprintf("resourcecache: store %s %q unavailable: %v", e.Op, e.Key, e.Err)
}

// Unwrap exposes the underlying store error.
func (e *CacheUnavailableError) Unwrap() error {
	return e.Err
}
