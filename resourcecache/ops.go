package resourcecache

import (
	"context"
	"fmt"
)

// Operation names one CRUD capability a resource handler can expose.
type Operation string

const (
	OpList          Operation = "list"
	OpRetrieve      Operation = "retrieve"
	OpCreate        Operation = "create"
	OpUpdate        Operation = "update"
	OpPartialUpdate Operation = "partial_update"
	OpDelete        Operation = "delete"
)

// AllOperations returns the full CRUD capability set.
func AllOperations() []Operation {
	return []Operation{OpList, OpRetrieve, OpCreate, OpUpdate, OpPartialUpdate, OpDelete}
}

// ReadOnlyOperations returns the list and retrieve capabilities only.
func ReadOnlyOperations() []Operation {
	return []Operation{OpList, OpRetrieve}
}

// ActionFunc executes one operation against a request. List operations
// return *ListResult, delete returns nil, everything else returns a
// Representation.
type ActionFunc func(ctx context.Context, req Request) (any, error)

// ActionSet composes a handler out of independent per-operation strategies.
// Each enabled operation maps to one ActionFunc; dispatch is by operation
// name. Subsets express read-only or otherwise restricted handlers without
// any inheritance machinery.
type ActionSet struct {
	actions map[Operation]ActionFunc
}

// Actions builds an ActionSet exposing the given operations of this
// coordinator. Unknown operation names are ignored.
func (c *Coordinator[T]) Actions(ops ...Operation) *ActionSet {
	actions := make(map[Operation]ActionFunc, len(ops))

	for _, op := range ops {
		switch op {
		case OpList:
			actions[op] = func(ctx context.Context, req Request) (any, error) {
				return c.List(ctx, req)
			}
		case OpRetrieve:
			actions[op] = func(ctx context.Context, req Request) (any, error) {
				return c.Retrieve(ctx, req)
			}
		case OpCreate:
			actions[op] = func(ctx context.Context, req Request) (any, error) {
				return c.Create(ctx, req)
			}
		case OpUpdate:
			actions[op] = func(ctx context.Context, req Request) (any, error) {
				return c.Update(ctx, req, false)
			}
		case OpPartialUpdate:
			actions[op] = func(ctx context.Context, req Request) (any, error) {
				return c.Update(ctx, req, true)
			}
		case OpDelete:
			actions[op] = func(ctx context.Context, req Request) (any, error) {
				return nil, c.Delete(ctx, req)
			}
		}
	}

	return &ActionSet{actions: actions}
}

// Supports reports whether the set exposes op.
func (a *ActionSet) Supports(op Operation) bool {
	_, ok := a.actions[op]
	return ok
}

// Operations returns the operations this set exposes.
func (a *ActionSet) Operations() []Operation {
	ops := make([]Operation, 0, len(a.actions))
	for op := range a.actions {
		ops = append(ops, op)
	}
	return ops
}

// Dispatch routes the request to the named operation. Operations the set was
// not composed with fail with ErrUnsupportedOperation.
func (a *ActionSet) Dispatch(ctx context.Context, op Operation, req Request) (any, error) {
	action, ok := a.actions[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, op)
	}
	return action(ctx, req)
}
