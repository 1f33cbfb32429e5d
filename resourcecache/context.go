package resourcecache

import (
	"context"
)

type cacheBypassContextKey struct{}

// WithCacheBypass marks the context so every cache read and write is skipped
// for the request; operations serve straight from the data source. Useful as
// an operational escape hatch when cached state is suspect.
func WithCacheBypass(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, cacheBypassContextKey{}, true)
}

func bypassFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	bypass, ok := ctx.Value(cacheBypassContextKey{}).(bool)
	return ok && bypass
}
