package endpoint

import "context"

type contextKey int

const quotaKey contextKey = iota

// WithKey returns a context whose calls are charged to key by an endpoint
// quota, for example a user ID.
func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, quotaKey, key)
}

// KeyFromContext returns the quota key carried by ctx.
// Returns an empty string, shared by every keyless call, if none is present.
func KeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(quotaKey).(string)
	return key
}
