package session

import "context"

type recordContextKey struct{}

// WithRecord adds a verified session record to the context
func WithRecord(ctx context.Context, rec Record) context.Context {
	return context.WithValue(ctx, recordContextKey{}, rec)
}

// RecordFromContext retrieves a verified session record from the context
func RecordFromContext(ctx context.Context) (Record, bool) {
	rec, ok := ctx.Value(recordContextKey{}).(Record)
	return rec, ok
}
