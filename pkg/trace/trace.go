package trace

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// New returns a fresh trace identifier.
func New() string { return uuid.NewString() }

// WithContext attaches a trace id to the context.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the trace id, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
