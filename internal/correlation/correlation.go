// Package correlation carries the request correlation ID through contexts and outgoing calls.
package correlation

import (
	"context"

	"github.com/rs/xid"
)

const Header = "X-Correlation-ID"

type ctxKey struct{}

// FromContext retrieves the correlation ID from the context.
func FromContext(ctx context.Context) string {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok {
		return ""
	}
	return id
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func NewID() string {
	return xid.New().String()
}

// Ensure returns ctx with a correlation ID, generating one if none is set.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := NewID()
	return WithID(ctx, id), id
}
