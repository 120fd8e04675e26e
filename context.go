package estore

import (
	"context"
)

// contextKeyType is an unexported type so that the context key never
// collides with any other context keys.
type contextKeyType struct{}

// contextKey is the key used for the context to store the Store object.
var contextKey = contextKeyType{}

// WithContext inserts a Store into the context and is retrievable using
// FromContext().
func WithContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey, s)
}

// FromContext extracts a Store from the context. An error is returned if
// the context does not contain a Store object.
func FromContext(ctx context.Context) (*Store, error) {
	s, _ := ctx.Value(contextKey).(*Store)
	if s == nil {
		return nil, ErrStoreNotFoundInContext
	}
	return s, nil
}
