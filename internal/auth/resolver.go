package auth

import (
	"context"
	"errors"
)

// ErrNoCredential is returned when no access token applies to a call.
var ErrNoCredential = errors.New("no access token available: set META_ACCESS_TOKEN, register a token, or send a per-request token")

// Resolver picks the access token for a call. The order is: per-call override
// in the context, the store's active token, then the fallback token.
type Resolver struct {
	Store    *TokenStore
	Fallback string
}

// NewResolver creates a resolver over store with an optional fallback token.
func NewResolver(store *TokenStore, fallback string) *Resolver {
	return &Resolver{Store: store, Fallback: fallback}
}

// Resolve returns the token for ctx.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if token, ok := TokenFromContext(ctx); ok {
		return token, nil
	}
	if r == nil {
		return "", ErrNoCredential
	}
	if r.Store != nil {
		if _, token, ok := r.Store.Active(); ok && token != "" {
			return token, nil
		}
	}
	if r.Fallback != "" {
		return r.Fallback, nil
	}
	return "", ErrNoCredential
}

// Mask renders a token for logs: the first 10 characters and an ellipsis, or
// a 3 character prefix and "***" for tokens of 10 characters or fewer.
func Mask(token string) string {
	if len(token) > 10 {
		return token[:10] + "..."
	}
	return token[:min(3, len(token))] + "***"
}
