package auth

import (
	"context"
)

// Context keys
type contextKey string

const (
	ContextKeyAccessToken contextKey = "access_token"
	ContextKeyClientID    contextKey = "client_id"
)

// WithToken returns a context carrying a per-call access token override.
// An empty token leaves ctx unchanged.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, ContextKeyAccessToken, token)
}

// TokenFromContext retrieves the per-call access token override.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ContextKeyAccessToken).(string)
	return token, ok && token != ""
}

// WithClientID records the authenticated MCP client in ctx.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ContextKeyClientID, clientID)
}

// ClientIDFromContext retrieves the authenticated MCP client.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(ContextKeyClientID).(string)
	return clientID, ok
}
