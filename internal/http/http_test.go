package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"adte.com/adte/meta-ads-mcp/internal/auth"
	"adte.com/adte/meta-ads-mcp/internal/graph"
	"adte.com/adte/meta-ads-mcp/internal/journal"
	mcpHandlers "adte.com/adte/meta-ads-mcp/internal/mcp"
	"adte.com/adte/meta-ads-mcp/internal/server"
)

func newTestHandler(t *testing.T) *HTTPHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := journal.Open(context.Background(), journal.DefaultDSN, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tokens := auth.NewTokenStore()
	tokens.Register("brand_a", "tokA")
	srv := &server.Server{
		Graph:   graph.NewClient(graph.Options{Credentials: auth.NewResolver(tokens, ""), Logger: logger}),
		Tokens:  tokens,
		Journal: store,
		Logger:  logger,
	}
	mcpServer := mcpHandlers.NewServer(mcpHandlers.NewMCPHandler(srv, ""), "test")
	return NewHTTPHandler(srv, mcpServer, "test")
}

func TestRootListsTokensWithoutSecrets(t *testing.T) {
	h := newTestHandler(t)
	keys := auth.NewAPIKeyStore()
	keys.AddKey("k1", "agent")
	routes := h.Routes(Options{TokenHeader: mcpHandlers.DefaultTokenHeader, APIKeys: keys})

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "tokA")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "test", body["version"])
	require.Equal(t, "/mcp", body["mcp_endpoint"])
}

func TestHealthReportsUsage(t *testing.T) {
	routes := newTestHandler(t).Routes(Options{TokenHeader: mcpHandlers.DefaultTokenHeader})

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"healthy"`)
	require.Contains(t, rec.Body.String(), "throttle_delay_ms")
}

func TestMCPEndpointRequiresAuthWhenConfigured(t *testing.T) {
	keys := auth.NewAPIKeyStore()
	keys.AddKey("k1", "agent")
	routes := newTestHandler(t).Routes(Options{TokenHeader: mcpHandlers.DefaultTokenHeader, APIKeys: keys})

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownRouteReturnsJSON(t *testing.T) {
	routes := newTestHandler(t).Routes(Options{TokenHeader: mcpHandlers.DefaultTokenHeader})

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
