package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"adte.com/adte/meta-ads-mcp/internal/api"
	"adte.com/adte/meta-ads-mcp/internal/auth"
	"adte.com/adte/meta-ads-mcp/internal/middleware"
	"adte.com/adte/meta-ads-mcp/internal/server"
	"github.com/go-chi/chi/v5"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const maxBodyBytes = 1 << 20

// Options configures the HTTP transport.
type Options struct {
	TokenHeader  string
	JwtSecretKey string
	APIKeys      *auth.APIKeyStore
	Limiter      *middleware.RateLimiterStore
}

// HTTPHandler wraps the server and provides HTTP handlers
type HTTPHandler struct {
	srv     *server.Server
	mcp     http.Handler
	logger  *slog.Logger
	version string
}

// NewHTTPHandler creates a new HTTP handler serving mcpServer over the
// streamable HTTP transport.
func NewHTTPHandler(srv *server.Server, mcpServer *sdk.Server, version string) *HTTPHandler {
	return &HTTPHandler{
		srv: srv,
		mcp: sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
			return mcpServer
		}, nil),
		logger:  srv.Logger,
		version: version,
	}
}

// Routes builds the router with the middleware chain applied.
func (h *HTTPHandler) Routes(opts Options) http.Handler {
	if opts.APIKeys == nil {
		opts.APIKeys = auth.NewAPIKeyStore()
	}
	if opts.Limiter == nil {
		opts.Limiter = middleware.NewRateLimiterStore(10, 20, 10*time.Minute)
	}

	// Discovery and health stay reachable without credentials.
	publicPaths := []string{"/", "/health"}

	authn := &middleware.Authenticator{
		APIKeys: opts.APIKeys,
		Public:  publicPaths,
		Logger:  h.logger,
	}
	if opts.JwtSecretKey != "" {
		authn.JWTSecret = []byte(opts.JwtSecretKey)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(h.logger),
		middleware.CORSMiddleware(opts.TokenHeader),
		authn.Middleware,
		middleware.RateLimitMiddleware(opts.Limiter, h.logger),
		middleware.LimitBodySize(maxBodyBytes),
		middleware.AccessTokenMiddleware(opts.TokenHeader),
	)

	r.Get("/", h.RootHandler)
	r.Get("/health", h.HealthHandler)
	r.Handle("/mcp", h.mcp)
	r.Handle("/mcp/", h.mcp)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.sendErrorResponse(w, "Not found", "NOT_FOUND", http.StatusNotFound)
	})
	return r
}

// RootHandler describes the server for discovery.
func (h *HTTPHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"name":         "meta-ads-mcp",
		"version":      h.version,
		"mcp_endpoint": "/mcp",
		"tokens":       h.srv.ListTokens(),
	}); err != nil {
		h.logger.Error("encode root response failed", "error", err)
	}
}

func (h *HTTPHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()

	if h.srv.Journal != nil {
		if err := h.srv.Journal.DB.PingContext(ctx); err != nil {
			h.sendErrorResponse(w, "journal unavailable", "JOURNAL_UNAVAILABLE", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status": "healthy",
		"usage":  h.srv.Usage(),
	}); err != nil {
		h.logger.Error("encode health response failed", "error", err)
	}
}

// Sends a structured error response
func (h *HTTPHandler) sendErrorResponse(w http.ResponseWriter, message string, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(api.ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		h.logger.Error("encode error response failed", "code", code, "error", err)
	}
}
