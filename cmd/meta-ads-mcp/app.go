package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"adte.com/adte/meta-ads-mcp/internal/auth"
	"adte.com/adte/meta-ads-mcp/internal/config"
	"adte.com/adte/meta-ads-mcp/internal/graph"
	"adte.com/adte/meta-ads-mcp/internal/journal"
	"adte.com/adte/meta-ads-mcp/internal/server"
)

func newLogger(level string, out io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "trace":
		logLevel = slog.LevelDebug - 4
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	}))
}

// newTokenStore seeds the registry from configuration. Names are registered in
// sorted order so the first name is active unless a default is configured.
func newTokenStore(cfg *config.MetaConfig) *auth.TokenStore {
	store := auth.NewTokenStore()
	names := make([]string, 0, len(cfg.Tokens))
	for name := range cfg.Tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		store.Register(name, cfg.Tokens[name])
	}
	if cfg.DefaultToken != "" {
		store.SetActive(cfg.DefaultToken)
	}
	return store
}

// newServer wires the token registry, Graph client and journal.
func newServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*server.Server, error) {
	tokens := newTokenStore(cfg.Meta)

	store, err := journal.Open(ctx, cfg.Journal.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	client := graph.NewClient(graph.Options{
		BaseURL:     cfg.Meta.BaseURL,
		Version:     cfg.Meta.APIVersion,
		HTTPClient:  &http.Client{},
		Credentials: auth.NewResolver(tokens, cfg.Meta.AccessToken),
		Usage:       graph.NewUsageTracker(),
		MaxRetries:  cfg.Meta.MaxRetries,
		BaseDelay:   cfg.Meta.RetryBaseDelay,
		Timeout:     cfg.Meta.RequestTimeout,
		Logger:      logger,
		Observer:    store,
	})

	list := tokens.List()
	logger.Info("graph client configured",
		"base_url", cfg.Meta.BaseURL,
		"version", cfg.Meta.APIVersion,
		"tokens", list.Available,
		"active_token", list.Active,
		"fallback_token", cfg.Meta.AccessToken != "")

	return &server.Server{
		Graph:   client,
		Tokens:  tokens,
		Journal: store,
		Logger:  logger,
	}, nil
}
