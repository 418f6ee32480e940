package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"adte.com/adte/meta-ads-mcp/internal/auth"
	"adte.com/adte/meta-ads-mcp/internal/config"
	httpHandlers "adte.com/adte/meta-ads-mcp/internal/http"
	mcpHandlers "adte.com/adte/meta-ads-mcp/internal/mcp"
	"adte.com/adte/meta-ads-mcp/internal/middleware"
	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().String("transport", "", "MCP transport: stdio or http")
	cmd.Flags().String("http-address", "", "listen address for the http transport")
	_ = v.BindPFlag(config.KeyTransport, cmd.Flags().Lookup("transport"))
	_ = v.BindPFlag(config.KeyHttpAddress, cmd.Flags().Lookup("http-address"))
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	// stdout carries protocol frames on the stdio transport.
	logOut := os.Stdout
	if cfg.MCP.Transport == "stdio" {
		logOut = os.Stderr
	}
	logger := newLogger(cfg.Log.Level, logOut)
	slog.SetDefault(logger)

	srv, err := newServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize server", "error", err)
		return err
	}
	defer srv.Journal.Close()

	mcpHandler := mcpHandlers.NewMCPHandler(srv, cfg.Meta.TokenHeader)
	mcpServer := mcpHandlers.NewServer(mcpHandler, version)

	switch cfg.MCP.Transport {
	case "http":
		return startHTTPServer(ctx, srv.Logger, cfg, httpHandlers.NewHTTPHandler(srv, mcpServer, version))
	default:
		logger.Info("Starting MCP server", "transport", "stdio")
		if err := mcpServer.Run(ctx, &mcpSdk.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("MCP server error", "error", err)
			return err
		}
		return nil
	}
}

func startHTTPServer(ctx context.Context, logger *slog.Logger, cfg *config.Config, handler *httpHandlers.HTTPHandler) error {
	apiKeyStore := auth.NewAPIKeyStore()
	if cfg.McpApiKey != "" {
		apiKeyStore.AddKey(cfg.McpApiKey, "principal_env")
	}

	httpServer := &http.Server{
		Addr: cfg.HttpAddress,
		Handler: handler.Routes(httpHandlers.Options{
			TokenHeader:  cfg.Meta.TokenHeader,
			JwtSecretKey: cfg.JwtSecretKey,
			APIKeys:      apiKeyStore,
			Limiter:      middleware.NewRateLimiterStore(10, 20, 10*time.Minute),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("MCP server is running",
			"transport", "http",
			"address", cfg.HttpAddress,
			"mcp_endpoint", "/mcp",
			"auth_enabled", cfg.JwtSecretKey != "" || cfg.McpApiKey != "")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server shutdown", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down http server")
		return httpServer.Shutdown(shutdownCtx)
	}
}
