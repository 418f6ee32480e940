package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adte.com/adte/meta-ads-mcp/internal/config"
)

func TestNewTokenStoreHonorsDefault(t *testing.T) {
	store := newTokenStore(&config.MetaConfig{
		Tokens:       map[string]string{"zeta": "z", "alpha": "a"},
		DefaultToken: "zeta",
	})
	require.Equal(t, "zeta", store.List().Active)

	store = newTokenStore(&config.MetaConfig{Tokens: map[string]string{"zeta": "z", "alpha": "a"}})
	require.Equal(t, "alpha", store.List().Active)
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", &buf)
	require.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	require.True(t, newLogger("trace", io.Discard).Enabled(context.Background(), slog.LevelDebug-4))
}

func testConfig(baseURL string, tokens map[string]string, fallback string) *config.Config {
	return &config.Config{
		Meta: &config.MetaConfig{
			AccessToken:    fallback,
			Tokens:         tokens,
			BaseURL:        baseURL,
			APIVersion:     "v22.0",
			MaxRetries:     0,
			RetryBaseDelay: time.Millisecond,
			RequestTimeout: 5 * time.Second,
		},
		Journal: &config.JournalConfig{DSN: ":memory:"},
		Log:     &config.LogConfig{Level: "error"},
		MCP:     &config.MCPConfig{Transport: "stdio", Enabled: true},
	}
}

func TestCheckTokensReportsEachToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") == "expired-token" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Session has expired","type":"OAuthException","code":190}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"77","name":"Agency User"}`))
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL, map[string]string{"good": "good-token-1234", "stale": "expired-token"}, "fallback-token-999")
	srv, err := newServer(context.Background(), cfg, newLogger("error", io.Discard))
	require.NoError(t, err)
	defer srv.Journal.Close()

	var out bytes.Buffer
	failed := checkTokens(context.Background(), srv, cfg.Meta.AccessToken, &out)
	require.Equal(t, 1, failed)

	rendered := out.String()
	require.Contains(t, rendered, "Agency User (77)")
	require.Contains(t, rendered, "AUTH_EXPIRED")
	require.Contains(t, rendered, "(fallback)")
	require.Contains(t, rendered, "good-token...")
	require.NotContains(t, rendered, "good-token-1234")
	require.Equal(t, 3, strings.Count(rendered, "(77)")+strings.Count(rendered, "AUTH_EXPIRED"))
}

func TestCheckTokensWithoutTokens(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1", nil, "")
	srv, err := newServer(context.Background(), cfg, newLogger("error", io.Discard))
	require.NoError(t, err)
	defer srv.Journal.Close()

	var out bytes.Buffer
	require.Zero(t, checkTokens(context.Background(), srv, "", &out))
	require.Contains(t, out.String(), "no tokens configured")
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, "meta-ads-mcp dev\n", out.String())
}
