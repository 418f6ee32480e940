package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"adte.com/adte/meta-ads-mcp/internal/auth"
)

const testSecret = "test-secret"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoClient writes the client id and token override seen by the handler.
var echoClient = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	clientID, _ := auth.ClientIDFromContext(r.Context())
	token, _ := auth.TokenFromContext(r.Context())
	_, _ = w.Write([]byte(clientID + "|" + token))
})

func signToken(t *testing.T, secret, subject string, expires time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func unsignedToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "agent-2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func newAuthenticator(secret string, keys *auth.APIKeyStore, public ...string) *Authenticator {
	a := &Authenticator{APIKeys: keys, Public: public, Logger: discardLogger()}
	if secret != "" {
		a.JWTSecret = []byte(secret)
	}
	return a
}

func TestAuthMiddlewareDisabledWithoutCredentials(t *testing.T) {
	h := newAuthenticator("", auth.NewAPIKeyStore()).Middleware(echoClient)
	rec := serve(h, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareAPIKey(t *testing.T) {
	keys := auth.NewAPIKeyStore()
	keys.AddKey("k1", "agent-1")
	h := newAuthenticator("", keys, "/health").Middleware(echoClient)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("X-API-Key", "k1")
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "agent-1|", rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = serve(h, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "AUTH_INVALID")
	require.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "AUTH_REQUIRED")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareJWT(t *testing.T) {
	h := newAuthenticator(testSecret, auth.NewAPIKeyStore()).Middleware(echoClient)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "agent-2", time.Now().Add(time.Hour)))
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "agent-2|", rec.Body.String())

	cases := map[string]string{
		"wrong secret": "Bearer " + signToken(t, "other", "agent-2", time.Now().Add(time.Hour)),
		"expired":      "Bearer " + signToken(t, testSecret, "agent-2", time.Now().Add(-time.Hour)),
		"no subject":   "Bearer " + signToken(t, testSecret, "", time.Now().Add(time.Hour)),
		"bad scheme":   "Basic abc",
		"empty bearer": "Bearer ",
		"alg none":     "Bearer " + unsignedToken(t),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			req.Header.Set("Authorization", header)
			rec := serve(h, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAccessTokenMiddleware(t *testing.T) {
	h := AccessTokenMiddleware("X-Meta-Access-Token")(echoClient)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("X-Meta-Access-Token", " per-request ")
	require.Equal(t, "|per-request", serve(h, req).Body.String())

	require.Equal(t, "|", serve(h, httptest.NewRequest(http.MethodPost, "/mcp", nil)).Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	store := NewRateLimiterStore(0, 2, time.Minute)
	h := RateLimitMiddleware(store, discardLogger())(echoClient)

	newReq := func(ip string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
		req.RemoteAddr = ip + ":1234"
		return req
	}

	require.Equal(t, http.StatusOK, serve(h, newReq("10.0.0.1")).Code)
	require.Equal(t, http.StatusOK, serve(h, newReq("10.0.0.1")).Code)
	limited := serve(h, newReq("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	require.Contains(t, limited.Body.String(), "RATE_LIMIT_EXCEEDED")

	require.Equal(t, http.StatusOK, serve(h, newReq("10.0.0.2")).Code)

	authed := newReq("10.0.0.1")
	authed = authed.WithContext(auth.WithClientID(authed.Context(), "agent-1"))
	require.Equal(t, http.StatusOK, serve(h, authed).Code)
	require.Equal(t, 3, store.Len())
}

func TestRateLimiterReportsWait(t *testing.T) {
	store := NewRateLimiterStore(1, 1, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ok, _ := store.Allow("k")
	require.True(t, ok)
	ok, wait := store.Allow("k")
	require.False(t, ok)
	require.Equal(t, time.Second, wait)

	now = now.Add(time.Second)
	ok, _ = store.Allow("k")
	require.True(t, ok)
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	store := NewRateLimiterStore(1, 1, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Allow("a")
	store.Allow("b")
	require.Equal(t, 2, store.Len())

	now = now.Add(2 * time.Minute)
	store.Allow("c")
	require.Equal(t, 1, store.Len())
}

func TestLoggingMiddlewareReportsClient(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	keys := auth.NewAPIKeyStore()
	keys.AddKey("k1", "agent-9")

	h := RequestIDMiddleware(LoggingMiddleware(logger)(newAuthenticator("", keys).Middleware(echoClient)))
	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set(APIKeyHeader, "k1")
	serve(h, req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "agent-9", line["client_id"])
	require.Equal(t, float64(http.StatusOK), line["status"])
	require.NotEmpty(t, line["request_id"])
}

func TestRequestIDMiddleware(t *testing.T) {
	h := RequestIDMiddleware(echoClient)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	require.Equal(t, "abc", serve(h, req).Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	h := CORSMiddleware("X-Meta-Access-Token")(echoClient)
	rec := serve(h, httptest.NewRequest(http.MethodOptions, "/mcp", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Meta-Access-Token")
}

func TestClientIPFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	require.Equal(t, "192.0.2.1", clientIPFromRequest(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	require.Equal(t, "203.0.113.9", clientIPFromRequest(req))
}
