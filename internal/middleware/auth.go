package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"adte.com/adte/meta-ads-mcp/internal/auth"
)

// JWTClaims are the claims accepted from MCP clients. The subject is the
// client id.
type JWTClaims struct {
	jwt.RegisteredClaims
}

// Authenticator identifies MCP clients of the HTTP transport by API key or by
// an HS256 bearer JWT. With neither configured every request passes.
type Authenticator struct {
	APIKeys   *auth.APIKeyStore
	JWTSecret []byte
	// Public paths pass through unauthenticated.
	Public []string
	Logger *slog.Logger
}

type authFailure struct {
	code    string
	message string
}

func (a *Authenticator) enabled() bool {
	return len(a.JWTSecret) > 0 || a.APIKeys.Len() > 0
}

// identify returns the client id of r.
func (a *Authenticator) identify(r *http.Request) (string, *authFailure) {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		if clientID, ok := a.APIKeys.ClientID(key); ok {
			return clientID, nil
		}
		return "", &authFailure{"AUTH_INVALID", "Invalid or expired credentials"}
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", &authFailure{"AUTH_REQUIRED", "Authentication required for this operation"}
	}
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
		return "", &authFailure{"AUTH_INVALID", "Invalid authorization header format"}
	}
	if len(a.JWTSecret) == 0 {
		return "", &authFailure{"AUTH_INVALID", "Bearer tokens are not accepted by this server"}
	}

	claims := &JWTClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims,
		func(*jwt.Token) (any, error) { return a.JWTSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		a.Logger.Debug("JWT validation failed", "error", err, "path", r.URL.Path)
		return "", &authFailure{"AUTH_INVALID", "Invalid or expired credentials"}
	}
	if claims.Subject == "" {
		return "", &authFailure{"AUTH_INVALID", "Token has no subject"}
	}
	return claims.Subject, nil
}

// Middleware stores the authenticated client id in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	public := make(map[string]struct{}, len(a.Public))
	for _, p := range a.Public {
		public[p] = struct{}{}
	}
	enabled := a.enabled()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !enabled {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := public[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		clientID, failure := a.identify(r)
		if failure != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="meta-ads-mcp"`)
			writeError(w, http.StatusUnauthorized, failure.code, failure.message)
			return
		}
		noteClientID(r.Context(), clientID)
		next.ServeHTTP(w, r.WithContext(auth.WithClientID(r.Context(), clientID)))
	})
}
