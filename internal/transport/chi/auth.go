package chi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type sessionKey struct{}

// sessionIDHeader lets a caller scope result storage below the API key, e.g.
// one browser session per key.
const sessionIDHeader = "X-Session-ID"

// BearerAuthMiddleware returns a middleware that validates Bearer tokens and
// stores the caller's session identity in the request context.
// If apiKeys is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			// Auth disabled — session comes from the header alone.
			if len(validKeys) == 0 {
				next.ServeHTTP(w, r.WithContext(
					contextWithSession(r.Context(), sessionFromRequest(r, ""))))
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					codeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			token := auth[len(bearerPrefix):]
			if _, ok := validKeys[token]; !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r.WithContext(
				contextWithSession(r.Context(), sessionFromRequest(r, token))))
		})
	}
}

func contextWithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFromContext returns the caller's session identity, or "default" when
// the middleware did not run (tests, exempt paths).
func SessionFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(sessionKey{}).(string); ok && s != "" {
		return s
	}
	return "default"
}

// sessionFromRequest derives the session identity: an explicit X-Session-ID
// header wins, otherwise a fingerprint of the API key. The key itself never
// becomes a storage key.
func sessionFromRequest(r *http.Request, token string) string {
	if sid := strings.TrimSpace(r.Header.Get(sessionIDHeader)); sid != "" {
		return sid
	}
	if token == "" {
		return "default"
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
