package chi

import (
	"net/http"
	"strings"
)

const unauthorizedDetail = "Bearer token missing or unknown"

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware returns a middleware that validates the Bearer token.
// If apiToken is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// Auth disabled, pass everything through
		if apiToken == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			const bearerPrefix = "Bearer "
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, bearerPrefix) || auth[len(bearerPrefix):] != apiToken {
				writeError(w, http.StatusUnauthorized, unauthorizedDetail)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
