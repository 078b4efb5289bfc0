package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// tokenHeaderName is the preferred carrier for the admin shared secret.
const tokenHeaderName = "X-Admin-Token"

// tokenQueryParam lets the console link carry the secret, since the admin
// page is opened from a plain browser URL.
const tokenQueryParam = "token"

// errEnvelope matches the API's JSON error shape. Defined here rather than
// imported from the api package to avoid a circular dependency.
type errEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// TokenFromRequest extracts the admin token from the X-Admin-Token header,
// an Authorization bearer header, or the token query parameter, in that
// order of preference.
func TokenFromRequest(r *http.Request) string {
	if tok := r.Header.Get(tokenHeaderName); tok != "" {
		return tok
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get(tokenQueryParam)
}

// RequireToken returns middleware gating admin routes behind a shared
// secret. An empty configured secret disables the routes entirely (500)
// rather than leaving them open. A missing or wrong token is a 403; the two
// cases are indistinguishable to the client.
func RequireToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeAuthError(w, http.StatusInternalServerError, "admin token not configured")
				return
			}

			got := TokenFromRequest(r)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				slog.Warn("admin auth rejected",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError writes a JSON error matching the API envelope format.
func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errEnvelope{Error: msg}) //nolint:errcheck
}
