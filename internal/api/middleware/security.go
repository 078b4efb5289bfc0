package middleware

import "net/http"

// SecurityHeaders returns middleware that sets HTTP security headers on
// every response. When tlsEnabled is true, Strict-Transport-Security (HSTS)
// is included; it is omitted on plain HTTP to avoid browsers caching an
// HSTS policy for a host that does not support TLS.
func SecurityHeaders(tlsEnabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			// Prevent clickjacking.
			h.Set("X-Frame-Options", "DENY")

			// Prevent MIME type sniffing.
			h.Set("X-Content-Type-Options", "nosniff")

			// Disable legacy XSS filter — CSP supersedes it and the old
			// filter can introduce vulnerabilities.
			h.Set("X-XSS-Protection", "0")

			// Limit referrer information leaked to other origins.
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Content Security Policy for the admin console. The console
			// is a single embedded page with an inline script; media and
			// form posts go straight to the audio CDN / upload bucket, so
			// those directives allow any https origin.
			h.Set("Content-Security-Policy",
				"default-src 'self'; "+
					"script-src 'self' 'unsafe-inline'; "+
					"style-src 'self' 'unsafe-inline'; "+
					"img-src 'self' data:; "+
					"media-src https:; "+
					"connect-src 'self' https:; "+
					"form-action 'self' https:; "+
					"frame-ancestors 'none'; "+
					"base-uri 'self'")

			// Restrict access to powerful browser features.
			h.Set("Permissions-Policy",
				"camera=(), microphone=(), geolocation=(), payment=()")

			// HSTS — only sent when serving over TLS.
			if tlsEnabled {
				h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
