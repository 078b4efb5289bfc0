// Package api wires the HTTP surface: telephony webhooks, the dialer API,
// and the token-gated admin console.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/promptline/promptline/internal/api/middleware"
	"github.com/promptline/promptline/internal/audio"
	"github.com/promptline/promptline/internal/config"
	"github.com/promptline/promptline/internal/dialer"
	"github.com/promptline/promptline/internal/ivr"
	"github.com/promptline/promptline/internal/sheetlog"
	"github.com/promptline/promptline/internal/storage"
)

// DialService places outbound calls and lists account numbers.
type DialService interface {
	PlaceCalls(ctx context.Context, from string, to []string, callbackURL string) (dialer.Result, error)
	FromNumbers(ctx context.Context) ([]dialer.OwnedNumber, error)
}

// UploadSigner issues presigned upload grants.
type UploadSigner interface {
	SignUpload(ctx context.Context, key, contentType string) (storage.UploadGrant, error)
}

// KeypressLogger records keypress events, best effort.
type KeypressLogger interface {
	Log(rec sheetlog.Record)
}

// Server holds HTTP handler dependencies and the chi router.
type Server struct {
	router  *chi.Mux
	cfg     *config.Config
	audio   *audio.Set
	ivr     *ivr.Responder
	dial    DialService
	signer  UploadSigner
	calllog KeypressLogger
}

// NewServer creates the HTTP handler with all routes mounted.
func NewServer(cfg *config.Config, set *audio.Set, dial DialService, signer UploadSigner, calllog KeypressLogger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		cfg:     cfg,
		audio:   set,
		ivr:     ivr.NewResponder(set),
		dial:    dial,
		signer:  signer,
		calllog: calllog,
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes configures all middleware and mounts all route groups.
func (s *Server) routes() {
	r := s.router

	// Global middleware stack.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders(false))
	if origins := middleware.ParseCORSOrigins(s.cfg.CORSOrigins); len(origins) > 0 {
		r.Use(middleware.CORS(origins))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Telephony webhooks. Twilio sends POST by default but both methods are
	// accepted, matching the provider console's configurable setting.
	webhookLimit := middleware.RateLimit(middleware.NewIPRateLimiter(middleware.WebhookRateLimitConfig()))
	r.Group(func(r chi.Router) {
		r.Use(webhookLimit)
		r.Get("/voice", s.handleVoice)
		r.Post("/voice", s.handleVoice)
		r.Get("/gather", s.handleGather)
		r.Post("/gather", s.handleGather)
	})

	// Dialer API.
	adminLimit := middleware.RateLimit(middleware.NewIPRateLimiter(middleware.AdminRateLimitConfig()))
	r.Group(func(r chi.Router) {
		r.Use(adminLimit)
		r.Post("/dial", s.handleDial)
	})

	// Admin surface, token gated.
	r.Group(func(r chi.Router) {
		r.Use(adminLimit)
		r.Use(middleware.RequireToken(s.cfg.AdminToken))
		r.Get("/admin", s.handleAdminConsole)
		r.Get("/twilio/from-numbers", s.handleFromNumbers)
		r.Get("/sign-upload", s.handleSignUpload)
		r.Post("/set-audio", s.handleSetAudio)
	})

	// The standalone dialer page from earlier deployments is gone; the
	// admin console is the single current surface.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusFound)
	})
}

// handleHealth returns a bare liveness probe. Unauthenticated.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok")) //nolint:errcheck
}

// baseURL computes the absolute base URL Twilio callbacks should target.
// The configured public base URL wins; otherwise it is derived from the
// incoming request the way the provider saw it.
func (s *Server) baseURL(r *http.Request) string {
	if s.cfg.PublicBaseURL != "" {
		return s.cfg.PublicBaseURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + strings.TrimSuffix(r.Host, "/")
}
