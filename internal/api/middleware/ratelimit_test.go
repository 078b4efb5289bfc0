package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimitConfig(r rate.Limit, burst int) RateLimitConfig {
	return RateLimitConfig{
		Rate:            r,
		Burst:           burst,
		CleanupInterval: time.Hour,
		MaxAge:          time.Hour,
	}
}

func TestAllowWithinBurst(t *testing.T) {
	rl := NewIPRateLimiter(testRateLimitConfig(1, 3))
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("request beyond burst should be denied")
	}
}

func TestAllowPerIPIsolation(t *testing.T) {
	rl := NewIPRateLimiter(testRateLimitConfig(1, 1))
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request from first IP should be allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("first request from second IP should be allowed")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewIPRateLimiter(testRateLimitConfig(1, 1))
	defer rl.Stop()

	h := RateLimit(rl)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/dial", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestCleanupEvictsStaleEntries(t *testing.T) {
	rl := NewIPRateLimiter(testRateLimitConfig(1, 1))
	defer rl.Stop()

	rl.Allow("10.0.0.1")

	rl.mu.Lock()
	rl.entries["10.0.0.1"].lastSeen = time.Now().Add(-2 * time.Hour)
	rl.mu.Unlock()

	rl.cleanup()

	rl.mu.Lock()
	_, ok := rl.entries["10.0.0.1"]
	rl.mu.Unlock()
	if ok {
		t.Error("stale entry should have been evicted")
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"10.0.0.1:1234", "10.0.0.1"},
		{"[::1]:8080", "::1"},
		{"10.0.0.1", "10.0.0.1"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := extractIP(req); got != tt.want {
			t.Errorf("extractIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
