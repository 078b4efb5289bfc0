package sheetlog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPostPayload(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("invalid json body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	l := NewLogger(srv.URL, loc)
	l.now = func() time.Time {
		return time.Date(2025, 10, 20, 18, 30, 45, 0, time.UTC)
	}

	rec := Record{From: "+14155550123", To: "+19998887777", CallSID: "CA123", Digits: "1"}
	if err := l.post(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.From != rec.From || got.To != rec.To || got.CallSID != rec.CallSID || got.Digits != rec.Digits {
		t.Errorf("payload = %+v", got)
	}
	// 18:30:45 UTC is 02:30:45 PM Eastern (EDT).
	if got.Timestamp != "2025-10-20 02:30:45 PM" {
		t.Errorf("timestamp = %q", got.Timestamp)
	}
}

func TestPostNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := NewLogger(srv.URL, time.UTC)
	if err := l.post(context.Background(), Record{CallSID: "CA1"}); err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
}

func TestLogDisabledIsNoop(t *testing.T) {
	l := NewLogger("", time.UTC)
	if l.Enabled() {
		t.Error("Enabled() = true with empty webhook URL")
	}
	// Must not panic or block.
	l.Log(Record{CallSID: "CA1"})
}

func TestLogAsyncDelivers(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(done)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	l := NewLogger(srv.URL, time.UTC)
	l.Log(Record{CallSID: "CA1", Digits: "3"})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was never called")
	}
}
