// Package sheetlog delivers keypress events to an external spreadsheet
// webhook (a Google Apps Script endpoint). Delivery is best effort: one
// attempt, bounded timeout, failures are logged and counted but never
// surfaced to the caller-facing response.
package sheetlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/promptline/promptline/internal/metrics"
)

// deliveryTimeout bounds the single delivery attempt.
const deliveryTimeout = 3 * time.Second

// timestampLayout matches the spreadsheet's expected column format,
// e.g. "2025-10-20 03:04:05 PM".
const timestampLayout = "2006-01-02 03:04:05 PM"

// Record is one keypress event.
type Record struct {
	From    string
	To      string
	CallSID string
	Digits  string
}

// payload is the wire shape the Apps Script expects.
type payload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	CallSID   string `json:"callsid"`
	Digits    string `json:"digits"`
	Timestamp string `json:"timestamp"`
}

// Logger posts records to the configured webhook.
type Logger struct {
	httpClient *http.Client
	webhookURL string
	loc        *time.Location
	now        func() time.Time
}

// NewLogger creates a Logger. An empty webhookURL disables delivery; Log
// becomes a no-op. Timestamps are rendered in loc.
func NewLogger(webhookURL string, loc *time.Location) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{
		httpClient: &http.Client{Timeout: deliveryTimeout},
		webhookURL: webhookURL,
		loc:        loc,
		now:        time.Now,
	}
}

// Enabled reports whether a webhook URL is configured.
func (l *Logger) Enabled() bool {
	return l.webhookURL != ""
}

// Log dispatches a single delivery attempt in the background and returns
// immediately. The webhook never blocks or fails the voice response.
func (l *Logger) Log(rec Record) {
	if !l.Enabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()

		if err := l.post(ctx, rec); err != nil {
			metrics.SheetLogDeliveries.WithLabelValues("error").Inc()
			slog.Warn("sheet log delivery failed",
				"call_sid", rec.CallSID,
				"error", err,
			)
			return
		}
		metrics.SheetLogDeliveries.WithLabelValues("ok").Inc()
	}()
}

// post performs the webhook POST synchronously. Split out so tests can
// exercise delivery without racing the goroutine in Log.
func (l *Logger) post(ctx context.Context, rec Record) error {
	body, err := json.Marshal(payload{
		From:      rec.From,
		To:        rec.To,
		CallSID:   rec.CallSID,
		Digits:    rec.Digits,
		Timestamp: l.now().In(l.loc).Format(timestampLayout),
	})
	if err != nil {
		return fmt.Errorf("sheetlog: marshalling record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sheetlog: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheetlog: sending request: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sheetlog: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
