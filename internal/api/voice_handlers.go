package api

import (
	"log/slog"
	"net/http"

	"github.com/promptline/promptline/internal/metrics"
	"github.com/promptline/promptline/internal/sheetlog"
)

// failsafeDoc is returned when TwiML rendering itself fails. The provider
// must always get a parseable voice-response document or the caller hears
// an application error tone.
const failsafeDoc = `<?xml version="1.0" encoding="UTF-8"?><Response><Say>We are unable to take your call right now. Goodbye.</Say></Response>`

// handleVoice is the inbound IVR entry: play the menu inside a one-digit
// gather and fall through to a no-input message on timeout.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	metrics.CallsAnswered.Inc()

	doc, err := s.ivr.Menu(s.baseURL(r))
	if err != nil {
		slog.Error("voice: twiml render failed", "error", err)
		writeXML(w, failsafeDoc)
		return
	}
	writeXML(w, doc)
}

// handleGather receives the collected digit, logs the keypress to the
// spreadsheet webhook (best effort, never blocking the response), and plays
// the selected recording.
func (s *Server) handleGather(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.Warn("gather: unparseable callback payload", "error", err)
	}

	digits := r.FormValue("Digits")
	metrics.Keypresses.WithLabelValues(metrics.NormalizeDigit(digits)).Inc()

	// The spreadsheet records "NA" for a timed-out gather, matching the
	// existing sheet rows.
	logDigits := digits
	if logDigits == "" {
		logDigits = "NA"
	}
	s.calllog.Log(sheetlog.Record{
		From:    r.FormValue("From"),
		To:      r.FormValue("To"),
		CallSID: r.FormValue("CallSid"),
		Digits:  logDigits,
	})

	doc, err := s.ivr.Keypress(digits)
	if err != nil {
		slog.Error("gather: twiml render failed", "error", err)
		writeXML(w, failsafeDoc)
		return
	}
	writeXML(w, doc)
}
