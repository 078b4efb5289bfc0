package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/promptline/promptline/internal/dialer"
	"github.com/promptline/promptline/internal/phone"
)

// toField accepts the destination list either as a JSON array or as one
// delimited string, the two shapes the console and curl users send.
type toField []string

func (t *toField) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*t = list
		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.New("to must be a string or an array of strings")
	}
	*t = phone.SplitRecipients(raw)
	return nil
}

// dialRequest is the JSON body for POST /dial.
type dialRequest struct {
	From string  `json:"from"`
	To   toField `json:"to"`
}

// dialResponse is the JSON reply for POST /dial. Failed carries
// per-destination provider errors so partial success stays observable.
type dialResponse struct {
	OK     bool                `json:"ok"`
	Calls  []dialer.PlacedCall `json:"calls"`
	Failed []dialer.FailedCall `json:"failed,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// handleDial validates the request and places one call per valid
// destination, reporting each outcome.
func (s *Server) handleDial(w http.ResponseWriter, r *http.Request) {
	var req dialRequest
	if errMsg := readJSON(r, &req); errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	res, err := s.dial.PlaceCalls(r.Context(), req.From, req.To, s.baseURL(r)+"/voice")
	switch {
	case errors.Is(err, dialer.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, "twilio credentials not configured")
		return
	case errors.Is(err, dialer.ErrInvalidFrom):
		writeError(w, http.StatusBadRequest, "invalid from number")
		return
	case errors.Is(err, dialer.ErrNoRecipients):
		writeError(w, http.StatusBadRequest, "no valid to numbers")
		return
	case err != nil:
		slog.Error("dial: placing calls failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if len(res.Calls) == 0 {
		// Every destination was rejected upstream.
		writeJSON(w, http.StatusBadGateway, dialResponse{
			Calls:  []dialer.PlacedCall{},
			Failed: res.Failed,
			Error:  "all calls failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, dialResponse{
		OK:     true,
		Calls:  res.Calls,
		Failed: res.Failed,
	})
}
