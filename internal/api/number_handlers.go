package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/promptline/promptline/internal/dialer"
)

// fromNumbersResponse is the JSON reply for GET /twilio/from-numbers.
type fromNumbersResponse struct {
	OK      bool          `json:"ok"`
	Numbers []numberEntry `json:"numbers"`
}

type numberEntry struct {
	PhoneNumber  string             `json:"phoneNumber"`
	FriendlyName string             `json:"friendlyName"`
	Capabilities numberCapabilities `json:"capabilities"`
}

type numberCapabilities struct {
	Voice bool `json:"voice"`
	SMS   bool `json:"sms"`
	MMS   bool `json:"mms"`
}

// handleFromNumbers lists the account's numbers for the console's caller ID
// selector. Token gated like the rest of the admin surface: account
// inventory is not public.
func (s *Server) handleFromNumbers(w http.ResponseWriter, r *http.Request) {
	nums, err := s.dial.FromNumbers(r.Context())
	if errors.Is(err, dialer.ErrNotConfigured) {
		writeError(w, http.StatusInternalServerError, "twilio credentials not configured")
		return
	}
	if err != nil {
		slog.Error("from-numbers: provider lookup failed", "error", err)
		writeError(w, http.StatusBadGateway, "number lookup failed")
		return
	}

	entries := make([]numberEntry, len(nums))
	for i, n := range nums {
		entries[i] = numberEntry{
			PhoneNumber:  n.PhoneNumber,
			FriendlyName: n.FriendlyName,
			Capabilities: numberCapabilities{Voice: n.Voice, SMS: n.SMS, MMS: n.MMS},
		}
	}

	writeJSON(w, http.StatusOK, fromNumbersResponse{OK: true, Numbers: entries})
}
