package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errResponse is the JSON shape for expected failures: {"ok":false,"error":...}.
type errResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode json response", "error", err)
	}
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResponse{Error: msg})
}

// writeXML writes a TwiML document. Telephony callbacks must always receive
// a well-formed voice-response document, so callers pass a complete doc.
func writeXML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		slog.Error("failed to write xml response", "error", err)
	}
}

// readJSON decodes a JSON request body into dst. Returns a client-facing
// error message, or "" on success.
func readJSON(r *http.Request, dst any) string {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return "invalid json body"
	}
	return ""
}
