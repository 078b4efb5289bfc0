package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/promptline/promptline/internal/audio"
	"github.com/promptline/promptline/internal/metrics"
	"github.com/promptline/promptline/internal/storage"
)

// signUploadResponse is the JSON reply for GET /sign-upload.
type signUploadResponse struct {
	OK        bool              `json:"ok"`
	URL       string            `json:"url"`
	Fields    map[string]string `json:"fields"`
	PublicURL string            `json:"publicUrl"`
}

// handleSignUpload issues a presigned POST grant scoped to one object key
// and content type. The browser uploads straight to the bucket; this server
// never sees the bytes.
func (s *Server) handleSignUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	contentType := r.URL.Query().Get("type")

	if key == "" || contentType == "" {
		writeError(w, http.StatusBadRequest, "key and type are required")
		return
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		writeError(w, http.StatusBadRequest, "invalid key")
		return
	}
	if !strings.HasPrefix(contentType, "audio/") {
		writeError(w, http.StatusBadRequest, "type must be an audio content type")
		return
	}

	grant, err := s.signer.SignUpload(r.Context(), key, contentType)
	if errors.Is(err, storage.ErrNotConfigured) {
		writeError(w, http.StatusInternalServerError, "storage bucket not configured")
		return
	}
	if err != nil {
		slog.Error("sign-upload: presign failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.UploadGrants.Inc()
	writeJSON(w, http.StatusOK, signUploadResponse{
		OK:        true,
		URL:       grant.URL,
		Fields:    grant.Fields,
		PublicURL: grant.PublicURL,
	})
}

// setAudioRequest is the JSON body for POST /set-audio.
type setAudioRequest struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// setAudioResponse is the JSON reply for POST /set-audio.
type setAudioResponse struct {
	OK   bool   `json:"ok"`
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// handleSetAudio swaps one prompt slot after the admin confirms a
// successful upload. Last writer wins; no history.
func (s *Server) handleSetAudio(w http.ResponseWriter, r *http.Request) {
	var req setAudioRequest
	if errMsg := readJSON(r, &req); errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	kind, err := audio.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "kind must be one of menu, opt1, opt3")
		return
	}

	if err := s.audio.Update(kind, req.URL); err != nil {
		if errors.Is(err, audio.ErrBadURL) {
			writeError(w, http.StatusBadRequest, "url must start with https://")
			return
		}
		slog.Error("set-audio: update failed", "kind", kind, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.AudioUpdates.WithLabelValues(string(kind)).Inc()
	slog.Info("audio slot updated", "kind", kind, "url", req.URL)

	writeJSON(w, http.StatusOK, setAudioResponse{OK: true, Kind: string(kind), URL: req.URL})
}
