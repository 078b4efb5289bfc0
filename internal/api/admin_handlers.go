package api

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/promptline/promptline/internal/audio"
	"github.com/promptline/promptline/internal/web"
)

var adminTmpl = template.Must(template.ParseFS(web.FS, "templates/admin.html"))

// adminSlot is one audio slot row on the console.
type adminSlot struct {
	Kind  string
	Label string
	URL   string
}

// adminPageData is the template context for the console.
type adminPageData struct {
	Slots []adminSlot
}

// handleAdminConsole renders the console with the current audio set
// embedded. Auth happens in middleware; by the time we are here the token
// already checked out.
func (s *Server) handleAdminConsole(w http.ResponseWriter, r *http.Request) {
	snap := s.audio.Snapshot()
	data := adminPageData{
		Slots: []adminSlot{
			{Kind: string(audio.KindMenu), Label: "Main menu", URL: snap.Menu},
			{Kind: string(audio.KindOpt1), Label: "Option 1", URL: snap.Opt1},
			{Kind: string(audio.KindOpt3), Label: "Option 3", URL: snap.Opt3},
		},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := adminTmpl.Execute(w, data); err != nil {
		slog.Error("admin: template render failed", "error", err)
	}
}
