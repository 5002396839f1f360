package server

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/reportbot/internal/logfields"
)

var reportMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var reportPageTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Daily Report {{.Date}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 20px; background: #f5f5f5; }
        .container { max-width: 800px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .meta { color: #666; font-size: 13px; border-bottom: 1px solid #eee; padding-bottom: 15px; margin-bottom: 20px; }
        .report h1, .report h2 { color: #222; }
        .report code { background: #f0f0f0; padding: 2px 4px; border-radius: 3px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="meta">
            {{.Date}} &middot; model {{.Model}} &middot; archived {{.CreatedAt.Format "2006-01-02 15:04:05 MST"}}
        </div>
        <div class="report">{{.Body}}</div>
    </div>
</body>
</html>`))

type reportPageData struct {
	Date      string
	Model     string
	CreatedAt time.Time
	Body      template.HTML
}

// handleLatestReport renders the most recently archived report as an
// HTML page, or the raw entry as JSON when requested.
func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		http.Error(w, "archive not configured", http.StatusServiceUnavailable)
		return
	}

	entry, ok, err := s.archive.Latest(r.Context())
	if err != nil {
		slog.Error("Failed to load latest archived report", logfields.Error(err))
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "no reports archived yet", http.StatusNotFound)
		return
	}

	if r.Header.Get("Accept") == "application/json" || r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, entry)
		return
	}

	var rendered bytes.Buffer
	if err := reportMarkdown.Convert([]byte(entry.Report), &rendered); err != nil {
		slog.Error("Failed to render report markdown", logfields.Error(err))
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := reportPageData{
		Date:      entry.Date,
		Model:     entry.Model,
		CreatedAt: entry.CreatedAt,
		Body:      template.HTML(rendered.String()),
	}
	if err := reportPageTmpl.Execute(w, data); err != nil {
		slog.Error("Failed to render report page", logfields.Error(err))
	}
}
