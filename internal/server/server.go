// Package server exposes the status and control HTTP API: engine
// status, manual check triggering, health, metrics, and an HTML view of
// the most recent archived report.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/reportbot/internal/archive"
	"git.home.luguber.info/inful/reportbot/internal/engine"
	"git.home.luguber.info/inful/reportbot/internal/logfields"
)

// EngineAPI is the slice of the engine the HTTP layer needs.
type EngineAPI interface {
	Status() engine.StatusSnapshot
	ManualCheck(ctx context.Context) engine.CheckResult
}

// ArchiveReader reads archived reports for the report endpoints.
type ArchiveReader interface {
	Latest(ctx context.Context) (archive.Entry, bool, error)
	ByDate(ctx context.Context, date string) ([]archive.Entry, error)
}

// Server is the HTTP status/control server.
type Server struct {
	engine   EngineAPI
	archive  ArchiveReader
	registry *prometheus.Registry
	httpSrv  *http.Server
}

// New builds the server. The archive reader and registry may be nil;
// the corresponding endpoints then report unavailable.
func New(addr string, eng EngineAPI, reader ArchiveReader, registry *prometheus.Registry) *Server {
	s := &Server{
		engine:   eng,
		archive:  reader,
		registry: registry,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/trigger", s.handleTrigger)
	mux.HandleFunc("GET /report/latest", s.handleLatestReport)
	mux.HandleFunc("GET /api/reports/{date}", s.handleReportsByDate)
	if registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the server until ListenAndServe returns. It is intended to
// run in its own goroutine; a closed server returns nil.
func (s *Server) Start() error {
	slog.Info("Starting HTTP server", slog.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("Stopping HTTP server")
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Status())
}

// triggerResponse is the manual-check API contract.
type triggerResponse struct {
	Success bool   `json:"success"`
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleTrigger runs a manual check synchronously and reports its
// outcome. The check serializes behind any in-flight scheduled run, so
// slow sources make this endpoint slow too.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	result := s.engine.ManualCheck(r.Context())

	resp := triggerResponse{
		Success: result.Err == "",
		Outcome: string(result.Outcome),
		Message: result.Message,
		Error:   result.Err,
	}
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleReportsByDate(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		http.Error(w, "archive not configured", http.StatusServiceUnavailable)
		return
	}
	date := r.PathValue("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	entries, err := s.archive.ByDate(r.Context(), date)
	if err != nil {
		slog.Error("Failed to query archived reports", logfields.Date(date), logfields.Error(err))
		http.Error(w, "failed to query reports", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []archive.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", logfields.Error(err))
	}
}
