// Package httpapi exposes the audit service over HTTP: uploads, runs, a
// Server-Sent Events stream of run progress, report exports and the case
// board.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/auditdesk/audit-assistant/internal/ports"
	"github.com/auditdesk/audit-assistant/internal/usecase"
)

type Handler struct {
	svc       *usecase.AuditService
	uploadDir string
	log       zerolog.Logger
}

func New(svc *usecase.AuditService, uploadDir string, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, uploadDir: uploadDir, log: log}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /healthz", h.healthz)

	mux.HandleFunc("POST /api/uploads", h.upload)
	mux.HandleFunc("GET /api/uploads", h.listUploads)
	mux.HandleFunc("DELETE /api/uploads", h.clearUploads)

	mux.HandleFunc("POST /api/runs", h.startRun)
	mux.HandleFunc("GET /api/runs/{id}", h.getRun)
	mux.HandleFunc("POST /api/runs/{id}/cancel", h.cancelRun)
	mux.HandleFunc("GET /api/runs/{id}/events", h.streamEvents)
	mux.HandleFunc("GET /api/runs/{id}/report", h.getReport)
	mux.HandleFunc("GET /api/runs/{id}/report.json", h.downloadReport)
	mux.HandleFunc("GET /api/runs/{id}/action-items.csv", h.downloadActionItems)
	mux.HandleFunc("GET /api/runs/{id}/cases", h.listCases)
	mux.HandleFunc("POST /api/cases/{id}/move", h.moveCase)

	return h.logRequests(mux)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"healthy": true, "message": "OK: audit-assistant"})
}

// ----- helpers -----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrNotFound), errors.Is(err, usecase.ErrRunNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrNoUploads):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrNoReport):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		h.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
