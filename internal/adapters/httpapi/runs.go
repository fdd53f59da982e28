package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/auditdesk/audit-assistant/internal/report"
)

func (h *Handler) startRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.StartRun(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.Run(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) cancelRun(w http.ResponseWriter, r *http.Request) {
	if !h.svc.CancelRun(r.PathValue("id")) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no running run with that id"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// streamEvents replays a run's event history and follows it live as
// Server-Sent Events until the run is done or the client goes away.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	ch, cancel, err := h.svc.Subscribe(runID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, fmt.Errorf("streaming unsupported by connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Error().Err(err).Str("run_id", runID).Msg("failed to encode event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) downloadReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="report.json"`)
	if err := report.WriteJSON(w, rep); err != nil {
		h.log.Error().Err(err).Msg("report download failed mid-write")
	}
}

func (h *Handler) downloadActionItems(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="action_items.csv"`)
	if err := report.WriteActionItemsCSV(w, rep); err != nil {
		h.log.Error().Err(err).Msg("csv download failed mid-write")
	}
}
