package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

func (h *Handler) listCases(w http.ResponseWriter, r *http.Request) {
	cases, err := h.svc.Cases(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if cases == nil {
		cases = []domain.Case{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"columns": domain.BoardColumns(),
		"cases":   cases,
	})
}

func (h *Handler) moveCase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body: " + err.Error()})
		return
	}
	if !domain.ValidCaseStatus(body.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid case status " + body.Status})
		return
	}
	if err := h.svc.MoveCase(r.Context(), r.PathValue("id"), body.Status); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
