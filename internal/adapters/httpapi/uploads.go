package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/auditdesk/audit-assistant/internal/adapters/csvtable"
	"github.com/auditdesk/audit-assistant/internal/domain"
)

const maxUploadBytes = 32 << 20

// upload accepts multipart files under the "files" field. Only the expected
// dataset filenames are allowed.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form: " + err.Error()})
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no files in field \"files\""})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.writeError(w, err)
		return
	}

	var saved []domain.Upload
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if _, ok := csvtable.ExpectedFiles[name]; !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("unsupported file %q, allowed: %v", name, csvtable.AllowedNames()),
			})
			return
		}

		src, err := fh.Open()
		if err != nil {
			h.writeError(w, err)
			return
		}
		dest := filepath.Join(h.uploadDir, name)
		size, err := copyToFile(dest, src)
		_ = src.Close()
		if err != nil {
			h.writeError(w, err)
			return
		}

		u, err := h.svc.AddUpload(r.Context(), name, dest, size)
		if err != nil {
			h.writeError(w, err)
			return
		}
		saved = append(saved, *u)
		h.log.Info().Str("file", name).Int64("size", size).Msg("upload stored")
	}

	writeJSON(w, http.StatusCreated, map[string]any{"uploads": saved})
}

func (h *Handler) listUploads(w http.ResponseWriter, r *http.Request) {
	ups, err := h.svc.Uploads(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if ups == nil {
		ups = []domain.Upload{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploads": ups})
}

func (h *Handler) clearUploads(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearUploads(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func copyToFile(dest string, src io.Reader) (int64, error) {
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
