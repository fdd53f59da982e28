package httpapi

import "net/http"

const homePage = `<!doctype html>
<html>
<head><title>AI Audit Assistant</title></head>
<body style="font-family: sans-serif; max-width: 48rem; margin: 2rem auto;">
<h1>AI Audit Assistant</h1>
<p>Upload accounting CSVs, run the audit checks and fetch the report.</p>
<ol>
<li><code>POST /api/uploads</code> — multipart field <code>files</code>
(journal_entries.csv, invoices.csv, vendors.csv, employees.csv, user_access.csv)</li>
<li><code>POST /api/runs</code> — start a run</li>
<li><code>GET /api/runs/{id}/events</code> — live progress (SSE)</li>
<li><code>GET /api/runs/{id}/report</code> — summary, metrics and action items</li>
<li><code>GET /api/runs/{id}/cases</code> — the case board</li>
</ol>
</body>
</html>
`

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(homePage))
}
