package domain

import "time"

// Run statuses.
const (
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusFailed  = "failed"
)

// Execution modes.
const (
	ModeDummy = "dummy"
	ModeLive  = "live"
)

type Run struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Report     *Report   `json:"report,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Upload is a stored input file selected for the next run.
type Upload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"-"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
