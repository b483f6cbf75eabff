package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Triage is one audit-log row: a completed scoring run, whether it came from
// a finished intake conversation or a direct feature submission.
type Triage struct {
	ID           string
	CreatedAt    time.Time
	Source       string // "intake" or "predict"
	RecordJSON   string // intake record or raw feature map, as JSON
	ResultsJSON  string // ranked providers, as JSON
	ReportStatus string // "delivered", "failed", or "skipped"
}
