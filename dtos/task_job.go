package dtos

import (
	"time"

	"github.com/google/uuid"
)

// TaskJob tracks one background task run (price recomputation or lifecycle
// sweep) so operators can poll its outcome. Failures of background tasks are
// recorded here and logged; they are never surfaced to an interactive caller.
type TaskJob struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"` // pending, processing, completed, failed
	Attempts    int        `json:"attempts"`
	Updated     int        `json:"updated"` // association pairs rewritten
	Skipped     int        `json:"skipped"` // pairs pinned by price_override
	Evaluated   int        `json:"evaluated"`
	Activated   int        `json:"activated"`
	Deactivated int        `json:"deactivated"`
	Expired     int        `json:"expired"`
	Error       string     `json:"error,omitempty"`
	EnqueuedAt  time.Time  `json:"enqueued_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Job status constants
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)
