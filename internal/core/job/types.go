package job

import "time"

// Job is the redis-backed snapshot of one import run, served by the
// status endpoint. StoreJobID is the database row the run writes to;
// JobID is the API-visible identifier minted at enqueue time.
type Job struct {
	JobID       string     `json:"job_id"`
	StoreJobID  string     `json:"store_job_id,omitempty"`
	Marketplace string     `json:"marketplace"`
	Query       string     `json:"query,omitempty"`
	SourceURL   string     `json:"source_url,omitempty"`
	MaxResults  int        `json:"max_results,omitempty"`
	Status      Status     `json:"status"`
	Inserted    int        `json:"inserted"`
	ErrorCount  int        `json:"error_count"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Status for internal job tracking
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether a job can no longer change state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
