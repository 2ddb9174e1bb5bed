package domain

import "time"

// JobStatus tracks a playlist-processing job through its lifecycle.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one unit of asynchronous playlist-processing work. Jobs are created
// by the request path, claimed and mutated only by the worker loop, and never
// deleted here; retention is the persistence layer's concern.
type Job struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlist_id"`
	Status     JobStatus `json:"status"`

	// Attempts counts processing attempts across all error classes.
	// A retryable failure returns the job to pending until a configured
	// attempt limit is reached.
	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// ProcessingTimeMS is the wall-clock duration of the last attempt.
	ProcessingTimeMS int64 `json:"processing_time_ms,omitempty"`
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusFailed
}
