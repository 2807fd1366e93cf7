package domain

import "time"

// JobStatus is the lifecycle state of a background derivation.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Done reports whether the job reached a terminal state.
func (s JobStatus) Done() bool {
	return s == JobSucceeded || s == JobFailed
}

// Job is one queued re-derivation of a document.
type Job struct {
	ID         string
	DocumentID string
	Status     JobStatus

	// PageCount is set once the job succeeds.
	PageCount int

	// Error holds the failure message of a failed job.
	Error string

	EnqueuedAt time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// ImportStatus is the outcome of importing one file.
type ImportStatus string

const (
	ImportCreated  ImportStatus = "created"
	ImportSkipped  ImportStatus = "skipped"
	ImportRejected ImportStatus = "rejected"
	ImportFailed   ImportStatus = "failed"

	// ImportDerived marks an existing document whose pages were re-derived.
	ImportDerived ImportStatus = "derived"
)

// ImportResult reports what happened to one file of a batch.
type ImportResult struct {
	// Name is the file name as found in the batch.
	Name       string
	Status     ImportStatus
	DocumentID string
	PageCount  int
	Message    string
}
