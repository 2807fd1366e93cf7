package driving

import (
	"context"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

// JobService runs re-derivations on a background worker pool.
type JobService interface {
	// Enqueue schedules a re-derivation and returns immediately with a
	// pending job. A document that already has a pending job gets that job back.
	Enqueue(ctx context.Context, documentID string) (domain.Job, error)

	// Job returns a job by ID.
	Job(id string) (domain.Job, error)

	// List returns all known jobs, most recent first.
	List() []domain.Job

	// Start launches the workers.
	Start(ctx context.Context) error

	// Stop cancels in-flight work and waits for the workers to exit.
	Stop() error

	// IsRunning reports whether the workers are active.
	IsRunning() bool
}
