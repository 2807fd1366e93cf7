package services

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driving"
	"github.com/cloudstore/pagesmith/internal/logger"
)

// Ensure JobQueue implements the interface.
var _ driving.JobService = (*JobQueue)(nil)

// maxFinishedJobs bounds the job history kept in memory.
const maxFinishedJobs = 1000

// Rederiver re-derives one document from its stored file.
type Rederiver interface {
	Rederive(ctx context.Context, documentID string) ([]domain.PageText, error)
}

// JobQueue runs re-derivations on a fixed pool of workers.
// Enqueue never blocks on extraction.
type JobQueue struct {
	pages   Rederiver
	workers int
	timeout time.Duration

	mu           sync.Mutex
	running      bool
	jobs         map[string]*domain.Job
	order        []string
	queue        []string
	pendingByDoc map[string]string
	wake         chan struct{}
	stopCh       chan struct{}
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewJobQueue creates a job queue. Zero workers means one per CPU.
func NewJobQueue(pages Rederiver, cfg domain.JobsConfig) *JobQueue {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultJobTimeout
	}
	return &JobQueue{
		pages:        pages,
		workers:      workers,
		timeout:      timeout,
		jobs:         make(map[string]*domain.Job),
		pendingByDoc: make(map[string]string),
	}
}

// Start launches the workers and returns immediately.
// The workers stop when ctx is cancelled or Stop is called.
func (q *JobQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return nil // Already running
	}

	runCtx, cancel := context.WithCancel(ctx)
	q.running = true
	q.cancel = cancel
	q.stopCh = make(chan struct{})
	q.wake = make(chan struct{}, q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(runCtx)
	}
	logger.Debug("jobs: started %d workers", q.workers)
	return nil
}

// Stop cancels in-flight derivations, waits for the workers to exit and
// fails every job still waiting in the queue.
func (q *JobQueue) Stop() error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	close(q.stopCh)
	q.cancel()
	q.mu.Unlock()

	q.wg.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now()
	for _, id := range q.queue {
		job := q.jobs[id]
		job.Status = domain.JobFailed
		job.Error = domain.ErrQueueClosed.Error()
		job.FinishedAt = now
		delete(q.pendingByDoc, job.DocumentID)
	}
	q.queue = nil
	return nil
}

// IsRunning reports whether the workers are active.
func (q *JobQueue) IsRunning() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Enqueue schedules a re-derivation of documentID. A document with a job
// still waiting in the queue gets that job back.
func (q *JobQueue) Enqueue(_ context.Context, documentID string) (domain.Job, error) {
	if documentID == "" {
		return domain.Job{}, fmt.Errorf("empty document id: %w", domain.ErrInvalidInput)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return domain.Job{}, domain.ErrQueueClosed
	}

	if id, ok := q.pendingByDoc[documentID]; ok {
		return *q.jobs[id], nil
	}

	job := &domain.Job{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Status:     domain.JobPending,
		EnqueuedAt: time.Now(),
	}
	q.jobs[job.ID] = job
	q.order = append(q.order, job.ID)
	q.queue = append(q.queue, job.ID)
	q.pendingByDoc[documentID] = job.ID
	q.pruneLocked()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return *job, nil
}

// Job returns a snapshot of a job.
func (q *JobQueue) Job(id string) (domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	return *job, nil
}

// List returns snapshots of all known jobs, most recent first.
func (q *JobQueue) List() []domain.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.Job, 0, len(q.order))
	for i := len(q.order) - 1; i >= 0; i-- {
		out = append(out, *q.jobs[q.order[i]])
	}
	return out
}

// work is the worker loop.
func (q *JobQueue) work(ctx context.Context) {
	defer q.wg.Done()
	for {
		for {
			id, docID, ok := q.next()
			if !ok {
				break
			}
			q.run(ctx, id, docID)
			if ctx.Err() != nil {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-q.stopCh:
			return
		case <-q.wake:
		}
	}
}

// next pops the oldest queued job and marks it running.
func (q *JobQueue) next() (string, string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running || len(q.queue) == 0 {
		return "", "", false
	}
	id := q.queue[0]
	q.queue = q.queue[1:]

	job := q.jobs[id]
	job.Status = domain.JobRunning
	job.StartedAt = time.Now()
	delete(q.pendingByDoc, job.DocumentID)
	return id, job.DocumentID, true
}

func (q *JobQueue) run(ctx context.Context, id, documentID string) {
	jobCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	pages, err := q.pages.Rederive(jobCtx, documentID)

	q.mu.Lock()
	defer q.mu.Unlock()
	job := q.jobs[id]
	job.FinishedAt = time.Now()
	if err != nil {
		job.Status = domain.JobFailed
		job.Error = err.Error()
		logger.Warn("jobs: %s for %s failed: %v", id, documentID, err)
		return
	}
	job.Status = domain.JobSucceeded
	job.PageCount = len(pages)
	logger.Debug("jobs: %s for %s derived %d pages", id, documentID, len(pages))
}

// pruneLocked drops the oldest finished jobs beyond the history limit.
func (q *JobQueue) pruneLocked() {
	excess := len(q.order) - maxFinishedJobs
	if excess <= 0 {
		return
	}
	kept := q.order[:0]
	for _, id := range q.order {
		if excess > 0 && q.jobs[id].Status.Done() {
			delete(q.jobs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	q.order = kept
}
