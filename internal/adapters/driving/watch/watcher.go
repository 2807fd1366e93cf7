// Package watch ingests files dropped into an inbox directory.
//
// A Watcher listens for fsnotify Create and Write events, waits for a file
// to stop changing, then registers it as a document and queues its
// derivation on the job pool. A file that changes again later is attached
// to the same document.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driving"
	"github.com/cloudstore/pagesmith/internal/logger"
)

// DefaultQuietPeriod is how long a file must go without events before it
// is ingested.
const DefaultQuietPeriod = 500 * time.Millisecond

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("watcher closed")

// Action says what the watcher did with a file.
type Action string

const (
	ActionQueued   Action = "queued"
	ActionAttached Action = "attached"
	ActionFailed   Action = "failed"
)

// Event reports one ingested file.
type Event struct {
	Path       string
	Action     Action
	DocumentID string
	JobID      string
	Err        error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithQuietPeriod overrides DefaultQuietPeriod.
func WithQuietPeriod(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.quiet = d
		}
	}
}

// WithNotify registers a callback invoked after each ingested file.
func WithNotify(fn func(Event)) Option {
	return func(w *Watcher) {
		w.notify = fn
	}
}

// Watcher turns files appearing in a directory into documents.
type Watcher struct {
	dir    string
	pages  driving.PageService
	jobs   driving.JobService
	quiet  time.Duration
	notify func(Event)

	mu     sync.Mutex
	timers map[string]*time.Timer
	known  map[string]string // path -> document ID
	// inflight holds paths being ingested; true asks for one more pass.
	inflight map[string]bool
	closed   bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a Watcher for dir.
func New(dir string, pages driving.PageService, jobs driving.JobService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:    dir,
		pages:  pages,
		jobs:   jobs,
		quiet:  DefaultQuietPeriod,
		timers: make(map[string]*time.Timer),
		known:    make(map[string]string),
		inflight: make(map[string]bool),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory until ctx is cancelled or Close is called.
// Pending debounced files are dropped on exit.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.mu.Unlock()

	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch directory %s: %w", w.dir, domain.ErrInvalidInput)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("watching %s", w.dir)

	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch %s: %v", w.dir, err)
		}
	}
}

// Close stops Run and waits for in-flight ingestion. It is idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.done)
	}
	w.mu.Unlock()
	w.wg.Wait()
	return nil
}

// handleEvent (re)arms the debounce timer for a relevant event. It reports
// whether the event was accepted.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if ignored(event.Name) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	path := event.Name
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.quiet)
		return true
	}
	w.timers[path] = time.AfterFunc(w.quiet, func() {
		w.mu.Lock()
		delete(w.timers, path)
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.wg.Add(1)
		w.mu.Unlock()
		defer w.wg.Done()

		w.process(ctx, path)
	})
	return true
}

// process ingests path with at most one ingestion per path at a time. A
// call that arrives while one is running is folded into a single rerun,
// which attaches the file to the document the first pass created.
func (w *Watcher) process(ctx context.Context, path string) {
	w.mu.Lock()
	if _, busy := w.inflight[path]; busy {
		w.inflight[path] = true
		w.mu.Unlock()
		return
	}
	w.inflight[path] = false
	w.mu.Unlock()

	for {
		ev := w.ingest(ctx, path)
		if ev.Err != nil {
			logger.Error("watch %s: %v", filepath.Base(path), ev.Err)
		}
		if w.notify != nil {
			w.notify(ev)
		}

		w.mu.Lock()
		again := w.inflight[path] && !w.closed
		if !again {
			delete(w.inflight, path)
			w.mu.Unlock()
			return
		}
		w.inflight[path] = false
		w.mu.Unlock()
	}
}

// ingest registers a new file and queues it, or attaches a changed file to
// the document created for it earlier.
func (w *Watcher) ingest(ctx context.Context, path string) Event {
	w.mu.Lock()
	docID, seen := w.known[path]
	w.mu.Unlock()

	if seen {
		if _, err := w.pages.AttachFile(ctx, docID, path); err != nil {
			return Event{Path: path, Action: ActionFailed, DocumentID: docID, Err: err}
		}
		return Event{Path: path, Action: ActionAttached, DocumentID: docID}
	}

	doc, err := w.pages.RegisterDocument(ctx, "", path)
	if err != nil {
		return Event{Path: path, Action: ActionFailed, Err: err}
	}
	w.mu.Lock()
	w.known[path] = doc.ID
	w.mu.Unlock()

	job, err := w.jobs.Enqueue(ctx, doc.ID)
	if err != nil {
		return Event{Path: path, Action: ActionFailed, DocumentID: doc.ID, Err: err}
	}
	return Event{Path: path, Action: ActionQueued, DocumentID: doc.ID, JobID: job.ID}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// ignored filters hidden files, editor and download temporaries, and
// formats the pipeline cannot read.
func ignored(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return true
	}
	lower := strings.ToLower(name)
	for _, suffix := range []string{"~", ".tmp", ".part", ".crdownload", ".swp"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return !domain.Sniff(name).Supported()
}
