package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Extraction Errors.

	// ErrUnsupportedFormat indicates the file kind is UNKNOWN or has no strategies.
	// The pipeline treats it as a no-op: zero pages, nothing surfaced to users.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCascadeExhausted indicates every strategy for a kind failed.
	ErrCascadeExhausted = errors.New("no strategy produced usable text")

	// ErrUnusableOutput indicates a strategy ran but its text was below threshold.
	ErrUnusableOutput = errors.New("extracted text below usable threshold")

	// ErrStrategyUnavailable indicates a strategy's backend is not installed.
	ErrStrategyUnavailable = errors.New("strategy unavailable")

	// ErrBinaryNotFound indicates an external program could not be located.
	ErrBinaryNotFound = errors.New("binary not found")

	// ErrProcessTimeout indicates an external process exceeded its time bound.
	// It is an ordinary strategy failure, never fatal for the pipeline.
	ErrProcessTimeout = errors.New("external process timed out")

	// Library Errors.

	// ErrNoFile indicates a document has no attached file to derive from.
	ErrNoFile = errors.New("document has no file")

	// ErrFileTooLarge indicates an upload exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrQueueClosed indicates work was submitted to a stopped job queue.
	ErrQueueClosed = errors.New("job queue closed")
)
