package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
	"github.com/cloudstore/pagesmith/internal/logger"
)

// Ensure Runner implements the interface.
var _ driven.CommandRunner = (*Runner)(nil)

// DefaultWaitDelay bounds how long Run waits for output pipes to close
// after the process group has been killed.
const DefaultWaitDelay = 2 * time.Second

// maxStderr caps the stderr excerpt carried in errors.
const maxStderr = 512

// Runner executes commands with a per-call timeout.
type Runner struct {
	timeout   time.Duration
	waitDelay time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) Option {
	return func(r *Runner) {
		r.waitDelay = d
	}
}

// NewRunner creates a runner. A timeout of zero disables the per-call bound;
// the caller's context still applies.
func NewRunner(timeout time.Duration, opts ...Option) *Runner {
	r := &Runner{
		timeout:   timeout,
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes name with args and returns its standard output.
// A call that outlives the timeout fails with domain.ErrProcessTimeout;
// a missing binary fails with domain.ErrBinaryNotFound.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.waitDelay
	killProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()
	logger.Debug("process: %s %s (%s)", name, strings.Join(args, " "), time.Since(start).Round(time.Millisecond))

	if err == nil {
		return stdout.Bytes(), nil
	}

	switch {
	case errors.Is(err, exec.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", name, domain.ErrBinaryNotFound)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		return nil, fmt.Errorf("%s exceeded %s: %w", name, r.timeout, domain.ErrProcessTimeout)
	case ctx.Err() != nil:
		return nil, fmt.Errorf("%s: %w", name, ctx.Err())
	}

	msg := strings.TrimSpace(stderr.String())
	if len(msg) > maxStderr {
		msg = msg[:maxStderr]
	}
	if msg != "" {
		return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return nil, fmt.Errorf("%s: %w", name, err)
}
