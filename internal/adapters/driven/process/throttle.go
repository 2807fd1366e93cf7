package process

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

// Ensure Throttled implements the interface.
var _ driven.CommandRunner = (*Throttled)(nil)

// Throttled limits how often the wrapped runner may launch a process.
// It uses a token bucket with a burst of one.
type Throttled struct {
	next    driven.CommandRunner
	limiter *rate.Limiter
}

// NewThrottled wraps next with a launch limit of perSecond.
// A non-positive rate returns next unchanged.
func NewThrottled(next driven.CommandRunner, perSecond float64) driven.CommandRunner {
	if perSecond <= 0 {
		return next
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Run waits for a launch token, then delegates.
func (t *Throttled) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.next.Run(ctx, name, args...)
}
