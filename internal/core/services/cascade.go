package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
	"github.com/cloudstore/pagesmith/internal/logger"
)

// Cascade runs the ordered extraction strategies for a kind until one
// produces usable text.
type Cascade struct {
	strategies map[domain.Kind][]driven.Strategy
	minChars   int
}

// NewCascade creates a cascade over per-kind strategy lists.
// The lists are used in the order given.
func NewCascade(strategies map[domain.Kind][]driven.Strategy, cfg domain.ExtractionConfig) *Cascade {
	if strategies == nil {
		strategies = make(map[domain.Kind][]driven.Strategy)
	}
	minChars := cfg.MinUsableChars
	if minChars < 1 {
		minChars = domain.DefaultMinUsableChars
	}
	return &Cascade{strategies: strategies, minChars: minChars}
}

// Strategies returns the cascade registered for a kind.
func (c *Cascade) Strategies(kind domain.Kind) []driven.Strategy {
	return c.strategies[kind]
}

// Run extracts text from the file at path.
//
// Every strategy is isolated: an error, a panic or unusable output only
// disqualifies that strategy. The first usable result is returned with its
// Strategy and Method set. When no strategy succeeds the result is a
// failure whose Err joins domain.ErrCascadeExhausted with each strategy's
// error. Run never returns an error of its own.
func (c *Cascade) Run(ctx context.Context, kind domain.Kind, path string) domain.ExtractionResult {
	strategies := c.strategies[kind]
	if !kind.Supported() || len(strategies) == 0 {
		return domain.Failure(fmt.Errorf("%s: %w", kind, domain.ErrUnsupportedFormat))
	}

	errs := []error{domain.ErrCascadeExhausted}
	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		logger.Debug("cascade: %s trying %s on %s", kind, strategy.Name(), path)
		result, err := c.attempt(ctx, strategy, path)
		if err != nil {
			logger.Debug("cascade: %s failed: %v", strategy.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", strategy.Name(), err))
			continue
		}
		if !result.Usable(c.minChars) {
			logger.Debug("cascade: %s output unusable", strategy.Name())
			errs = append(errs, fmt.Errorf("%s: %w", strategy.Name(), domain.ErrUnusableOutput))
			continue
		}

		result.Strategy = strategy.Name()
		result.Method = strategy.Method()
		logger.Debug("cascade: %s selected %s", kind, strategy.Name())
		return result
	}

	return domain.Failure(errors.Join(errs...))
}

// attempt invokes one strategy and converts a panic into an error.
func (c *Cascade) attempt(ctx context.Context, strategy driven.Strategy, path string) (result domain.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.ExtractionResult{}
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	result, err = strategy.Extract(ctx, path)
	if err == nil && result.Failed() {
		err = result.Err
		if err == nil {
			err = domain.ErrUnusableOutput
		}
	}
	return result, err
}
