package driven

import (
	"context"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

// Strategy pulls raw text or pages out of one file kind using one technique.
// Strategies are registered per kind in priority order and tried by the
// extraction cascade until one produces usable output.
type Strategy interface {
	// Name identifies the strategy in logs and diagnostics (e.g. "pdf-layout").
	Name() string

	// Method returns the technique used. The paginator picks its chunking
	// rule from the kind and the method of the winning strategy.
	Method() domain.Method

	// Extract reads the file at path.
	// An error or a sub-threshold result disqualifies this strategy only.
	Extract(ctx context.Context, path string) (domain.ExtractionResult, error)
}
