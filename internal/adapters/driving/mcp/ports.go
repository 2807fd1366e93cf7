package mcp

import (
	"github.com/cloudstore/pagesmith/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Pages derives and serves document pages.
	Pages driving.PageService

	// Jobs runs derivations in the background. Optional; the job tools
	// report ErrJobsUnavailable without it.
	Jobs driving.JobService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Pages == nil {
		return ErrMissingPageService
	}
	return nil
}
