// Package mcp provides an MCP (Model Context Protocol) server adapter for pagesmith.
// It lets AI assistants derive, read and search the pages of library documents.
package mcp

import "errors"

// ErrMissingPageService is returned when the page service is not provided.
var ErrMissingPageService = errors.New("mcp: page service is required")

// ErrJobsUnavailable is returned by the job tools when no job service is wired.
var ErrJobsUnavailable = errors.New("mcp: job service is not available")
