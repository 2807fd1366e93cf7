package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

const defaultSearchLimit = 10

// DocumentInput identifies one document.
type DocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document ID"`
}

// DeriveOutput is the output schema for the derive_pages tool.
type DeriveOutput struct {
	DocumentID string `json:"document_id"`
	PageCount  int    `json:"page_count"`
	Status     string `json:"status"`
	Strategy   string `json:"strategy,omitempty"`
}

// ExtractInput is the input schema for the extract_text tool.
type ExtractInput struct {
	Path string `json:"path" jsonschema:"path of a file under the server's allowed directory, absolute or relative to it"`
	Kind string `json:"kind,omitempty" jsonschema:"format override such as pdf or docx (default: sniffed from the extension)"`
}

// ExtractOutput is the output schema for the extract_text tool.
type ExtractOutput struct {
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Characters int    `json:"characters"`
}

// PageInput is the input schema for the get_page tool.
type PageInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document ID"`
	PageNumber int    `json:"page_number" jsonschema:"1-based page number"`
}

// PageOutput is one page of a document.
type PageOutput struct {
	DocumentID string `json:"document_id"`
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// SearchInput is the input schema for the search_pages tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find, matched case-insensitively"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search_pages tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single page match.
type SearchResultOutput struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	PageNumber int    `json:"page_number"`
	Snippet    string `json:"snippet"`
}

// JobInput is the input schema for the job_status tool.
type JobInput struct {
	JobID string `json:"job_id" jsonschema:"the job ID returned by enqueue_derivation"`
}

// JobOutput describes a background derivation.
type JobOutput struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	PageCount  int    `json:"page_count,omitempty"`
	Error      string `json:"error,omitempty"`
	EnqueuedAt string `json:"enqueued_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "derive_pages",
		Description: "Re-derive the pages of a document from its stored file and wait for the result",
	}, s.handleDerivePages)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_text",
		Description: "Extract the full text of a file without storing anything",
	}, s.handleExtractText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_page",
		Description: "Read one derived page of a document",
	}, s.handleGetPage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_pages",
		Description: "Find pages containing a phrase across all documents",
	}, s.handleSearchPages)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "enqueue_derivation",
		Description: "Queue a background re-derivation of a document and return its job",
	}, s.handleEnqueue)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "job_status",
		Description: "Report the state of a queued derivation",
	}, s.handleJobStatus)
}

func (s *Server) handleDerivePages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DeriveOutput, error) {
	if _, err := s.ports.Pages.Rederive(ctx, input.DocumentID); err != nil {
		return nil, DeriveOutput{}, err
	}
	doc, err := s.ports.Pages.Document(ctx, input.DocumentID)
	if err != nil {
		return nil, DeriveOutput{}, err
	}
	return nil, DeriveOutput{
		DocumentID: doc.ID,
		PageCount:  doc.PageCount,
		Status:     string(doc.Status),
		Strategy:   doc.Strategy,
	}, nil
}

func (s *Server) handleExtractText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	kind := domain.Sniff(input.Path)
	if input.Kind != "" {
		k, ok := domain.ParseKind(input.Kind)
		if !ok {
			return nil, ExtractOutput{}, fmt.Errorf("unknown kind %q: %w", input.Kind, domain.ErrInvalidInput)
		}
		kind = k
	}

	path, err := s.allowedPath(input.Path)
	if err != nil {
		return nil, ExtractOutput{}, err
	}

	text, err := s.ports.Pages.ExtractFullText(ctx, path, kind)
	if err != nil {
		return nil, ExtractOutput{}, err
	}
	return nil, ExtractOutput{
		Kind:       kind.String(),
		Text:       text,
		Characters: len([]rune(text)),
	}, nil
}

// allowedPath resolves p against the extract root and rejects paths that
// leave it, either lexically or through a symlink.
func (s *Server) allowedPath(p string) (string, error) {
	if s.extractRoot == "" {
		return "", fmt.Errorf("extract_text has no allowed directory: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("path is required: %w", domain.ErrInvalidInput)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.extractRoot, p)
	}
	p = filepath.Clean(p)
	if !within(s.extractRoot, p) {
		return "", fmt.Errorf("%s is outside %s: %w", p, s.extractRoot, domain.ErrInvalidInput)
	}

	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	root, err := filepath.EvalSymlinks(s.extractRoot)
	if err != nil {
		root = s.extractRoot
	}
	if !within(root, resolved) {
		return "", fmt.Errorf("%s links outside %s: %w", p, s.extractRoot, domain.ErrInvalidInput)
	}
	return resolved, nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (s *Server) handleGetPage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PageInput,
) (*mcp.CallToolResult, PageOutput, error) {
	page, err := s.ports.Pages.Page(ctx, input.DocumentID, input.PageNumber)
	if err != nil {
		return nil, PageOutput{}, err
	}
	return nil, PageOutput{
		DocumentID: page.DocumentID,
		PageNumber: page.Number,
		Text:       page.Text,
	}, nil
}

func (s *Server) handleSearchPages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	hits, err := s.ports.Pages.SearchPages(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}
	for i := range hits {
		output.Results[i] = SearchResultOutput{
			DocumentID: hits[i].DocumentID,
			Title:      hits[i].DocumentTitle,
			PageNumber: hits[i].PageNumber,
			Snippet:    hits[i].Snippet,
		}
	}
	return nil, output, nil
}

func (s *Server) handleEnqueue(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, JobOutput, error) {
	if s.ports.Jobs == nil {
		return nil, JobOutput{}, ErrJobsUnavailable
	}
	if _, err := s.ports.Pages.Document(ctx, input.DocumentID); err != nil {
		return nil, JobOutput{}, err
	}
	job, err := s.ports.Jobs.Enqueue(ctx, input.DocumentID)
	if err != nil {
		return nil, JobOutput{}, err
	}
	return nil, jobOutput(job), nil
}

func (s *Server) handleJobStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input JobInput,
) (*mcp.CallToolResult, JobOutput, error) {
	if s.ports.Jobs == nil {
		return nil, JobOutput{}, ErrJobsUnavailable
	}
	job, err := s.ports.Jobs.Job(input.JobID)
	if err != nil {
		return nil, JobOutput{}, err
	}
	return nil, jobOutput(job), nil
}

func jobOutput(job domain.Job) JobOutput {
	out := JobOutput{
		JobID:      job.ID,
		DocumentID: job.DocumentID,
		Status:     string(job.Status),
		PageCount:  job.PageCount,
		Error:      job.Error,
		EnqueuedAt: job.EnqueuedAt.Format(time.RFC3339),
	}
	if !job.FinishedAt.IsZero() {
		out.FinishedAt = job.FinishedAt.Format(time.RFC3339)
	}
	return out
}
