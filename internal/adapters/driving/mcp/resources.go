package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for pagesmith resources.
	uriScheme = "pagesmith://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing documents.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "All library documents with their derivation status",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for a single page.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}/pages/{pageNumber}",
		Name:        "document-page",
		Description: "Text of one derived page of a document",
		MIMEType:    "text/plain",
	}, s.handlePageResource)
}

// handleDocumentsResource returns a summary of every document.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Pages.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Kind      string `json:"kind"`
		Status    string `json:"status"`
		PageCount int    `json:"page_count"`
		Strategy  string `json:"strategy,omitempty"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:        docs[i].ID,
			Title:     docs[i].Title,
			Kind:      docs[i].Kind.String(),
			Status:    string(docs[i].Status),
			PageCount: docs[i].PageCount,
			Strategy:  docs[i].Strategy,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handlePageResource returns the text of one page.
func (s *Server) handlePageResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID, number, ok := parsePageURI(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	page, err := s.ports.Pages.Page(ctx, docID, number)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     page.Text,
		}},
	}, nil
}

// parsePageURI splits pagesmith://documents/{documentId}/pages/{pageNumber}.
func parsePageURI(uri string) (string, int, bool) {
	const prefix = uriScheme + "documents/"

	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return "", 0, false
	}
	docID, num, ok := strings.Cut(rest, "/pages/")
	if !ok || docID == "" || strings.Contains(docID, "/") {
		return "", 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 {
		return "", 0, false
	}
	return docID, n, true
}
