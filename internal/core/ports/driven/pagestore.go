package driven

import (
	"context"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

// PageStore persists the derived pages of documents.
type PageStore interface {
	// ReplacePages makes the document's page set exactly equal to pages.
	// The delete and the inserts commit together; on failure the previous
	// page set is left intact.
	ReplacePages(ctx context.Context, documentID string, pages []domain.PageText) error

	// SaveDerivation replaces the page set and records update on the
	// document in one commit. Either both land or neither does.
	SaveDerivation(ctx context.Context, documentID string, pages []domain.PageText, update domain.DerivationUpdate) error

	// Pages returns all pages of a document ordered by number.
	Pages(ctx context.Context, documentID string) ([]domain.Page, error)

	// Page returns a single page.
	// Returns domain.ErrNotFound if the page does not exist.
	Page(ctx context.Context, documentID string, number int) (*domain.Page, error)

	// ClearPages removes all pages of a document.
	ClearPages(ctx context.Context, documentID string) error

	// CountPages returns the number of stored pages for a document.
	CountPages(ctx context.Context, documentID string) (int, error)

	// SearchPages returns pages whose text contains query, case-insensitively,
	// ordered by document and page number. A limit of 0 means no limit.
	SearchPages(ctx context.Context, query string, limit int) ([]domain.Page, error)
}
