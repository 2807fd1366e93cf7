package driven

import (
	"context"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

// DocumentStore persists documents.
// Backed by SQLite by default, PostgreSQL optionally.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if no such document exists.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns every document ordered by title.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and its pages.
	DeleteDocument(ctx context.Context, id string) error

	// UpdateDerivation records the outcome of a re-derivation: the
	// flattened full text, the resulting status and page count, and the
	// strategy that produced them.
	UpdateDerivation(ctx context.Context, id string, update domain.DerivationUpdate) error
}
