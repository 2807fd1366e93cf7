package driving

import (
	"context"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

// PageService extracts text from documents and maintains their page sets.
type PageService interface {
	// ExtractFullText returns the best-effort flattened text of a file.
	// Nothing is persisted. Returns domain.ErrUnsupportedFormat or
	// domain.ErrCascadeExhausted when no text could be produced.
	ExtractFullText(ctx context.Context, path string, kind domain.Kind) (string, error)

	// DerivePages re-derives the pages of a document from the file at path
	// and replaces the stored page set. Extraction failures yield zero pages
	// (or a placeholder page) rather than an error.
	DerivePages(ctx context.Context, documentID, path string, kind domain.Kind) ([]domain.PageText, error)

	// CreateDocument copies the file at sourcePath into the library,
	// creates a document for it and derives its pages. If the derivation
	// errors, the document and its library copy are removed again.
	CreateDocument(ctx context.Context, title, sourcePath string) (*domain.Document, error)

	// RegisterDocument copies the file into the library and creates a
	// pending document without deriving its pages.
	RegisterDocument(ctx context.Context, title, sourcePath string) (*domain.Document, error)

	// AttachFile replaces the file of an existing document and re-derives.
	AttachFile(ctx context.Context, documentID, sourcePath string) (*domain.Document, error)

	// Rederive re-derives a document from its stored file.
	Rederive(ctx context.Context, documentID string) ([]domain.PageText, error)

	// Document returns a document by ID.
	Document(ctx context.Context, documentID string) (*domain.Document, error)

	// ListDocuments returns every document.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document, its pages and its library file.
	DeleteDocument(ctx context.Context, documentID string) error

	// Pages returns the ordered pages of a document.
	Pages(ctx context.Context, documentID string) ([]domain.Page, error)

	// Page returns one page of a document.
	Page(ctx context.Context, documentID string, number int) (*domain.Page, error)

	// ClearPages removes every page of a document without re-deriving.
	ClearPages(ctx context.Context, documentID string) error

	// SearchPages finds pages containing query and returns snippets.
	SearchPages(ctx context.Context, query string, limit int) ([]domain.PageHit, error)

	// Capabilities lists the registered and unavailable strategies.
	Capabilities() []domain.Capability
}
