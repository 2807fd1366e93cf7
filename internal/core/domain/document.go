package domain

import "time"

// DocumentStatus is the derivation state of a Document.
type DocumentStatus string

const (
	// StatusNoFile means no file has been attached yet.
	StatusNoFile DocumentStatus = "no_file"

	// StatusPending means a file is attached but pages are not derived.
	StatusPending DocumentStatus = "pending"

	// StatusPagesDerived means the page set matches the attached file.
	StatusPagesDerived DocumentStatus = "pages_derived"

	// StatusNoText means derivation ran but no readable text was found.
	StatusNoText DocumentStatus = "no_text"
)

// Document is a library entry owning a single uploaded file, the denormalised
// full text of that file, and an ordered collection of Pages.
// Content and Pages are fully replaced on every re-derivation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// FilePath is the durable location of the attached file.
	// Empty when no file is attached.
	FilePath string

	// Kind is the sniffed format of FilePath.
	Kind Kind

	// Content is the flattened full text of the file.
	Content string

	// Status is the derivation state.
	Status DocumentStatus

	// PageCount is the number of derived pages.
	PageCount int

	// Strategy names the extraction strategy that produced the pages.
	Strategy string

	// CreatedAt is when the document was created.
	CreatedAt time.Time

	// UpdatedAt is when the document was last modified or re-derived.
	UpdatedAt time.Time
}

// HasFile reports whether a file is attached.
func (d *Document) HasFile() bool {
	return d.FilePath != ""
}

// Page is one numbered unit of derived text.
// For a given document the page numbers form the contiguous run 1..N.
type Page struct {
	// DocumentID links to the owning Document.
	DocumentID string

	// Number is the 1-based page number.
	Number int

	// Text is the raw extracted text, possibly empty.
	Text string
}

// PageText is a page before it is bound to a document.
// It is the Paginator's output and the PageStore's input.
type PageText struct {
	Number int
	Text   string
}

// PageHit is a search match inside one page.
type PageHit struct {
	DocumentID    string
	DocumentTitle string
	PageNumber    int

	// Position is the rune offset of the match in the page text.
	Position int

	// Snippet is the text surrounding the match.
	Snippet string
}

// DerivationUpdate is the document-side outcome of one re-derivation.
type DerivationUpdate struct {
	Content   string
	Status    DocumentStatus
	PageCount int
	Strategy  string
}
