package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
	"github.com/cloudstore/pagesmith/internal/core/ports/driving"
	"github.com/cloudstore/pagesmith/internal/logger"
)

// Ensure PageService implements the interface.
var _ driving.PageService = (*PageService)(nil)

// snippetRadius is the number of runes kept on each side of a search match.
const snippetRadius = 150

// Paginator turns an extraction result into numbered pages.
type Paginator interface {
	Paginate(kind domain.Kind, result domain.ExtractionResult) []domain.PageText
}

// PageService derives and serves the pages of library documents.
// Derivations of the same document are serialised; different documents
// derive in parallel.
type PageService struct {
	docs      driven.DocumentStore
	pages     driven.PageStore
	cascade   *Cascade
	paginator Paginator

	libraryDir   string
	maxFileBytes int64
	capabilities func() []domain.Capability

	locks *keyedMutex
}

// PageServiceOption configures a PageService.
type PageServiceOption func(*PageService)

// WithCapabilities sets the source of the strategy capability listing.
func WithCapabilities(fn func() []domain.Capability) PageServiceOption {
	return func(s *PageService) {
		s.capabilities = fn
	}
}

// NewPageService creates a page service.
// Uploaded files are copied under <storage.data_dir>/files; with no data
// dir, documents reference their source files in place.
func NewPageService(
	docs driven.DocumentStore,
	pages driven.PageStore,
	cascade *Cascade,
	paginator Paginator,
	cfg domain.PipelineConfig,
	opts ...PageServiceOption,
) *PageService {
	cfg.Normalise()
	s := &PageService{
		docs:         docs,
		pages:        pages,
		cascade:      cascade,
		paginator:    paginator,
		maxFileBytes: cfg.Limits.MaxFileBytes,
		locks:        newKeyedMutex(),
	}
	if cfg.Storage.DataDir != "" {
		s.libraryDir = filepath.Join(cfg.Storage.DataDir, "files")
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractFullText runs the cascade and flattens the winning result.
func (s *PageService) ExtractFullText(ctx context.Context, path string, kind domain.Kind) (string, error) {
	result := s.cascade.Run(ctx, kind, path)
	if result.Failed() {
		return "", result.Err
	}
	return result.FlatText(), nil
}

// DerivePages re-derives a document from the file at path and swaps its
// stored page set.
func (s *PageService) DerivePages(ctx context.Context, documentID, path string, kind domain.Kind) ([]domain.PageText, error) {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	if _, err := s.docs.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.derive(ctx, documentID, path, kind)
}

// derive must be called with the document's lock held.
func (s *PageService) derive(ctx context.Context, documentID, path string, kind domain.Kind) ([]domain.PageText, error) {
	result := s.cascade.Run(ctx, kind, path)
	if err := ctx.Err(); err != nil {
		// A cancelled run leaves the previous page set in place.
		return nil, err
	}

	pages := s.paginator.Paginate(kind, result)
	update := domain.DerivationUpdate{
		Content:   result.FlatText(),
		Status:    domain.StatusPagesDerived,
		PageCount: len(pages),
		Strategy:  result.Strategy,
	}

	switch {
	case result.Failed() && errors.Is(result.Err, domain.ErrUnsupportedFormat):
		logger.Debug("derive %s: %v", documentID, result.Err)
		update.Status = domain.StatusNoText
	case result.Failed():
		logger.Warn("derive %s: %v", documentID, result.Err)
		update.Status = domain.StatusNoText
	case len(pages) == 0:
		update.Status = domain.StatusNoText
	}

	if err := s.pages.SaveDerivation(ctx, documentID, pages, update); err != nil {
		return nil, fmt.Errorf("saving derivation: %w", err)
	}

	logger.Debug("derive %s: %d pages via %s", documentID, len(pages), result.Strategy)
	return pages, nil
}

// CreateDocument stores a copy of the file and derives its pages.
// An empty title is taken from the file name.
func (s *PageService) CreateDocument(ctx context.Context, title, sourcePath string) (*domain.Document, error) {
	doc, unlock, err := s.register(ctx, title, sourcePath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.derive(ctx, doc.ID, doc.FilePath, doc.Kind); err != nil {
		s.discard(context.WithoutCancel(ctx), doc.ID)
		return nil, err
	}
	return s.docs.GetDocument(ctx, doc.ID)
}

// RegisterDocument copies the file into the library and creates a pending
// document without deriving its pages. Callers derive later, typically
// through the job queue.
func (s *PageService) RegisterDocument(ctx context.Context, title, sourcePath string) (*domain.Document, error) {
	doc, unlock, err := s.register(ctx, title, sourcePath)
	if err != nil {
		return nil, err
	}
	unlock()
	return doc, nil
}

// register stores the upload and saves a pending document. On success the
// document's lock is held and must be released with the returned func.
func (s *PageService) register(ctx context.Context, title, sourcePath string) (*domain.Document, func(), error) {
	if err := s.checkUpload(sourcePath); err != nil {
		return nil, nil, err
	}

	id := uuid.New().String()
	if strings.TrimSpace(title) == "" {
		title = TitleFromFilename(sourcePath)
	}

	unlock := s.locks.Lock(id)

	stored, err := s.storeFile(id, sourcePath)
	if err != nil {
		unlock()
		return nil, nil, err
	}

	now := time.Now()
	doc := &domain.Document{
		ID:        id,
		Title:     strings.TrimSpace(title),
		FilePath:  stored,
		Kind:      domain.Sniff(stored),
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		s.removeFiles(id)
		unlock()
		return nil, nil, fmt.Errorf("saving document: %w", err)
	}
	return doc, unlock, nil
}

// discard removes a document that never finished its first derivation,
// so a failed upload leaves nothing behind. The caller holds the lock.
func (s *PageService) discard(ctx context.Context, documentID string) {
	if err := s.docs.DeleteDocument(ctx, documentID); err != nil {
		logger.Warn("create %s: removing document: %v", documentID, err)
	}
	s.removeFiles(documentID)
}

// removeFiles deletes the library directory of a document.
func (s *PageService) removeFiles(documentID string) {
	if s.libraryDir == "" {
		return
	}
	if err := os.RemoveAll(filepath.Join(s.libraryDir, documentID)); err != nil {
		logger.Warn("%s: removing files: %v", documentID, err)
	}
}

// AttachFile replaces the file of a document, clears its pages and
// re-derives them.
func (s *PageService) AttachFile(ctx context.Context, documentID, sourcePath string) (*domain.Document, error) {
	if err := s.checkUpload(sourcePath); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(documentID)
	defer unlock()

	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	previous := doc.FilePath
	stored, err := s.storeFile(documentID, sourcePath)
	if err != nil {
		return nil, err
	}
	if previous != "" && previous != stored && s.inLibrary(previous) {
		if err := os.Remove(previous); err != nil && !os.IsNotExist(err) {
			logger.Warn("attach %s: removing previous file: %v", documentID, err)
		}
	}

	doc.FilePath = stored
	doc.Kind = domain.Sniff(stored)
	doc.Status = domain.StatusPending
	doc.PageCount = 0
	doc.Strategy = ""
	doc.UpdatedAt = time.Now()
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	if err := s.pages.ClearPages(ctx, documentID); err != nil {
		return nil, fmt.Errorf("clearing pages: %w", err)
	}

	if _, err := s.derive(ctx, documentID, stored, doc.Kind); err != nil {
		return nil, err
	}
	return s.docs.GetDocument(ctx, documentID)
}

// Rederive derives a document again from its stored file.
func (s *PageService) Rederive(ctx context.Context, documentID string) ([]domain.PageText, error) {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.HasFile() {
		return nil, domain.ErrNoFile
	}
	return s.derive(ctx, documentID, doc.FilePath, doc.Kind)
}

// Document returns a document by ID.
func (s *PageService) Document(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docs.GetDocument(ctx, documentID)
}

// ListDocuments returns every document.
func (s *PageService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.docs.ListDocuments(ctx)
}

// DeleteDocument removes a document, its pages and its library copy.
func (s *PageService) DeleteDocument(ctx context.Context, documentID string) error {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	if _, err := s.docs.GetDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.docs.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	s.removeFiles(documentID)
	return nil
}

// Pages returns the ordered pages of a document.
func (s *PageService) Pages(ctx context.Context, documentID string) ([]domain.Page, error) {
	if _, err := s.docs.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.pages.Pages(ctx, documentID)
}

// Page returns one page of a document.
func (s *PageService) Page(ctx context.Context, documentID string, number int) (*domain.Page, error) {
	if number < 1 {
		return nil, fmt.Errorf("page number %d: %w", number, domain.ErrInvalidInput)
	}
	return s.pages.Page(ctx, documentID, number)
}

// ClearPages removes the pages of a document and marks it pending.
// The full text is kept.
func (s *PageService) ClearPages(ctx context.Context, documentID string) error {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.pages.ClearPages(ctx, documentID); err != nil {
		return err
	}
	status := domain.StatusPending
	if !doc.HasFile() {
		status = domain.StatusNoFile
	}
	return s.docs.UpdateDerivation(ctx, documentID, domain.DerivationUpdate{
		Content: doc.Content,
		Status:  status,
	})
}

// SearchPages finds pages containing query and cuts a snippet around the
// first match in each.
func (s *PageService) SearchPages(ctx context.Context, query string, limit int) ([]domain.PageHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}

	pages, err := s.pages.SearchPages(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string)
	hits := make([]domain.PageHit, 0, len(pages))
	for _, page := range pages {
		title, ok := titles[page.DocumentID]
		if !ok {
			if doc, err := s.docs.GetDocument(ctx, page.DocumentID); err == nil {
				title = doc.Title
			}
			titles[page.DocumentID] = title
		}

		pos, snippet := Snippet(page.Text, query, snippetRadius)
		hits = append(hits, domain.PageHit{
			DocumentID:    page.DocumentID,
			DocumentTitle: title,
			PageNumber:    page.Number,
			Position:      pos,
			Snippet:       snippet,
		})
	}
	return hits, nil
}

// Capabilities lists the strategies known to the registry.
func (s *PageService) Capabilities() []domain.Capability {
	if s.capabilities == nil {
		return nil
	}
	return s.capabilities()
}

// checkUpload validates a source file before it enters the library.
func (s *PageService) checkUpload(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, domain.ErrInvalidInput)
	}
	if info.Size() > s.maxFileBytes {
		return fmt.Errorf("%s is %d bytes, limit %d: %w", path, info.Size(), s.maxFileBytes, domain.ErrFileTooLarge)
	}
	return nil
}

// storeFile copies the source into the document's library directory and
// returns the stored path.
func (s *PageService) storeFile(documentID, sourcePath string) (string, error) {
	if s.libraryDir == "" {
		return filepath.Abs(sourcePath)
	}

	dir := filepath.Join(s.libraryDir, documentID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating library dir: %w", err)
	}
	dest := filepath.Join(dir, SanitizeFilename(filepath.Base(sourcePath)))
	if err := copyFile(dest, sourcePath, s.maxFileBytes); err != nil {
		return "", err
	}
	return dest, nil
}

func (s *PageService) inLibrary(path string) bool {
	if s.libraryDir == "" {
		return false
	}
	rel, err := filepath.Rel(s.libraryDir, path)
	return err == nil && filepath.IsLocal(rel)
}

// copyFile copies src to dst, failing with domain.ErrFileTooLarge past limit.
func copyFile(dst, src string, limit int64) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening upload: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating library file: %w", err)
	}

	n, err := io.Copy(out, io.LimitReader(in, limit+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > limit {
		err = domain.ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("copying upload: %w", err)
	}
	return nil
}

// TitleFromFilename derives a display title from a file name stem.
func TitleFromFilename(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(stem)), " ")
	if stem == "" || stem == "." {
		return base
	}
	return stem
}

// SanitizeFilename keeps letters, digits, dots, dashes and underscores and
// replaces everything else with an underscore.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	clean := strings.TrimLeft(b.String(), ".")
	ext := filepath.Ext(clean)
	if strings.Trim(strings.TrimSuffix(clean, ext), "_") == "" {
		return "file" + strings.ToLower(ext)
	}
	return clean
}

// Snippet finds the first case-insensitive match of query in text and
// returns its rune offset with up to radius runes of context on each side.
// Whitespace in the snippet is collapsed. The offset is -1 when there is
// no match.
func Snippet(text, query string, radius int) (int, string) {
	hay := []rune(text)
	needle := []rune(query)
	pos := indexFold(hay, needle)
	if pos < 0 {
		return -1, ""
	}

	start := max(0, pos-radius)
	end := min(len(hay), pos+len(needle)+radius)
	snippet := strings.Join(strings.Fields(string(hay[start:end])), " ")
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(hay) {
		snippet += "..."
	}
	return pos, snippet
}

func indexFold(hay, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(hay) {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j, r := range needle {
			if unicode.ToLower(hay[i+j]) != unicode.ToLower(r) {
				continue outer
			}
		}
		return i
	}
	return -1
}
