package services

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driving"
	"github.com/cloudstore/pagesmith/internal/logger"
)

// Ensure Importer implements the interface.
var _ driving.ImportService = (*Importer)(nil)

// Importer creates documents in bulk from archives and loose files and
// re-derives the whole library.
type Importer struct {
	pages        driving.PageService
	parallelism  int
	maxFileBytes int64
	tempDir      string
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithImportTempDir sets the parent directory for extracted archives.
func WithImportTempDir(dir string) ImporterOption {
	return func(i *Importer) {
		i.tempDir = dir
	}
}

// NewImporter creates an importer on top of a page service.
func NewImporter(pages driving.PageService, cfg domain.PipelineConfig, opts ...ImporterOption) *Importer {
	cfg.Normalise()
	i := &Importer{
		pages:        pages,
		parallelism:  cfg.Import.Parallelism,
		maxFileBytes: cfg.Limits.MaxFileBytes,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// batch collects results in input order and reports each one as it lands.
type batch struct {
	mu       sync.Mutex
	results  []domain.ImportResult
	progress driving.ProgressFunc
}

func newBatch(n int, progress driving.ProgressFunc) *batch {
	return &batch{results: make([]domain.ImportResult, n), progress: progress}
}

func (b *batch) set(i int, r domain.ImportResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[i] = r
	if b.progress != nil {
		b.progress(r)
	}
}

// ImportArchive imports every supported file in a ZIP archive.
// Entries are extracted to a scratch directory that is removed afterwards.
// Unsupported entries are skipped; oversized entries and entries whose
// names escape the archive root are rejected.
func (i *Importer) ImportArchive(ctx context.Context, zipPath string, progress driving.ProgressFunc) ([]domain.ImportResult, error) {
	// Non-local names are reported per entry below.
	zr, err := zip.OpenReader(zipPath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("opening archive: %w: %v", domain.ErrInvalidInput, err)
	}
	defer zr.Close()

	workDir, err := os.MkdirTemp(i.tempDir, "pagesmith-import-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	var entries []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || ignoredEntry(f.Name) {
			continue
		}
		entries = append(entries, f)
	}

	b := newBatch(len(entries), progress)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.parallelism)

	for idx, f := range entries {
		result := domain.ImportResult{Name: f.Name}

		switch {
		case !filepath.IsLocal(filepath.FromSlash(f.Name)):
			result.Status = domain.ImportRejected
			result.Message = "entry escapes archive root"
			b.set(idx, result)
			continue
		case !domain.Sniff(f.Name).Supported():
			result.Status = domain.ImportSkipped
			result.Message = "unsupported format"
			b.set(idx, result)
			continue
		case int64(f.UncompressedSize64) > i.maxFileBytes:
			result.Status = domain.ImportRejected
			result.Message = domain.ErrFileTooLarge.Error()
			b.set(idx, result)
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dest := filepath.Join(workDir, strconv.Itoa(idx), path.Base(f.Name))
			if err := i.extractEntry(f, dest); err != nil {
				b.set(idx, failedResult(f.Name, err))
				return nil
			}
			b.set(idx, i.create(gctx, f.Name, dest))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return b.results, err
	}
	return b.results, ctx.Err()
}

// ImportFiles imports loose files.
func (i *Importer) ImportFiles(ctx context.Context, paths []string, progress driving.ProgressFunc) ([]domain.ImportResult, error) {
	b := newBatch(len(paths), progress)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.parallelism)

	for idx, p := range paths {
		name := filepath.Base(p)
		if !domain.Sniff(p).Supported() {
			b.set(idx, domain.ImportResult{Name: name, Status: domain.ImportSkipped, Message: "unsupported format"})
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b.set(idx, i.create(gctx, name, p))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return b.results, err
	}
	return b.results, ctx.Err()
}

// RederiveAll re-derives every document that has a file.
func (i *Importer) RederiveAll(ctx context.Context, progress driving.ProgressFunc) ([]domain.ImportResult, error) {
	docs, err := i.pages.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	var withFile []domain.Document
	for _, doc := range docs {
		if doc.HasFile() {
			withFile = append(withFile, doc)
		}
	}

	b := newBatch(len(withFile), progress)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.parallelism)

	for idx, doc := range withFile {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := domain.ImportResult{Name: doc.Title, DocumentID: doc.ID}
			pages, err := i.pages.Rederive(gctx, doc.ID)
			if err != nil {
				result.Status = domain.ImportFailed
				result.Message = err.Error()
			} else {
				result.Status = domain.ImportDerived
				result.PageCount = len(pages)
				if len(pages) == 0 {
					result.Message = "no text found"
				}
			}
			b.set(idx, result)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return b.results, err
	}
	return b.results, ctx.Err()
}

// create makes a document from a file on disk.
func (i *Importer) create(ctx context.Context, name, filePath string) domain.ImportResult {
	doc, err := i.pages.CreateDocument(ctx, TitleFromFilename(name), filePath)
	if err != nil {
		return failedResult(name, err)
	}
	result := domain.ImportResult{
		Name:       name,
		Status:     domain.ImportCreated,
		DocumentID: doc.ID,
		PageCount:  doc.PageCount,
	}
	if doc.Status == domain.StatusNoText {
		result.Message = "no text found"
	}
	return result
}

// extractEntry writes one archive entry to dest, enforcing the size limit
// on the decompressed bytes.
func (i *Importer) extractEntry(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("reading entry: %w", err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, io.LimitReader(rc, i.maxFileBytes+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("extracting entry: %w", err)
	}
	if n > i.maxFileBytes {
		return domain.ErrFileTooLarge
	}
	return nil
}

func failedResult(name string, err error) domain.ImportResult {
	status := domain.ImportFailed
	if errors.Is(err, domain.ErrFileTooLarge) {
		status = domain.ImportRejected
	}
	logger.Warn("import %s: %v", name, err)
	return domain.ImportResult{Name: name, Status: status, Message: err.Error()}
}

// ignoredEntry filters archive metadata such as __MACOSX folders and
// dot files.
func ignoredEntry(name string) bool {
	if strings.HasPrefix(name, "__MACOSX/") {
		return true
	}
	return strings.HasPrefix(path.Base(name), ".")
}
