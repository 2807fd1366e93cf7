// Package ocr recognises text in rasterised PDF pages.
//
// Pages are rendered with pdftoppm and recognised with tesseract. Only the
// first MaxPages pages are processed; the page count is read with
// rsc.io/pdf so the rasteriser is never asked for pages that do not exist.
package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	rscpdf "rsc.io/pdf"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

// Name identifies the strategy.
const Name = "ocr"

// imagePrefix is the file name prefix given to rendered pages.
const imagePrefix = "page"

// Ensure Strategy implements the interface.
var _ driven.Strategy = (*Strategy)(nil)

// Config holds the OCR tool locations and settings.
type Config struct {
	// Rasterizer is the pdftoppm binary.
	Rasterizer string

	// Recognizer is the tesseract binary.
	Recognizer string

	Languages []string
	MaxPages  int
	DPI       int

	// TempDir is the parent of the per-run image directories.
	TempDir string
}

// Strategy rasterises and recognises the first pages of a PDF.
type Strategy struct {
	runner driven.CommandRunner
	cfg    Config
}

// New creates an OCR strategy.
func New(runner driven.CommandRunner, cfg Config) *Strategy {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = domain.DefaultOCRMaxPages
	}
	if cfg.DPI <= 0 {
		cfg.DPI = domain.DefaultOCRDPI
	}
	return &Strategy{runner: runner, cfg: cfg}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return Name
}

// Method returns domain.MethodOCR.
func (s *Strategy) Method() domain.Method {
	return domain.MethodOCR
}

// Extract renders up to MaxPages pages and recognises each one.
// The result carries one page per rendered image, indexed by its source
// page number.
func (s *Strategy) Extract(ctx context.Context, path string) (domain.ExtractionResult, error) {
	if s.runner == nil || s.cfg.Rasterizer == "" || s.cfg.Recognizer == "" {
		return domain.ExtractionResult{}, fmt.Errorf("%s: %w", Name, domain.ErrStrategyUnavailable)
	}

	last := s.cfg.MaxPages
	if n, err := countPages(path); err == nil && n < last {
		last = n
	}
	if last < 1 {
		return domain.ExtractionResult{}, fmt.Errorf("pdf has no pages: %w", domain.ErrUnusableOutput)
	}

	workDir, err := os.MkdirTemp(s.cfg.TempDir, "pagesmith-ocr-*")
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("creating image dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	_, err = s.runner.Run(ctx, s.cfg.Rasterizer,
		"-f", "1",
		"-l", strconv.Itoa(last),
		"-r", strconv.Itoa(s.cfg.DPI),
		"-png",
		path,
		filepath.Join(workDir, imagePrefix),
	)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("rasterising: %w", err)
	}

	images, err := renderedPages(workDir)
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	if len(images) == 0 {
		return domain.ExtractionResult{}, fmt.Errorf("rasteriser produced no images: %w", domain.ErrUnusableOutput)
	}

	langs := strings.Join(s.cfg.Languages, "+")
	pages := make([]domain.SourcePage, 0, len(images))
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return domain.ExtractionResult{}, err
		}

		args := []string{img.path, "stdout"}
		if langs != "" {
			args = append(args, "-l", langs)
		}
		out, err := s.runner.Run(ctx, s.cfg.Recognizer, args...)
		if err != nil {
			return domain.ExtractionResult{}, fmt.Errorf("recognising page %d: %w", img.number, err)
		}
		pages = append(pages, domain.SourcePage{
			Index: img.number,
			Text:  strings.TrimSpace(string(out)),
		})
	}

	return domain.ExtractionResult{
		Shape:  domain.ShapePaged,
		Method: domain.MethodOCR,
		Pages:  pages,
	}, nil
}

// countPages reads the page count from the PDF's page tree.
func countPages(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	r, err := rscpdf.NewReader(f, info.Size())
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

type renderedPage struct {
	number int
	path   string
}

// renderedPages lists the rasteriser output ordered by page number.
// pdftoppm names files <prefix>-<n>.png, zero-padding n to the width of
// the last page number.
func renderedPages(dir string) ([]renderedPage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	var pages []renderedPage
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, imagePrefix+"-") || !strings.HasSuffix(name, ".png") {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, imagePrefix+"-"), ".png"))
		if err != nil {
			continue
		}
		pages = append(pages, renderedPage{number: num, path: filepath.Join(dir, name)})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].number < pages[j].number })
	return pages, nil
}
