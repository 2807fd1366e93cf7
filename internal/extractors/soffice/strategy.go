// Package soffice converts documents to text with a headless office suite.
//
// Each conversion runs in a private temporary directory holding both the
// output file and a throwaway user profile, so concurrent conversions do
// not contend for the suite's profile lock. The directory is removed on
// every exit path.
package soffice

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

// Name identifies the strategy.
const Name = "soffice"

// Target is a --convert-to argument: an output extension optionally
// followed by a filter name and filter options.
type Target string

// Conversion targets.
const (
	// TargetText converts writer documents to UTF-8 plain text.
	TargetText Target = "txt:Text (encoded):UTF8"

	// TargetCSV converts the first sheet of a spreadsheet to UTF-8 CSV.
	TargetCSV Target = "csv:Text - txt - csv (StarCalc):44,34,76"

	// TargetHTML converts presentations to HTML.
	TargetHTML Target = "html"
)

// PDFImportFilter opens a PDF in the writer instead of the drawing
// component, so it can be saved as text.
const PDFImportFilter = "writer_pdf_import"

// Extension returns the output file extension of the target.
func (t Target) Extension() string {
	ext, _, _ := strings.Cut(string(t), ":")
	return ext
}

// TargetFor returns the conversion target used for a kind.
func TargetFor(kind domain.Kind) Target {
	switch kind {
	case domain.KindSpreadsheet:
		return TargetCSV
	case domain.KindPresentation:
		return TargetHTML
	default:
		return TargetText
	}
}

// InputFilterFor returns the --infilter needed to reach the kind's target,
// or "" when the suite's own detection is enough.
func InputFilterFor(kind domain.Kind) string {
	if kind == domain.KindPDF {
		return PDFImportFilter
	}
	return ""
}

// Ensure Strategy implements the interface.
var _ driven.Strategy = (*Strategy)(nil)

// Strategy flattens a document through the office suite.
type Strategy struct {
	runner   driven.CommandRunner
	binary   string
	target   Target
	infilter string
	tmpDir   string
}

// Option configures a Strategy.
type Option func(*Strategy)

// WithTempDir sets the parent of the per-conversion directories.
// Defaults to os.TempDir().
func WithTempDir(dir string) Option {
	return func(s *Strategy) {
		s.tmpDir = dir
	}
}

// WithInputFilter forces the import filter used to open the input.
func WithInputFilter(name string) Option {
	return func(s *Strategy) {
		s.infilter = name
	}
}

// New creates a strategy converting to target with the given binary.
func New(runner driven.CommandRunner, binary string, target Target, opts ...Option) *Strategy {
	s := &Strategy{
		runner: runner,
		binary: binary,
		target: target,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return Name
}

// Method returns domain.MethodConverter.
func (s *Strategy) Method() domain.Method {
	return domain.MethodConverter
}

// Target returns the conversion target.
func (s *Strategy) Target() Target {
	return s.target
}

// InputFilter returns the forced import filter, if any.
func (s *Strategy) InputFilter() string {
	return s.infilter
}

// Extract converts the file and returns its text as a flat result.
func (s *Strategy) Extract(ctx context.Context, path string) (domain.ExtractionResult, error) {
	if s.runner == nil || s.binary == "" {
		return domain.ExtractionResult{}, fmt.Errorf("%s: %w", Name, domain.ErrStrategyUnavailable)
	}

	workDir, err := os.MkdirTemp(s.tmpDir, "pagesmith-soffice-*")
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("creating conversion dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	outDir := filepath.Join(workDir, "out")
	if err := os.Mkdir(outDir, 0700); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("creating output dir: %w", err)
	}
	profile := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(workDir, "profile"))}

	args := []string{
		"--headless",
		"--norestore",
		"--nolockcheck",
		"-env:UserInstallation=" + profile.String(),
	}
	if s.infilter != "" {
		args = append(args, "--infilter="+s.infilter)
	}
	args = append(args,
		"--convert-to", string(s.target),
		"--outdir", outDir,
		path,
	)
	if _, err := s.runner.Run(ctx, s.binary, args...); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("converting to %s: %w", s.target.Extension(), err)
	}

	output, err := findOutput(outDir, path, s.target.Extension())
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	var text string
	if s.target.Extension() == "html" {
		text, err = readHTML(outDir, output)
	} else {
		text, err = readText(output)
	}
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	return domain.Flat(domain.MethodConverter, text), nil
}

// findOutput locates the converted file: <stem>.<ext> when present,
// otherwise the single file the suite wrote.
func findOutput(outDir, input, ext string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	expected := filepath.Join(outDir, stem+"."+ext)
	if _, err := os.Stat(expected); err == nil {
		return expected, nil
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", fmt.Errorf("listing output dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), "."+ext) {
			return filepath.Join(outDir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("converter produced no .%s output: %w", ext, domain.ErrUnusableOutput)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readText reads a converted text or CSV file.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading converted file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("converted text: %w: not valid UTF-8", domain.ErrUnusableOutput)
	}
	return string(data), nil
}

// slidePage matches the per-slide text pages a presentation export writes
// next to its index file.
var slidePage = regexp.MustCompile(`^text(\d+)\.html?$`)

// readHTML flattens an HTML export. When the export is split into
// per-slide text pages those are read in slide order instead of the index.
func readHTML(outDir, main string) (string, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", fmt.Errorf("listing output dir: %w", err)
	}
	type slide struct {
		n    int
		path string
	}
	var slides []slide
	for _, entry := range entries {
		m := slidePage.FindStringSubmatch(entry.Name())
		if entry.IsDir() || m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slide{n: n, path: filepath.Join(outDir, entry.Name())})
	}
	if len(slides) == 0 {
		return flattenHTMLFile(main)
	}

	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })
	parts := make([]string, 0, len(slides))
	for _, sl := range slides {
		text, err := flattenHTMLFile(sl.path)
		if err != nil {
			return "", err
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func flattenHTMLFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading converted file: %w", err)
	}
	return flattenHTML(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
}
