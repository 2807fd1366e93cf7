// Package paginator turns extraction results into numbered pages.
//
// The chunking rule depends on the shape of the result and the method that
// produced it:
//
//   - paged results keep the source page boundaries
//   - OCR pages carry a "--- Page N ---" header
//   - converter output is cut into fixed rune windows, blank windows dropped
//   - paragraph lists split at page breaks or every N paragraphs
//   - native flat text is cut every N lines with no blank filtering
//
// Every result is numbered 1..N after filtering.
package paginator

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

// PlaceholderText is stored as the only page when extraction fails and
// placeholders are enabled.
const PlaceholderText = "Text could not be extracted from this document."

// Paginator applies the configured chunking rules.
type Paginator struct {
	chunkChars         int
	paragraphsPerPage  int
	docxMode           string
	linesPerPage       int
	placeholderOnError bool
}

// New creates a paginator from the pipeline configuration.
// Zero or invalid sizes fall back to the defaults.
func New(cfg domain.PipelineConfig) *Paginator {
	cfg.Normalise()
	return &Paginator{
		chunkChars:         cfg.Pagination.ConverterChunkChars,
		paragraphsPerPage:  cfg.Pagination.DocxParagraphsPerPage,
		docxMode:           cfg.Pagination.DocxMode,
		linesPerPage:       cfg.Pagination.TxtLinesPerPage,
		placeholderOnError: cfg.Extraction.PlaceholderOnFailure,
	}
}

// Paginate converts one extraction result into pages.
// Unsupported formats always yield zero pages.
func (p *Paginator) Paginate(kind domain.Kind, result domain.ExtractionResult) []domain.PageText {
	switch result.Shape {
	case domain.ShapePaged:
		return p.paged(result)
	case domain.ShapeFlat:
		if result.Method == domain.MethodNative || (kind == domain.KindTXT && result.Method != domain.MethodConverter) {
			return number(ByLines(result.Text, p.linesPerPage))
		}
		return number(ByRunes(result.Text, p.chunkChars))
	case domain.ShapeParagraphs:
		return number(p.paragraphs(result.Paragraphs))
	default:
		return p.failure(result.Err)
	}
}

func (p *Paginator) paged(result domain.ExtractionResult) []domain.PageText {
	texts := make([]string, len(result.Pages))
	for i, page := range result.Pages {
		if result.Method == domain.MethodOCR {
			texts[i] = fmt.Sprintf("--- Page %d ---\n%s", page.Index, page.Text)
			continue
		}
		texts[i] = page.Text
	}
	return number(texts)
}

func (p *Paginator) paragraphs(paragraphs []domain.Paragraph) []string {
	if len(paragraphs) == 0 {
		return nil
	}
	switch p.docxMode {
	case domain.DocxModeFixed:
		return ByParagraphs(paragraphs, p.paragraphsPerPage)
	case domain.DocxModePageBreaks:
		return ByPageBreaks(paragraphs)
	default:
		if hasBreaks(paragraphs) {
			return ByPageBreaks(paragraphs)
		}
		return ByParagraphs(paragraphs, p.paragraphsPerPage)
	}
}

func (p *Paginator) failure(err error) []domain.PageText {
	if !p.placeholderOnError || errors.Is(err, domain.ErrUnsupportedFormat) {
		return nil
	}
	return []domain.PageText{{Number: 1, Text: PlaceholderText}}
}

// ByRunes cuts text into windows of size runes and drops windows that are
// blank after trimming whitespace.
func ByRunes(text string, size int) []string {
	if size <= 0 {
		size = domain.DefaultConverterChunkChars
	}

	var chunks []string
	for len(text) > 0 {
		end := len(text)
		count := 0
		for i := range text {
			if count == size {
				end = i
				break
			}
			count++
		}
		chunk := text[:end]
		text = text[end:]
		if strings.TrimFunc(chunk, unicode.IsSpace) == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// ByLines groups text into windows of size lines with line endings kept.
// Blank windows are kept; a trailing newline does not open a new window.
func ByLines(text string, size int) []string {
	if size <= 0 {
		size = domain.DefaultTxtLinesPerPage
	}
	if text == "" {
		return nil
	}

	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	chunks := make([]string, 0, len(lines)/size+1)
	for start := 0; start < len(lines); start += size {
		end := min(start+size, len(lines))
		chunks = append(chunks, strings.Join(lines[start:end], ""))
	}
	return chunks
}

// ByParagraphs joins every size paragraphs with newlines.
func ByParagraphs(paragraphs []domain.Paragraph, size int) []string {
	if size <= 0 {
		size = domain.DefaultDocxParagraphsPerPage
	}

	chunks := make([]string, 0, len(paragraphs)/size+1)
	for start := 0; start < len(paragraphs); start += size {
		end := min(start+size, len(paragraphs))
		chunks = append(chunks, joinParagraphs(paragraphs[start:end]))
	}
	return chunks
}

// ByPageBreaks starts a new page at every paragraph marked BreakBefore,
// unless the current page is still empty.
func ByPageBreaks(paragraphs []domain.Paragraph) []string {
	var chunks []string
	var current []domain.Paragraph
	for _, para := range paragraphs {
		if para.BreakBefore && len(current) > 0 {
			chunks = append(chunks, joinParagraphs(current))
			current = nil
		}
		current = append(current, para)
	}
	if len(current) > 0 {
		chunks = append(chunks, joinParagraphs(current))
	}
	return chunks
}

func hasBreaks(paragraphs []domain.Paragraph) bool {
	for _, para := range paragraphs {
		if para.BreakBefore {
			return true
		}
	}
	return false
}

func joinParagraphs(paragraphs []domain.Paragraph) string {
	parts := make([]string, len(paragraphs))
	for i, para := range paragraphs {
		parts[i] = para.Text
	}
	return strings.Join(parts, "\n")
}

// number assigns contiguous 1-based page numbers.
func number(texts []string) []domain.PageText {
	if len(texts) == 0 {
		return nil
	}
	pages := make([]domain.PageText, len(texts))
	for i, text := range texts {
		pages[i] = domain.PageText{Number: i + 1, Text: text}
	}
	return pages
}
