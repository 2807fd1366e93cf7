package domain

import (
	"strings"
	"unicode/utf8"
)

// Method identifies the technique a strategy uses.
// The paginator picks its chunking rule from the kind and the method.
type Method int

const (
	// MethodNative reads a format directly in-process (DOCX, TXT).
	MethodNative Method = iota

	// MethodLayout is a structure-aware reader that also recovers tables.
	MethodLayout

	// MethodTextLayer reads the plain text layer of a paginated format.
	MethodTextLayer

	// MethodConverter flattens the file with an external office suite.
	MethodConverter

	// MethodOCR rasterises pages and recognises their text.
	MethodOCR
)

var methodNames = map[Method]string{
	MethodNative:    "native",
	MethodLayout:    "layout",
	MethodTextLayer: "text-layer",
	MethodConverter: "converter",
	MethodOCR:       "ocr",
}

// String returns the method name.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// Shape tags the variant held by an ExtractionResult.
type Shape int

const (
	// ShapeFailure means no usable output was produced.
	ShapeFailure Shape = iota

	// ShapePaged means the source carries intrinsic page boundaries.
	ShapePaged

	// ShapeFlat means the source has no page concept and must be chunked.
	ShapeFlat

	// ShapeParagraphs means the source is an ordered list of paragraphs.
	ShapeParagraphs
)

// SourcePage is one page as delivered by a paginated reader.
type SourcePage struct {
	// Index is the 1-based position of the page in the source.
	Index int
	Text  string
}

// Paragraph is one paragraph of a flowing document.
type Paragraph struct {
	Text string

	// BreakBefore marks a native page break preceding this paragraph.
	BreakBefore bool
}

// ExtractionResult is the transient output of one extraction strategy.
// It is never persisted.
type ExtractionResult struct {
	Shape    Shape
	Method   Method
	Strategy string

	// Pages is set for ShapePaged.
	Pages []SourcePage

	// Text is set for ShapeFlat.
	Text string

	// Paragraphs is set for ShapeParagraphs.
	Paragraphs []Paragraph

	// Err explains a ShapeFailure result.
	Err error
}

// Failure builds a failed result.
func Failure(err error) ExtractionResult {
	return ExtractionResult{Shape: ShapeFailure, Err: err}
}

// Paged builds a paged result from texts in source order.
func Paged(method Method, texts []string) ExtractionResult {
	pages := make([]SourcePage, len(texts))
	for i, text := range texts {
		pages[i] = SourcePage{Index: i + 1, Text: text}
	}
	return ExtractionResult{Shape: ShapePaged, Method: method, Pages: pages}
}

// Flat builds a flat-text result.
func Flat(method Method, text string) ExtractionResult {
	return ExtractionResult{Shape: ShapeFlat, Method: method, Text: text}
}

// Paragraphs builds a paragraph-list result.
func Paragraphs(method Method, paragraphs []Paragraph) ExtractionResult {
	return ExtractionResult{Shape: ShapeParagraphs, Method: method, Paragraphs: paragraphs}
}

// Failed reports whether the result holds no output.
func (r ExtractionResult) Failed() bool {
	return r.Shape == ShapeFailure
}

// FlatText flattens any shape into one string.
// Pages and paragraphs are joined with newlines.
func (r ExtractionResult) FlatText() string {
	switch r.Shape {
	case ShapePaged:
		parts := make([]string, len(r.Pages))
		for i, p := range r.Pages {
			parts[i] = p.Text
		}
		return strings.Join(parts, "\n")
	case ShapeFlat:
		return r.Text
	case ShapeParagraphs:
		parts := make([]string, len(r.Paragraphs))
		for i, p := range r.Paragraphs {
			parts[i] = p.Text
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

// Usable reports whether the stripped text holds at least minChars runes.
// A minChars below 1 is treated as 1: blank output is never usable.
func (r ExtractionResult) Usable(minChars int) bool {
	if r.Failed() {
		return false
	}
	if minChars < 1 {
		minChars = 1
	}
	return utf8.RuneCountInString(strings.TrimSpace(r.FlatText())) >= minChars
}
