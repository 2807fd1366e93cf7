package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

// Name identifies the strategy.
const Name = "docx-paragraphs"

// documentPart is the main body of a WordprocessingML package.
const documentPart = "word/document.xml"

// Ensure Strategy implements the interface.
var _ driven.Strategy = (*Strategy)(nil)

// Strategy reads DOCX paragraphs in document order and records native
// page-break markers so the paginator can split on them.
type Strategy struct{}

// New creates a new DOCX strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return Name
}

// Method returns domain.MethodNative.
func (s *Strategy) Method() domain.Method {
	return domain.MethodNative
}

// Extract returns the paragraphs of the document at path.
func (s *Strategy) Extract(ctx context.Context, path string) (domain.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractionResult{}, err
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("opening docx: %w: %v", domain.ErrInvalidInput, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return domain.ExtractionResult{}, fmt.Errorf("opening %s: %w", documentPart, err)
		}
		paragraphs, err := parseParagraphs(rc)
		rc.Close()
		if err != nil {
			return domain.ExtractionResult{}, fmt.Errorf("parsing %s: %w: %v", documentPart, domain.ErrInvalidInput, err)
		}

		return domain.Paragraphs(domain.MethodNative, paragraphs), nil
	}

	return domain.ExtractionResult{}, fmt.Errorf("%s missing: %w", documentPart, domain.ErrInvalidInput)
}

// parseParagraphs walks the document XML and collects one Paragraph per
// body-level w:p element, including paragraphs inside table cells.
// Text boxes nested inside a paragraph contribute to that paragraph.
// A paragraph holding a w:br of type "page" or a w:lastRenderedPageBreak
// is marked as starting a new page.
func parseParagraphs(r io.Reader) ([]domain.Paragraph, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []domain.Paragraph
		text       strings.Builder
		inBody     bool
		inText     bool
		depth      int
		pageBreak  bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				inBody = true
			case "p":
				if !inBody {
					continue
				}
				depth++
				if depth == 1 {
					text.Reset()
					pageBreak = false
				}
			case "t":
				inText = depth > 0
			case "tab":
				if depth > 0 {
					text.WriteByte('\t')
				}
			case "br", "cr":
				if depth == 0 {
					continue
				}
				if attr(t, "type") == "page" {
					pageBreak = true
				} else {
					text.WriteByte('\n')
				}
			case "lastRenderedPageBreak":
				if depth > 0 {
					pageBreak = true
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "body":
				inBody = false
			case "t":
				inText = false
			case "p":
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, domain.Paragraph{
						Text:        text.String(),
						BreakBefore: pageBreak,
					})
				}
			}

		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}

	return paragraphs, nil
}

// attr returns the value of the attribute with the given local name.
func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
