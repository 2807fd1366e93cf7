package pdf

import (
	"context"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

// LayoutName identifies the layout strategy.
const LayoutName = "pdf-layout"

// Ensure LayoutStrategy implements the interface.
var _ driven.Strategy = (*LayoutStrategy)(nil)

// LayoutStrategy is the structure-aware PDF reader.
type LayoutStrategy struct{}

// NewLayout creates the layout strategy.
func NewLayout() *LayoutStrategy {
	return &LayoutStrategy{}
}

// Name returns the strategy name.
func (s *LayoutStrategy) Name() string {
	return LayoutName
}

// Method returns domain.MethodLayout.
func (s *LayoutStrategy) Method() domain.Method {
	return domain.MethodLayout
}

// Extract returns one page per PDF page: the page's plain text followed by
// any table rows detected on it.
func (s *LayoutStrategy) Extract(ctx context.Context, path string) (domain.ExtractionResult, error) {
	f, r, err := lpdf.Open(path)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	texts := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return domain.ExtractionResult{}, err
		}

		text, err := layoutPageText(r.Page(i))
		if err != nil {
			return domain.ExtractionResult{}, fmt.Errorf("page %d: %w", i, err)
		}
		texts = append(texts, text)
	}

	return domain.Paged(domain.MethodLayout, texts), nil
}

// layoutPageText extracts a page's body and appends detected table rows.
func layoutPageText(page lpdf.Page) (string, error) {
	if page.V.IsNull() {
		return "", nil
	}

	body, err := page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	body = strings.TrimSpace(body)

	rows, err := page.GetTextByRow()
	if err != nil {
		// Row grouping is best-effort; the body text stands on its own.
		return body, nil
	}

	table := tableRows(linesFromRows(rows))
	if len(table) == 0 {
		return body, nil
	}
	if body == "" {
		return strings.Join(table, "\n"), nil
	}
	return body + "\n" + strings.Join(table, "\n"), nil
}

// linesFromRows converts the library's row grouping into positioned runs.
func linesFromRows(rows lpdf.Rows) [][]run {
	lines := make([][]run, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		line := make([]run, 0, len(row.Content))
		for _, t := range row.Content {
			line = append(line, run{X: t.X, W: t.W, Size: t.FontSize, S: t.S})
		}
		lines = append(lines, line)
	}
	return lines
}
