package pdf

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

// TextLayerName identifies the text-layer strategy.
const TextLayerName = "pdf-textlayer"

// Ensure TextLayerStrategy implements the interface.
var _ driven.Strategy = (*TextLayerStrategy)(nil)

// TextLayerStrategy reads the plain text layer of each page.
type TextLayerStrategy struct{}

// NewTextLayer creates the text-layer strategy.
func NewTextLayer() *TextLayerStrategy {
	return &TextLayerStrategy{}
}

// Name returns the strategy name.
func (s *TextLayerStrategy) Name() string {
	return TextLayerName
}

// Method returns domain.MethodTextLayer.
func (s *TextLayerStrategy) Method() domain.Method {
	return domain.MethodTextLayer
}

// Extract decodes the text-showing operators of every page.
// A page whose content stream cannot be read yields empty text.
func (s *TextLayerStrategy) Extract(ctx context.Context, path string) (domain.ExtractionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("pdfcpu read: %w", err)
	}

	texts := make([]string, 0, pctx.PageCount)
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return domain.ExtractionResult{}, err
		}
		texts = append(texts, pageContentText(pctx, pageNr))
	}

	return domain.Paged(domain.MethodTextLayer, texts), nil
}

func pageContentText(pctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return textFromContent(data)
}
