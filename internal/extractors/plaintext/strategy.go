package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

// Name identifies the strategy.
const Name = "plaintext"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Ensure Strategy implements the interface.
var _ driven.Strategy = (*Strategy)(nil)

// Strategy reads a file as UTF-8 text.
type Strategy struct{}

// New creates a new plain text strategy.
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

// Extract returns the file content as flat text with line endings untouched.
// Content that is not valid UTF-8 is rejected.
func (s *Strategy) Extract(ctx context.Context, path string) (domain.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractionResult{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("reading text file: %w", err)
	}

	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return domain.ExtractionResult{}, fmt.Errorf("decoding text file: %w: not valid UTF-8", domain.ErrInvalidInput)
	}

	return domain.Flat(domain.MethodNative, string(content)), nil
}
