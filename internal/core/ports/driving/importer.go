package driving

import (
	"context"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

// ProgressFunc receives the outcome of each file in a batch as it completes.
type ProgressFunc func(domain.ImportResult)

// ImportService creates documents in bulk.
type ImportService interface {
	// ImportArchive imports every supported file inside a ZIP archive.
	ImportArchive(ctx context.Context, zipPath string, progress ProgressFunc) ([]domain.ImportResult, error)

	// ImportFiles imports loose files.
	ImportFiles(ctx context.Context, paths []string, progress ProgressFunc) ([]domain.ImportResult, error)

	// RederiveAll re-derives the pages of every document that has a file.
	RederiveAll(ctx context.Context, progress ProgressFunc) ([]domain.ImportResult, error)
}
