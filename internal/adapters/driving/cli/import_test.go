package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

func TestImportCmd_Archive(t *testing.T) {
	_, imports, restore := setupTestServices()
	defer restore()
	imports.results = []domain.ImportResult{
		{Name: "a.pdf", Status: domain.ImportCreated, DocumentID: "doc-a", PageCount: 3},
		{Name: "b.png", Status: domain.ImportSkipped, Message: "unsupported format"},
		{Name: "../evil.txt", Status: domain.ImportRejected, Message: "path escapes archive"},
	}

	out, err := execute(t, "import", "batch.ZIP")

	require.NoError(t, err)
	assert.Equal(t, "batch.ZIP", imports.archive)
	assert.Nil(t, imports.files)
	assert.Contains(t, out, "a.pdf (doc-a, 3 pages)")
	assert.Contains(t, out, "b.png: unsupported format")
	assert.Contains(t, out, "Total: 3 files, 1 created, 1 skipped, 1 rejected")
}

func TestImportCmd_Files(t *testing.T) {
	_, imports, restore := setupTestServices()
	defer restore()
	imports.results = []domain.ImportResult{
		{Name: "a.pdf", Status: domain.ImportCreated, DocumentID: "doc-a"},
		{Name: "b.zip", Status: domain.ImportSkipped},
	}

	out, err := execute(t, "import", "a.pdf", "b.zip")

	require.NoError(t, err)
	assert.Empty(t, imports.archive)
	assert.Equal(t, []string{"a.pdf", "b.zip"}, imports.files)
	assert.Contains(t, out, "Total: 2 files, 1 created, 1 skipped")
}

func TestImportCmd_RequiresArgs(t *testing.T) {
	_, _, restore := setupTestServices()
	defer restore()

	_, err := execute(t, "import")

	assert.Error(t, err)
}
