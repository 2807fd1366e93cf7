package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

func TestPagesCmd(t *testing.T) {
	t.Run("prints every page", func(t *testing.T) {
		_, _, restore := setupTestServices()
		defer restore()

		out, err := execute(t, "pages", "doc-1")

		require.NoError(t, err)
		assert.Contains(t, out, "page 1/2")
		assert.Contains(t, out, "first page\n")
		assert.Contains(t, out, "second page\n")
	})

	t.Run("single page", func(t *testing.T) {
		_, _, restore := setupTestServices()
		defer restore()

		out, err := execute(t, "pages", "doc-1", "--page", "2")

		require.NoError(t, err)
		assert.Equal(t, "second page\n", out)
	})

	t.Run("missing page", func(t *testing.T) {
		_, _, restore := setupTestServices()
		defer restore()

		_, err := execute(t, "pages", "doc-1", "-p", "9")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("no pages", func(t *testing.T) {
		pages, _, restore := setupTestServices()
		defer restore()
		pages.pages = nil

		out, err := execute(t, "pages", "doc-2")

		require.NoError(t, err)
		assert.Contains(t, out, "No pages.")
	})
}

func TestDeriveCmd(t *testing.T) {
	t.Run("one document", func(t *testing.T) {
		_, _, restore := setupTestServices()
		defer restore()

		out, err := execute(t, "derive", "doc-1")

		require.NoError(t, err)
		assert.Contains(t, out, "Document doc-1")
		assert.Contains(t, out, "2 pages via pdf-layout")
	})

	t.Run("all documents", func(t *testing.T) {
		_, imports, restore := setupTestServices()
		defer restore()
		imports.results = []domain.ImportResult{
			{Name: "Annual Report", Status: domain.ImportDerived, DocumentID: "doc-1", PageCount: 2},
			{Name: "Scan", Status: domain.ImportFailed, DocumentID: "doc-2", Message: "storage offline"},
		}

		out, err := execute(t, "derive", "--all")

		require.NoError(t, err)
		assert.True(t, imports.all)
		assert.Contains(t, out, "Annual Report (doc-1, 2 pages)")
		assert.Contains(t, out, "storage offline")
		assert.Contains(t, out, "Total: 2 files, 1 derived, 1 failed")
	})

	t.Run("argument rules", func(t *testing.T) {
		_, _, restore := setupTestServices()
		defer restore()

		_, err := execute(t, "derive")
		assert.Error(t, err)

		_, err = execute(t, "derive", "--all", "doc-1")
		assert.Error(t, err)
	})
}

func TestExtractCmd(t *testing.T) {
	t.Run("sniffs kind", func(t *testing.T) {
		pages, _, restore := setupTestServices()
		defer restore()

		out, err := execute(t, "extract", "notes.TXT")

		require.NoError(t, err)
		assert.Equal(t, domain.KindTXT, pages.lastKind)
		assert.Equal(t, "full text\n", out)
	})

	t.Run("kind override", func(t *testing.T) {
		pages, _, restore := setupTestServices()
		defer restore()

		_, err := execute(t, "extract", "blob.bin", "--kind", "docx")

		require.NoError(t, err)
		assert.Equal(t, domain.KindDOCX, pages.lastKind)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, _, restore := setupTestServices()
		defer restore()

		_, err := execute(t, "extract", "blob.bin", "-k", "bitmap")

		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown kind "bitmap"`)
	})

	t.Run("nothing extracted", func(t *testing.T) {
		pages, _, restore := setupTestServices()
		defer restore()
		pages.err = domain.ErrCascadeExhausted

		_, err := execute(t, "extract", "scan.pdf")

		assert.ErrorIs(t, err, domain.ErrCascadeExhausted)
	})
}

func TestCapabilitiesCmd(t *testing.T) {
	_, _, restore := setupTestServices()
	defer restore()

	out, err := execute(t, "capabilities")

	require.NoError(t, err)
	assert.Contains(t, out, "Available:")
	assert.Contains(t, out, "pdf-layout")
	assert.Contains(t, out, "Unavailable:")
	assert.Contains(t, out, "tesseract: binary not found")
}
