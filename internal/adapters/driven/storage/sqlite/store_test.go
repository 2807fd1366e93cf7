package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "pagesmith-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// createTestDocument saves a document so pages can reference it.
func createTestDocument(t *testing.T, store *Store, id, title string) *domain.Document {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	doc := &domain.Document{
		ID:        id,
		Title:     title,
		FilePath:  "/library/" + id + ".pdf",
		Kind:      domain.KindPDF,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.DocumentStore().SaveDocument(context.Background(), doc))
	return doc
}

func pageTexts(texts ...string) []domain.PageText {
	pages := make([]domain.PageText, len(texts))
	for i, text := range texts {
		pages[i] = domain.PageText{Number: i + 1, Text: text}
	}
	return pages
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(tempDir, DatabaseFile)
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "nested", "path", "to", "db")
	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var version int
	err := store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	for _, table := range []string{"documents", "pages"} {
		var tableExists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&tableExists)
		require.NoError(t, err)
		assert.Equal(t, 1, tableExists, "table %s should exist", table)
	}
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	createTestDocument(t, store, "doc-1", "Kept")
	require.NoError(t, store.Close())

	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	doc, err := store.DocumentStore().GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Kept", doc.Title)
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var fkEnabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1, fkEnabled, "foreign keys should be enabled")
}

func TestStore_Close(t *testing.T) {
	store, _ := setupTestStore(t)

	require.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

func TestStore_InterfaceGetters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NotNil(t, store.DocumentStore())
	assert.NotNil(t, store.PageStore())
}

// ==================== DocumentStore Tests ====================

func TestDocumentStore_SaveAndGetDocument(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	want := createTestDocument(t, store, "doc-1", "Annual Report")

	got, err := store.DocumentStore().GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.FilePath, got.FilePath)
	assert.Equal(t, domain.KindPDF, got.Kind)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestDocumentStore_SaveDocument_Update(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	doc := createTestDocument(t, store, "doc-1", "Draft")
	doc.Title = "Final"
	doc.Kind = domain.KindDOCX
	require.NoError(t, store.DocumentStore().SaveDocument(ctx, doc))

	got, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, domain.KindDOCX, got.Kind)
}

func TestDocumentStore_SaveDocument_Invalid(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.DocumentStore().SaveDocument(context.Background(), &domain.Document{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.DocumentStore().GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListDocuments(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	createTestDocument(t, store, "doc-c", "Charlie")
	createTestDocument(t, store, "doc-a", "Alpha")
	createTestDocument(t, store, "doc-b", "Alpha")

	docs, err := store.DocumentStore().ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "doc-a", docs[0].ID)
	assert.Equal(t, "doc-b", docs[1].ID)
	assert.Equal(t, "doc-c", docs[2].ID)
}

func TestDocumentStore_DeleteDocument_CascadesPages(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestDocument(t, store, "doc-1", "Doomed")
	require.NoError(t, store.PageStore().ReplacePages(ctx, "doc-1", pageTexts("one", "two")))

	require.NoError(t, store.DocumentStore().DeleteDocument(ctx, "doc-1"))

	_, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	n, err := store.PageStore().CountPages(ctx, "doc-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDocumentStore_UpdateDerivation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestDocument(t, store, "doc-1", "Report")
	err := store.DocumentStore().UpdateDerivation(ctx, "doc-1", domain.DerivationUpdate{
		Content:   "full text",
		Status:    domain.StatusPagesDerived,
		PageCount: 2,
		Strategy:  "pdf-layout",
	})
	require.NoError(t, err)

	got, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "full text", got.Content)
	assert.Equal(t, domain.StatusPagesDerived, got.Status)
	assert.Equal(t, 2, got.PageCount)
	assert.Equal(t, "pdf-layout", got.Strategy)
}

func TestDocumentStore_UpdateDerivation_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.DocumentStore().UpdateDerivation(context.Background(), "missing", domain.DerivationUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== PageStore Tests ====================

func TestPageStore_ReplaceAndGetPages(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	pages := store.PageStore()

	createTestDocument(t, store, "doc-1", "Report")
	require.NoError(t, pages.ReplacePages(ctx, "doc-1", pageTexts("first", "", "third")))

	got, err := pages.Pages(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, p := range got {
		assert.Equal(t, "doc-1", p.DocumentID)
		assert.Equal(t, i+1, p.Number)
	}
	assert.Equal(t, "", got[1].Text)

	page, err := pages.Page(ctx, "doc-1", 3)
	require.NoError(t, err)
	assert.Equal(t, "third", page.Text)
}

func TestPageStore_ReplacePages_ShrinksPageSet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	pages := store.PageStore()

	createTestDocument(t, store, "doc-1", "Report")
	require.NoError(t, pages.ReplacePages(ctx, "doc-1", pageTexts("a", "b", "c", "d")))
	require.NoError(t, pages.ReplacePages(ctx, "doc-1", pageTexts("x", "y")))

	n, err := pages.CountPages(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = pages.Page(ctx, "doc-1", 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPageStore_ReplacePages_RejectsGaps(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	createTestDocument(t, store, "doc-1", "Report")
	err := store.PageStore().ReplacePages(context.Background(), "doc-1", []domain.PageText{
		{Number: 1, Text: "a"},
		{Number: 3, Text: "c"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPageStore_ReplacePages_UnknownDocument(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.PageStore().ReplacePages(context.Background(), "missing", pageTexts("a"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPageStore_ReplacePages_RollsBackOnFailure(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	pages := store.PageStore()

	createTestDocument(t, store, "doc-1", "Report")
	require.NoError(t, pages.ReplacePages(ctx, "doc-1", pageTexts("old one", "old two")))

	_, err := store.db.Exec(`
		CREATE TRIGGER reject_boom BEFORE INSERT ON pages
		WHEN NEW.text = 'boom'
		BEGIN SELECT RAISE(ABORT, 'boom'); END
	`)
	require.NoError(t, err)

	err = pages.ReplacePages(ctx, "doc-1", pageTexts("new one", "boom", "new three"))
	require.Error(t, err)

	got, err := pages.Pages(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "old one", got[0].Text)
	assert.Equal(t, "old two", got[1].Text)
}

func TestPageStore_SaveDerivation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	pages := store.PageStore()
	createTestDocument(t, store, "doc-1", "Report")

	err := pages.SaveDerivation(ctx, "doc-1", pageTexts("one", "two"), domain.DerivationUpdate{
		Content:   "one\ntwo",
		Status:    domain.StatusPagesDerived,
		PageCount: 2,
		Strategy:  "pdf-layout",
	})
	require.NoError(t, err)

	doc, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", doc.Content)
	assert.Equal(t, domain.StatusPagesDerived, doc.Status)
	assert.Equal(t, 2, doc.PageCount)
	assert.Equal(t, "pdf-layout", doc.Strategy)
	count, err := pages.CountPages(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	err = pages.SaveDerivation(ctx, "missing", pageTexts("x"), domain.DerivationUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPageStore_SaveDerivation_RollsBackDocumentUpdate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	pages := store.PageStore()
	createTestDocument(t, store, "doc-1", "Report")
	require.NoError(t, pages.SaveDerivation(ctx, "doc-1", pageTexts("old"), domain.DerivationUpdate{
		Content:   "old",
		Status:    domain.StatusPagesDerived,
		PageCount: 1,
		Strategy:  "pdf-layout",
	}))

	_, err := store.db.Exec(`
		CREATE TRIGGER reject_update BEFORE UPDATE OF content ON documents
		WHEN NEW.content = 'new'
		BEGIN SELECT RAISE(ABORT, 'boom'); END
	`)
	require.NoError(t, err)

	err = pages.SaveDerivation(ctx, "doc-1", pageTexts("new", "newer"), domain.DerivationUpdate{
		Content:   "new",
		Status:    domain.StatusPagesDerived,
		PageCount: 2,
		Strategy:  "soffice",
	})
	require.Error(t, err)

	got, err := pages.Pages(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].Text)
	doc, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "old", doc.Content)
	assert.Equal(t, 1, doc.PageCount)
}

func TestPageStore_ClearPages(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	pages := store.PageStore()

	createTestDocument(t, store, "doc-1", "Report")
	require.NoError(t, pages.ReplacePages(ctx, "doc-1", pageTexts("a", "b")))
	require.NoError(t, pages.ClearPages(ctx, "doc-1"))

	got, err := pages.Pages(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPageStore_SearchPages(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	pages := store.PageStore()

	createTestDocument(t, store, "doc-b", "B")
	createTestDocument(t, store, "doc-a", "A")
	require.NoError(t, pages.ReplacePages(ctx, "doc-b", pageTexts("Quarterly REVENUE", "nothing")))
	require.NoError(t, pages.ReplacePages(ctx, "doc-a", pageTexts("intro", "revenue grew", "Привет Мир")))

	hits, err := pages.SearchPages(ctx, "revenue", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc-a", hits[0].DocumentID)
	assert.Equal(t, 2, hits[0].Number)
	assert.Equal(t, "doc-b", hits[1].DocumentID)

	limited, err := pages.SearchPages(ctx, "revenue", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	cyrillic, err := pages.SearchPages(ctx, "мир", 0)
	require.NoError(t, err)
	require.Len(t, cyrillic, 1)
	assert.Equal(t, 3, cyrillic[0].Number)

	none, err := pages.SearchPages(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ContextCancellation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.DocumentStore().SaveDocument(ctx, &domain.Document{ID: "doc-1", Title: "T"})
	assert.Error(t, err)
}
