package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"

	"github.com/cloudstore/pagesmith/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "pagesmith.db"

// containsFunc is a Unicode-aware case-insensitive substring test.
// SQLite's own lower() and LIKE only fold ASCII.
const containsFunc = "pagesmith_contains"

func init() {
	msqlite.MustRegisterDeterministicScalarFunction(containsFunc, 2, func(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		hay, _ := args[0].(string)
		needle, _ := args[1].(string)
		if strings.Contains(strings.ToLower(hay), strings.ToLower(needle)) {
			return int64(1), nil
		}
		return int64(0), nil
	})
}

// Store is a SQLite-based storage that provides access to the document
// and page store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.pagesmith/data/pagesmith.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pagesmith", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// PageStore returns a PageStore interface backed by this store.
func (s *Store) PageStore() driven.PageStore {
	return &pageStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, title, file_path, kind, content, status, page_count, strategy, created_at, updated_at`

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			file_path = excluded.file_path,
			kind = excluded.kind,
			content = excluded.content,
			status = excluded.status,
			page_count = excluded.page_count,
			strategy = excluded.strategy,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, doc.FilePath, doc.Kind.String(), doc.Content, string(doc.Status),
		doc.PageCount, doc.Strategy, doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// ListDocuments returns every document ordered by title.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents ORDER BY title, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes a document. Its pages go with it through the
// foreign key cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// UpdateDerivation records the outcome of a re-derivation.
func (s *documentStore) UpdateDerivation(ctx context.Context, id string, update domain.DerivationUpdate) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents
		SET content = ?, status = ?, page_count = ?, strategy = ?, updated_at = ?
		WHERE id = ?
	`, update.Content, string(update.Status), update.PageCount, update.Strategy, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating derivation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating derivation: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Page Store ====================

// pageStore implements driven.PageStore.
type pageStore struct {
	store *Store
}

var _ driven.PageStore = (*pageStore)(nil)

// ReplacePages deletes the old page set and inserts the new one in a
// single transaction.
func (s *pageStore) ReplacePages(ctx context.Context, documentID string, pages []domain.PageText) error {
	return s.swap(ctx, documentID, pages, nil)
}

// SaveDerivation swaps the page set and updates the document row in the
// same transaction.
func (s *pageStore) SaveDerivation(
	ctx context.Context,
	documentID string,
	pages []domain.PageText,
	update domain.DerivationUpdate,
) error {
	return s.swap(ctx, documentID, pages, &update)
}

func (s *pageStore) swap(ctx context.Context, documentID string, pages []domain.PageText, update *domain.DerivationUpdate) error {
	for i, p := range pages {
		if p.Number != i+1 {
			return fmt.Errorf("page %d at position %d: %w", p.Number, i+1, domain.ErrInvalidInput)
		}
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE id = ?", documentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting pages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pages (document_id, page_number, text)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range pages {
		if _, err := stmt.ExecContext(ctx, documentID, p.Number, p.Text); err != nil {
			return fmt.Errorf("saving page %d: %w", p.Number, err)
		}
	}

	if update != nil {
		_, err := tx.ExecContext(ctx, `
			UPDATE documents
			SET content = ?, status = ?, page_count = ?, strategy = ?, updated_at = ?
			WHERE id = ?
		`, update.Content, string(update.Status), update.PageCount, update.Strategy, time.Now().UTC(), documentID)
		if err != nil {
			return fmt.Errorf("updating derivation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Pages returns the pages of a document ordered by number.
func (s *pageStore) Pages(ctx context.Context, documentID string) ([]domain.Page, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_id, page_number, text
		FROM pages WHERE document_id = ?
		ORDER BY page_number
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	return collectPages(rows)
}

// Page returns one page of a document.
func (s *pageStore) Page(ctx context.Context, documentID string, number int) (*domain.Page, error) {
	var p domain.Page
	err := s.store.db.QueryRowContext(ctx, `
		SELECT document_id, page_number, text
		FROM pages WHERE document_id = ? AND page_number = ?
	`, documentID, number).Scan(&p.DocumentID, &p.Number, &p.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning page: %w", err)
	}
	return &p, nil
}

// ClearPages removes all pages of a document.
func (s *pageStore) ClearPages(ctx context.Context, documentID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM pages WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing pages: %w", err)
	}
	return nil
}

// CountPages returns the number of pages stored for a document.
func (s *pageStore) CountPages(ctx context.Context, documentID string) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pages WHERE document_id = ?", documentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return n, nil
}

// SearchPages returns pages containing query, case-insensitively.
func (s *pageStore) SearchPages(ctx context.Context, query string, limit int) ([]domain.Page, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_id, page_number, text
		FROM pages WHERE `+containsFunc+`(text, ?)
		ORDER BY document_id, page_number
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching pages: %w", err)
	}
	return collectPages(rows)
}

// ==================== Helpers ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var kind, status string

	if err := row.Scan(&doc.ID, &doc.Title, &doc.FilePath, &kind, &doc.Content, &status,
		&doc.PageCount, &doc.Strategy, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Kind, _ = domain.ParseKind(kind)
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func collectPages(rows *sql.Rows) ([]domain.Page, error) {
	defer rows.Close()

	var pages []domain.Page //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.Page
		if err := rows.Scan(&p.DocumentID, &p.Number, &p.Text); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pages: %w", err)
	}
	return pages, nil
}
