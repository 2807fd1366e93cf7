package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

//go:embed schema.sql
var schema string

// Store is a PostgreSQL-backed storage exposing the document and page
// store interfaces through wrapper types.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database at dsn and applies the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn: %w", domain.ErrInvalidInput)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// PageStore returns a PageStore interface backed by this store.
func (s *Store) PageStore() driven.PageStore {
	return &pageStore{store: s}
}

// ==================== Document Store ====================

type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, title, file_path, kind, content, status, page_count, strategy, created_at, updated_at`

func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.pool.Exec(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			file_path = EXCLUDED.file_path,
			kind = EXCLUDED.kind,
			content = EXCLUDED.content,
			status = EXCLUDED.status,
			page_count = EXCLUDED.page_count,
			strategy = EXCLUDED.strategy,
			updated_at = EXCLUDED.updated_at
	`, doc.ID, doc.Title, doc.FilePath, doc.Kind.String(), doc.Content, string(doc.Status),
		doc.PageCount, doc.Strategy, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
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

func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.store.pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

func (s *documentStore) UpdateDerivation(ctx context.Context, id string, update domain.DerivationUpdate) error {
	tag, err := s.store.pool.Exec(ctx, `
		UPDATE documents
		SET content = $1, status = $2, page_count = $3, strategy = $4, updated_at = $5
		WHERE id = $6
	`, update.Content, string(update.Status), update.PageCount, update.Strategy, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating derivation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Page Store ====================

type pageStore struct {
	store *Store
}

var _ driven.PageStore = (*pageStore)(nil)

// ReplacePages locks the document row, deletes its pages and copies the
// new set in, all inside one transaction.
func (s *pageStore) ReplacePages(ctx context.Context, documentID string, pages []domain.PageText) error {
	return s.swap(ctx, documentID, pages, nil)
}

// SaveDerivation is ReplacePages plus the document row update, committed
// together.
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

	tx, err := s.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var id string
	err = tx.QueryRow(ctx, "SELECT id FROM documents WHERE id = $1 FOR UPDATE", documentID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("locking document: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM pages WHERE document_id = $1", documentID); err != nil {
		return fmt.Errorf("deleting pages: %w", err)
	}

	rows := make([][]any, len(pages))
	for i, p := range pages {
		rows[i] = []any{documentID, p.Number, p.Text}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"pages"},
		[]string{"document_id", "page_number", "text"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("saving pages: %w", err)
	}

	if update != nil {
		_, err := tx.Exec(ctx, `
			UPDATE documents
			SET content = $1, status = $2, page_count = $3, strategy = $4, updated_at = $5
			WHERE id = $6
		`, update.Content, string(update.Status), update.PageCount, update.Strategy, time.Now().UTC(), documentID)
		if err != nil {
			return fmt.Errorf("updating derivation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *pageStore) Pages(ctx context.Context, documentID string) ([]domain.Page, error) {
	rows, err := s.store.pool.Query(ctx, `
		SELECT document_id, page_number, text
		FROM pages WHERE document_id = $1
		ORDER BY page_number
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	return collectPages(rows)
}

func (s *pageStore) Page(ctx context.Context, documentID string, number int) (*domain.Page, error) {
	var p domain.Page
	err := s.store.pool.QueryRow(ctx, `
		SELECT document_id, page_number, text
		FROM pages WHERE document_id = $1 AND page_number = $2
	`, documentID, number).Scan(&p.DocumentID, &p.Number, &p.Text)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning page: %w", err)
	}
	return &p, nil
}

func (s *pageStore) ClearPages(ctx context.Context, documentID string) error {
	if _, err := s.store.pool.Exec(ctx, "DELETE FROM pages WHERE document_id = $1", documentID); err != nil {
		return fmt.Errorf("clearing pages: %w", err)
	}
	return nil
}

func (s *pageStore) CountPages(ctx context.Context, documentID string) (int, error) {
	var n int
	err := s.store.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM pages WHERE document_id = $1", documentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return n, nil
}

// SearchPages matches with position() over lower() so that LIKE
// metacharacters in the query are taken literally.
func (s *pageStore) SearchPages(ctx context.Context, query string, limit int) ([]domain.Page, error) {
	if query == "" {
		return nil, nil
	}
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := s.store.pool.Query(ctx, `
		SELECT document_id, page_number, text
		FROM pages WHERE position(lower($1) IN lower(text)) > 0
		ORDER BY document_id, page_number
		LIMIT $2
	`, query, lim)
	if err != nil {
		return nil, fmt.Errorf("searching pages: %w", err)
	}
	return collectPages(rows)
}

// ==================== Helpers ====================

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	var kind, status string

	if err := row.Scan(&doc.ID, &doc.Title, &doc.FilePath, &kind, &doc.Content, &status,
		&doc.PageCount, &doc.Strategy, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Kind, _ = domain.ParseKind(kind)
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func collectPages(rows pgx.Rows) ([]domain.Page, error) {
	pages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Page, error) {
		var p domain.Page
		err := row.Scan(&p.DocumentID, &p.Number, &p.Text)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning pages: %w", err)
	}
	return pages, nil
}
