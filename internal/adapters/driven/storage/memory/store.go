// Package memory provides in-memory implementations of the driven ports.
// They back tests and dry runs where nothing needs to survive the process.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

// Ensure Store implements both storage ports.
var (
	_ driven.DocumentStore = (*Store)(nil)
	_ driven.PageStore     = (*Store)(nil)
)

// Store keeps documents and their pages in maps.
type Store struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	pages     map[string][]domain.Page
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents: make(map[string]domain.Document),
		pages:     make(map[string][]domain.Page),
	}
}

// SaveDocument stores or updates a document.
func (s *Store) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns every document ordered by title, then ID.
func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		result = append(result, doc)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Title != result[j].Title {
			return result[i].Title < result[j].Title
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// DeleteDocument removes a document and its pages.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.pages, id)
	return nil
}

// UpdateDerivation records the outcome of a re-derivation.
func (s *Store) UpdateDerivation(_ context.Context, id string, update domain.DerivationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Content = update.Content
	doc.Status = update.Status
	doc.PageCount = update.PageCount
	doc.Strategy = update.Strategy
	doc.UpdatedAt = time.Now()
	s.documents[id] = doc
	return nil
}

// ReplacePages swaps the page set of a document in one step.
func (s *Store) ReplacePages(_ context.Context, documentID string, pages []domain.PageText) error {
	return s.swap(documentID, pages, nil)
}

// SaveDerivation swaps the page set and records the derivation under one
// lock.
func (s *Store) SaveDerivation(
	_ context.Context,
	documentID string,
	pages []domain.PageText,
	update domain.DerivationUpdate,
) error {
	return s.swap(documentID, pages, &update)
}

func (s *Store) swap(documentID string, pages []domain.PageText, update *domain.DerivationUpdate) error {
	replaced := make([]domain.Page, len(pages))
	for i, p := range pages {
		if p.Number != i+1 {
			return domain.ErrInvalidInput
		}
		replaced[i] = domain.Page{DocumentID: documentID, Number: p.Number, Text: p.Text}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return domain.ErrNotFound
	}
	if len(replaced) == 0 {
		delete(s.pages, documentID)
	} else {
		s.pages[documentID] = replaced
	}
	if update != nil {
		doc.Content = update.Content
		doc.Status = update.Status
		doc.PageCount = update.PageCount
		doc.Strategy = update.Strategy
		doc.UpdatedAt = time.Now()
		s.documents[documentID] = doc
	}
	return nil
}

// Pages returns the pages of a document ordered by number.
func (s *Store) Pages(_ context.Context, documentID string) ([]domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pages := s.pages[documentID]
	result := make([]domain.Page, len(pages))
	copy(result, pages)
	return result, nil
}

// Page returns one page of a document.
func (s *Store) Page(_ context.Context, documentID string, number int) (*domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pages := s.pages[documentID]
	if number < 1 || number > len(pages) {
		return nil, domain.ErrNotFound
	}
	page := pages[number-1]
	return &page, nil
}

// ClearPages removes all pages of a document.
func (s *Store) ClearPages(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, documentID)
	return nil
}

// CountPages returns the number of pages stored for a document.
func (s *Store) CountPages(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages[documentID]), nil
}

// SearchPages returns pages containing query, case-insensitively, ordered
// by document ID and page number.
func (s *Store) SearchPages(_ context.Context, query string, limit int) ([]domain.Page, error) {
	needle := strings.ToLower(query)
	if needle == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.pages))
	for id := range s.pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var result []domain.Page
	for _, id := range ids {
		for _, page := range s.pages[id] {
			if strings.Contains(strings.ToLower(page.Text), needle) {
				result = append(result, page)
				if limit > 0 && len(result) == limit {
					return result, nil
				}
			}
		}
	}
	return result, nil
}
