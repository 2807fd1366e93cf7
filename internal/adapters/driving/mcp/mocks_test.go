package mcp

import (
	"context"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driving"
)

// mockPageService is a mock implementation of driving.PageService.
type mockPageService struct {
	documents []domain.Document
	document  *domain.Document
	page      *domain.Page
	hits      []domain.PageHit
	text      string
	err       error

	lastPath  string
	lastKind  domain.Kind
	lastLimit int
	rederived string
}

var _ driving.PageService = (*mockPageService)(nil)

func (m *mockPageService) ExtractFullText(_ context.Context, path string, kind domain.Kind) (string, error) {
	m.lastPath, m.lastKind = path, kind
	return m.text, m.err
}

func (m *mockPageService) DerivePages(_ context.Context, _, _ string, _ domain.Kind) ([]domain.PageText, error) {
	return nil, m.err
}

func (m *mockPageService) CreateDocument(_ context.Context, _, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockPageService) RegisterDocument(_ context.Context, _, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockPageService) AttachFile(_ context.Context, _, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockPageService) Rederive(_ context.Context, id string) ([]domain.PageText, error) {
	m.rederived = id
	return nil, m.err
}

func (m *mockPageService) Document(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockPageService) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockPageService) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockPageService) Pages(_ context.Context, _ string) ([]domain.Page, error) {
	return nil, m.err
}

func (m *mockPageService) Page(_ context.Context, _ string, _ int) (*domain.Page, error) {
	return m.page, m.err
}

func (m *mockPageService) ClearPages(_ context.Context, _ string) error {
	return m.err
}

func (m *mockPageService) SearchPages(_ context.Context, _ string, limit int) ([]domain.PageHit, error) {
	m.lastLimit = limit
	return m.hits, m.err
}

func (m *mockPageService) Capabilities() []domain.Capability {
	return nil
}

// mockJobService is a mock implementation of driving.JobService.
type mockJobService struct {
	job domain.Job
	err error
}

var _ driving.JobService = (*mockJobService)(nil)

func (m *mockJobService) Enqueue(_ context.Context, id string) (domain.Job, error) {
	job := m.job
	job.DocumentID = id
	return job, m.err
}

func (m *mockJobService) Job(_ string) (domain.Job, error) {
	return m.job, m.err
}

func (m *mockJobService) List() []domain.Job {
	return []domain.Job{m.job}
}

func (m *mockJobService) Start(_ context.Context) error {
	return nil
}

func (m *mockJobService) Stop() error {
	return nil
}

func (m *mockJobService) IsRunning() bool {
	return true
}
