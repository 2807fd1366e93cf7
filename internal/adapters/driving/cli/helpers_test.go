package cli

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driving"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// mockPageService is a mock implementation of driving.PageService.
type mockPageService struct {
	documents []domain.Document
	pages     []domain.Page
	hits      []domain.PageHit
	caps      []domain.Capability
	text      string
	err       error

	lastTitle string
	lastPath  string
	lastKind  domain.Kind
	lastLimit int
	cleared   string
	deleted   string
}

var _ driving.PageService = (*mockPageService)(nil)

func newMockPageService() *mockPageService {
	return &mockPageService{
		documents: []domain.Document{
			{
				ID:        "doc-1",
				Title:     "Annual Report",
				FilePath:  "/library/files/doc-1/report.pdf",
				Kind:      domain.KindPDF,
				Status:    domain.StatusPagesDerived,
				PageCount: 2,
				Strategy:  "pdf-layout",
				CreatedAt: testTime,
				UpdatedAt: testTime,
			},
			{
				ID:        "doc-2",
				Title:     "Scan",
				Kind:      domain.KindPDF,
				Status:    domain.StatusNoText,
				CreatedAt: testTime,
				UpdatedAt: testTime,
			},
		},
		pages: []domain.Page{
			{DocumentID: "doc-1", Number: 1, Text: "first page\n"},
			{DocumentID: "doc-1", Number: 2, Text: "second page"},
		},
		hits: []domain.PageHit{{
			DocumentID:    "doc-1",
			DocumentTitle: "Annual Report",
			PageNumber:    2,
			Position:      0,
			Snippet:       "second page",
		}},
		caps: []domain.Capability{
			{Kind: domain.KindPDF, Strategy: "pdf-layout", Method: domain.MethodLayout, Priority: 1, Available: true},
			{Kind: domain.KindPDF, Strategy: "ocr", Method: domain.MethodOCR, Reason: "tesseract: binary not found"},
		},
		text: "full text",
	}
}

func (m *mockPageService) doc(id string) (*domain.Document, error) {
	for i := range m.documents {
		if m.documents[i].ID == id {
			d := m.documents[i]
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPageService) ExtractFullText(_ context.Context, path string, kind domain.Kind) (string, error) {
	m.lastPath, m.lastKind = path, kind
	return m.text, m.err
}

func (m *mockPageService) DerivePages(_ context.Context, _, _ string, _ domain.Kind) ([]domain.PageText, error) {
	return nil, m.err
}

func (m *mockPageService) CreateDocument(_ context.Context, title, path string) (*domain.Document, error) {
	m.lastTitle, m.lastPath = title, path
	if m.err != nil {
		return nil, m.err
	}
	return m.doc("doc-1")
}

func (m *mockPageService) RegisterDocument(ctx context.Context, title, path string) (*domain.Document, error) {
	return m.CreateDocument(ctx, title, path)
}

func (m *mockPageService) AttachFile(_ context.Context, id, path string) (*domain.Document, error) {
	m.lastPath = path
	if m.err != nil {
		return nil, m.err
	}
	return m.doc(id)
}

func (m *mockPageService) Rederive(_ context.Context, id string) ([]domain.PageText, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, err := m.doc(id); err != nil {
		return nil, err
	}
	out := make([]domain.PageText, len(m.pages))
	for i, p := range m.pages {
		out[i] = domain.PageText{Number: p.Number, Text: p.Text}
	}
	return out, nil
}

func (m *mockPageService) Document(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.doc(id)
}

func (m *mockPageService) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockPageService) DeleteDocument(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}

func (m *mockPageService) Pages(_ context.Context, _ string) ([]domain.Page, error) {
	return m.pages, m.err
}

func (m *mockPageService) Page(_ context.Context, _ string, number int) (*domain.Page, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.pages {
		if m.pages[i].Number == number {
			return &m.pages[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPageService) ClearPages(_ context.Context, id string) error {
	m.cleared = id
	return m.err
}

func (m *mockPageService) SearchPages(_ context.Context, _ string, limit int) ([]domain.PageHit, error) {
	m.lastLimit = limit
	return m.hits, m.err
}

func (m *mockPageService) Capabilities() []domain.Capability {
	return m.caps
}

// mockImportService is a mock implementation of driving.ImportService.
type mockImportService struct {
	results []domain.ImportResult
	err     error

	archive string
	files   []string
	all     bool
}

var _ driving.ImportService = (*mockImportService)(nil)

func (m *mockImportService) report(progress driving.ProgressFunc) ([]domain.ImportResult, error) {
	for _, r := range m.results {
		if progress != nil {
			progress(r)
		}
	}
	return m.results, m.err
}

func (m *mockImportService) ImportArchive(_ context.Context, path string, progress driving.ProgressFunc) ([]domain.ImportResult, error) {
	m.archive = path
	return m.report(progress)
}

func (m *mockImportService) ImportFiles(_ context.Context, paths []string, progress driving.ProgressFunc) ([]domain.ImportResult, error) {
	m.files = paths
	return m.report(progress)
}

func (m *mockImportService) RederiveAll(_ context.Context, progress driving.ProgressFunc) ([]domain.ImportResult, error) {
	m.all = true
	return m.report(progress)
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	values map[string]string
	err    error
}

var _ driving.SettingsService = (*mockSettingsService)(nil)

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{values: map[string]string{domain.KeyDocxMode: domain.DocxModeFixed}}
}

func (m *mockSettingsService) setting(spec domain.SettingSpec) domain.Setting {
	if v, ok := m.values[spec.Key]; ok {
		return domain.Setting{SettingSpec: spec, Value: v, Explicit: true}
	}
	return domain.Setting{SettingSpec: spec, Value: spec.Default}
}

func (m *mockSettingsService) List() []domain.Setting {
	var out []domain.Setting
	for _, spec := range domain.SettingSpecs() {
		out = append(out, m.setting(spec))
	}
	return out
}

func (m *mockSettingsService) Get(key string) (domain.Setting, error) {
	spec, ok := domain.LookupSetting(key)
	if !ok {
		return domain.Setting{}, domain.ErrInvalidInput
	}
	return m.setting(spec), nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := domain.LookupSetting(key); !ok {
		return domain.ErrInvalidInput
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Path() string {
	return "/home/user/.pagesmith/config.toml"
}

// setupTestServices installs mocks and returns them with a restore func.
func setupTestServices() (*mockPageService, *mockImportService, func()) {
	oldPages, oldJobs, oldImport, oldBuilder := pageService, jobService, importService, builder
	oldSettings, oldRoot := settingsService, extractRoot

	pages := newMockPageService()
	imports := &mockImportService{}
	pageService = pages
	importService = imports
	jobService = nil
	settingsService = newMockSettingsService()
	extractRoot = ""
	builder = nil

	return pages, imports, func() {
		pageService, jobService, importService, builder = oldPages, oldJobs, oldImport, oldBuilder
		settingsService, extractRoot = oldSettings, oldRoot
	}
}

// execute runs the root command with args and returns its output.
// Flag values are reset first because cobra keeps them between runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
