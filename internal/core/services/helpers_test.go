package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudstore/pagesmith/internal/adapters/driven/storage/memory"
	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
	"github.com/cloudstore/pagesmith/internal/extractors/plaintext"
	"github.com/cloudstore/pagesmith/internal/paginator"
)

// fakeStrategy is a scripted driven.Strategy.
type fakeStrategy struct {
	name    string
	method  domain.Method
	extract func(ctx context.Context, path string) (domain.ExtractionResult, error)
	calls   atomic.Int32
}

func (f *fakeStrategy) Name() string          { return f.name }
func (f *fakeStrategy) Method() domain.Method { return f.method }

func (f *fakeStrategy) Extract(ctx context.Context, path string) (domain.ExtractionResult, error) {
	f.calls.Add(1)
	return f.extract(ctx, path)
}

func returning(name string, method domain.Method, result domain.ExtractionResult) *fakeStrategy {
	return &fakeStrategy{
		name:   name,
		method: method,
		extract: func(context.Context, string) (domain.ExtractionResult, error) {
			return result, nil
		},
	}
}

func failing(name string, err error) *fakeStrategy {
	return &fakeStrategy{
		name:   name,
		method: domain.MethodConverter,
		extract: func(context.Context, string) (domain.ExtractionResult, error) {
			return domain.ExtractionResult{}, err
		},
	}
}

func panicking(name string) *fakeStrategy {
	return &fakeStrategy{
		name:   name,
		method: domain.MethodLayout,
		extract: func(context.Context, string) (domain.ExtractionResult, error) {
			panic("malformed xref table")
		},
	}
}

// pagedStrategy returns *count paged pages on every call.
func pagedStrategy(count *atomic.Int32) *fakeStrategy {
	return &fakeStrategy{
		name:   "fake-layout",
		method: domain.MethodLayout,
		extract: func(context.Context, string) (domain.ExtractionResult, error) {
			n := int(count.Load())
			texts := make([]string, n)
			for i := range texts {
				texts[i] = fmt.Sprintf("page %d of %d", i+1, n)
			}
			return domain.Paged(domain.MethodLayout, texts), nil
		},
	}
}

// failingPageStore fails page writes on demand.
type failingPageStore struct {
	*memory.Store
	mu   sync.Mutex
	fail bool
}

func (f *failingPageStore) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *failingPageStore) failing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *failingPageStore) ReplacePages(ctx context.Context, documentID string, pages []domain.PageText) error {
	if f.failing() {
		return fmt.Errorf("disk I/O error")
	}
	return f.Store.ReplacePages(ctx, documentID, pages)
}

func (f *failingPageStore) SaveDerivation(
	ctx context.Context,
	documentID string,
	pages []domain.PageText,
	update domain.DerivationUpdate,
) error {
	if f.failing() {
		return fmt.Errorf("disk I/O error")
	}
	return f.Store.SaveDerivation(ctx, documentID, pages, update)
}

type testEnv struct {
	svc     *PageService
	store   *memory.Store
	dataDir string
	cfg     domain.PipelineConfig
}

// newTestEnv builds a page service over the memory store. TXT files use the
// real plaintext reader unless strategies overrides it.
func newTestEnv(t *testing.T, strategies map[domain.Kind][]driven.Strategy, tweak func(*domain.PipelineConfig)) *testEnv {
	t.Helper()
	cfg := domain.DefaultPipelineConfig()
	cfg.Storage.DataDir = t.TempDir()
	if tweak != nil {
		tweak(&cfg)
	}

	all := map[domain.Kind][]driven.Strategy{
		domain.KindTXT: {plaintext.New()},
	}
	for kind, list := range strategies {
		all[kind] = list
	}

	store := memory.NewStore()
	svc := NewPageService(store, store, NewCascade(all, cfg.Extraction), paginator.New(cfg), cfg)
	return &testEnv{svc: svc, store: store, dataDir: cfg.Storage.DataDir, cfg: cfg}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func numberedLines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}
