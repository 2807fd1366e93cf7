package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudstore/pagesmith/internal/logger"
)

func TestRootCmd_HasCommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{
		"add", "attach", "derive", "extract", "sniff", "pages", "document",
		"search", "import", "watch", "capabilities", "mcp", "config", "version",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_BuilderReceivesFlags(t *testing.T) {
	_, _, restore := setupTestServices()
	defer restore()
	defer logger.SetVerbose(false)

	var got Options
	closed := false
	builder = func(_ context.Context, opts Options) (*Services, error) {
		got = opts
		return &Services{
			Pages: newMockPageService(),
			Close: func() error { closed = true; return nil },
		}, nil
	}

	out, err := execute(t, "--verbose", "--config", "/etc/pagesmith", "--data", "/srv/library", "document", "list")
	closeServices()

	require.NoError(t, err)
	assert.Contains(t, out, "Annual Report")
	assert.Equal(t, Options{ConfigDir: "/etc/pagesmith", DataDir: "/srv/library", Verbose: true}, got)
	assert.True(t, closed)
}

func TestRootCmd_BuilderError(t *testing.T) {
	_, _, restore := setupTestServices()
	defer restore()

	builder = func(context.Context, Options) (*Services, error) {
		return nil, errors.New("opening database: disk full")
	}

	_, err := execute(t, "document", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRootCmd_NoServicesCommandsSkipBuilder(t *testing.T) {
	_, _, restore := setupTestServices()
	defer restore()

	builder = func(context.Context, Options) (*Services, error) {
		t.Fatal("builder must not run")
		return nil, nil
	}

	out, err := execute(t, "sniff", "a.PDF", "b.xlsx", "c.bin")

	require.NoError(t, err)
	assert.Contains(t, out, "a.PDF\tpdf")
	assert.Contains(t, out, "b.xlsx\tspreadsheet")
	assert.Contains(t, out, "c.bin\tunknown")
}

func TestCommands_WithoutServices(t *testing.T) {
	_, _, restore := setupTestServices()
	defer restore()
	pageService = nil
	importService = nil

	for _, args := range [][]string{
		{"document", "list"},
		{"pages", "doc-1"},
		{"search", "x"},
		{"capabilities"},
		{"import", "a.pdf"},
	} {
		_, err := execute(t, args...)
		assert.Error(t, err, "%v", args)
		assert.Contains(t, err.Error(), "not configured")
	}
}
