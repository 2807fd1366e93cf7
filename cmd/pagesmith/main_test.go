package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudstore/pagesmith/internal/adapters/driven/config/file"
	"github.com/cloudstore/pagesmith/internal/adapters/driving/cli"
	"github.com/cloudstore/pagesmith/internal/core/domain"
)

func TestBuild_SQLiteLibrary(t *testing.T) {
	configDir := t.TempDir()
	dataDir := t.TempDir()

	svc, err := build(context.Background(), cli.Options{ConfigDir: configDir, DataDir: dataDir})
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	require.NotNil(t, svc.Pages)
	require.NotNil(t, svc.Jobs)
	require.NotNil(t, svc.Import)
	assert.FileExists(t, filepath.Join(dataDir, "pagesmith.db"))

	src := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello\nworld\n"), 0o644))

	doc, err := svc.Pages.CreateDocument(context.Background(), "", src)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPagesDerived, doc.Status)
	assert.Equal(t, 1, doc.PageCount)
	assert.Equal(t, filepath.Join(dataDir, "files", doc.ID, "notes.txt"), doc.FilePath)

	var txt bool
	for _, c := range svc.Pages.Capabilities() {
		if c.Kind == domain.KindTXT && c.Available {
			txt = true
		}
	}
	assert.True(t, txt, "plain text strategy should always be registered")
}

func TestBuild_ConfigSelectsMemoryStore(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"),
		[]byte("[storage]\ndriver = \"memory\"\n"), 0o600))

	svc, err := build(context.Background(), cli.Options{ConfigDir: configDir, DataDir: t.TempDir()})
	require.NoError(t, err)

	assert.Nil(t, svc.Close)
	docs, err := svc.Pages.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestBuild_UnknownDriver(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"),
		[]byte("[storage]\ndriver = \"oracle\"\n"), 0o600))

	_, err := build(context.Background(), cli.Options{ConfigDir: configDir, DataDir: t.TempDir()})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpenConfig_Defaults(t *testing.T) {
	cfg := file.LoadPipelineConfig(openConfig(t.TempDir()))

	assert.Equal(t, domain.DefaultPipelineConfig().Pagination, cfg.Pagination)
	assert.Equal(t, domain.StorageSQLite, cfg.Storage.Driver)
}

func TestBuild_SettingsOnlySkipsStorage(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"),
		[]byte("[storage]\ndriver = \"oracle\"\n"), 0o600))

	svc, err := build(context.Background(), cli.Options{ConfigDir: configDir, SettingsOnly: true})
	require.NoError(t, err)
	require.NotNil(t, svc.Settings)
	assert.Nil(t, svc.Pages)

	require.NoError(t, svc.Settings.Set(domain.KeyStorageDriver, domain.StorageMemory))

	svc, err = build(context.Background(), cli.Options{ConfigDir: configDir, DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.Nil(t, svc.Close)
}

func TestBuild_ExtractRoot(t *testing.T) {
	dataDir := t.TempDir()
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"),
		[]byte("[storage]\ndriver = \"memory\"\n"), 0o600))

	svc, err := build(context.Background(), cli.Options{ConfigDir: configDir, DataDir: dataDir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "files"), svc.ExtractRoot)

	require.NoError(t, svc.Settings.Set(domain.KeyMCPAllowedDir, "/srv/inbox"))
	svc, err = build(context.Background(), cli.Options{ConfigDir: configDir, DataDir: dataDir})
	require.NoError(t, err)
	assert.Equal(t, "/srv/inbox", svc.ExtractRoot)
}
