package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/mcp-vector-search/internal/config"
	"github.com/Aman-CERP/mcp-vector-search/internal/embedmodel"
)

func writeProjectConfig(t *testing.T, dir, body string) {
	t.Helper()
	path := config.ProjectConfigPath(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestNew_LoadsConfigAndWiresCollaborators(t *testing.T) {
	// Given: a project with one filesystem source over a temp directory
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	docsDir := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "guide.md"), []byte("hello world"), 0o644))
	writeProjectConfig(t, dir, `
sources:
  - path: `+docsDir+`/*.md
`)

	// When: the system is constructed with the static embedder
	s, err := New(context.Background(), dir, embedmodel.Config{Provider: embedmodel.ProviderStatic, CacheSize: -1}, nil)

	// Then: construction succeeds and every collaborator is present
	require.NoError(t, err)
	assert.NotNil(t, s.store)
	assert.NotNil(t, s.registry)
	assert.NotNil(t, s.stats)
	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.watcher)
	require.Len(t, s.specs, 1)
}

func TestIngestAll_PopulatesStoreAndStats(t *testing.T) {
	// Given: a project with one matching file
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	docsDir := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "guide.md"), []byte("hello world"), 0o644))
	writeProjectConfig(t, dir, `
sources:
  - path: `+docsDir+`/*.md
`)
	s, err := New(context.Background(), dir, embedmodel.Config{Provider: embedmodel.ProviderStatic, CacheSize: -1}, nil)
	require.NoError(t, err)

	// When: startup ingestion runs
	s.IngestAll(context.Background())

	// Then: the store and stats reflect the one ingested file
	assert.Equal(t, 1, s.store.Len())
	status := s.stats.Status()
	assert.Equal(t, 1, status.TotalDocuments)
}

func TestNew_MissingSources_ReturnsError(t *testing.T) {
	// Given: a project directory with no config at all and no user-home config
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	// When: the system is constructed
	_, err := New(context.Background(), dir, embedmodel.Config{Provider: embedmodel.ProviderStatic, CacheSize: -1}, nil)

	// Then: the bundled default's empty sources list fails validation
	assert.Error(t, err)
}
