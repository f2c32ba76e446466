package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/mcp-vector-search/internal/embedmodel"
	"github.com/Aman-CERP/mcp-vector-search/internal/ingest"
	"github.com/Aman-CERP/mcp-vector-search/internal/ingeststats"
	"github.com/Aman-CERP/mcp-vector-search/internal/pathspec"
	"github.com/Aman-CERP/mcp-vector-search/internal/registry"
	"github.com/Aman-CERP/mcp-vector-search/internal/vectorstore"
)

func newTestWatcher(t *testing.T, dir string) (*Watcher, *vectorstore.Store) {
	t.Helper()

	spec, err := pathspec.Compile(filepath.Join(dir, "*.md"), pathspec.SourceFilesystem, nil, ingest.StrategyWholeDocument, nil, pathspec.WatchEnabled)
	require.NoError(t, err)

	store := vectorstore.New()
	reg := registry.New()
	stats := ingeststats.New()
	pipeline := ingest.NewPipeline(ingest.NewDispatcher(), embedmodel.NewStaticEmbedder())

	w := New([]*pathspec.PathSpec{spec}, pipeline, store, reg, stats, Options{DebounceWindow: 40 * time.Millisecond})
	return w, store
}

func TestWatcher_CreatedFile_IsIngestedIntoStore(t *testing.T) {
	// Given: a watcher over a temp directory with no files yet
	dir := t.TempDir()
	w, store := newTestWatcher(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// When: a matching file is created
	path := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("alpha"), 0o644))

	// Then: it eventually appears in the store
	require.Eventually(t, func() bool {
		return store.Len() == 1
	}, 3*time.Second, 10*time.Millisecond, "expected one row after create")
}

func TestWatcher_ModifiedFile_ReplacesRowsAtomically(t *testing.T) {
	// Given: a watcher that has ingested a file created after it started
	// (the watcher does no startup ingestion of its own)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")

	w, store := newTestWatcher(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()
	require.NoError(t, os.WriteFile(path, []byte("alpha"), 0o644))

	require.Eventually(t, func() bool {
		return store.Len() == 1
	}, 3*time.Second, 10*time.Millisecond, "expected initial ingest")

	// When: the file is modified
	require.NoError(t, os.WriteFile(path, []byte("beta and much more content than before"), 0o644))

	// Then: the store still has exactly one row for this file, never two
	require.Eventually(t, func() bool {
		return store.Len() == 1
	}, 3*time.Second, 10*time.Millisecond, "expected exactly one row after modify")
}

func TestWatcher_DeletedFile_RemovesRows(t *testing.T) {
	// Given: a watcher that has ingested a file created after it started
	// (the watcher does no startup ingestion of its own)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")

	w, store := newTestWatcher(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()
	require.NoError(t, os.WriteFile(path, []byte("alpha"), 0o644))

	require.Eventually(t, func() bool {
		return store.Len() == 1
	}, 3*time.Second, 10*time.Millisecond, "expected initial ingest")

	// When: the file is deleted
	require.NoError(t, os.Remove(path))

	// Then: its rows are removed from the store
	require.Eventually(t, func() bool {
		return store.Len() == 0
	}, 3*time.Second, 10*time.Millisecond, "expected row removal after delete")
}

func TestWatcher_Stop_IsIdempotentAndStopsProcessing(t *testing.T) {
	// Given: a started watcher
	dir := t.TempDir()
	w, _ := newTestWatcher(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// When: Stop is called twice
	w.Stop()

	// Then: the second call does not panic or block
	require.NotPanics(t, func() { w.Stop() })
}
