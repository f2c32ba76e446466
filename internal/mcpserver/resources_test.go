package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/mcp-vector-search/internal/pathspec"
)

func TestIngestionMetadataResource_ReflectsConfiguredSpecsAndRegistry(t *testing.T) {
	// Given: a server with one filesystem spec carrying a "lang" capture
	s := newTestServer(t)
	spec, err := pathspec.Compile("src/(?<lang>go|py)/**", pathspec.SourceFilesystem, nil, "whole-document", nil, pathspec.WatchDefault)
	require.NoError(t, err)
	s.specs = []*pathspec.PathSpec{spec}
	s.registry.Observe("lang", "go")
	s.registry.Observe("lang", "py")

	// When: the path-spec metadata snapshot is built
	out := s.pathSpecMetadata()

	// Then: it reports the spec's raw path and the observed capture values
	require.Len(t, out, 1)
	assert.Equal(t, spec.Raw, out[0].Path)
	assert.ElementsMatch(t, []string{"go", "py"}, out[0].Captures["lang"])
}

func TestWatchStatsResource_ResolvesTriStateAgainstGlobalDefault(t *testing.T) {
	// Given: a server whose global watch default is true, and one spec
	// that explicitly disables watching
	s := newTestServer(t)
	spec, err := pathspec.Compile("docs/**", pathspec.SourceFilesystem, nil, "whole-document", nil, pathspec.WatchDisabled)
	require.NoError(t, err)
	s.specs = []*pathspec.PathSpec{spec}
	s.watchDefault = true

	// When: the watch-stats snapshot is built
	out := s.watchStats()

	// Then: the explicit disable wins over the global default
	require.Len(t, out, 1)
	assert.False(t, out[0].Watched)
}

func TestIngestionStatusResource_ReadsStatsSnapshot(t *testing.T) {
	// Given: a server whose stats have recorded one processed file
	s := newTestServer(t)
	s.stats.RecordProcessed("docs/*.md", 3)

	// When: the status snapshot backing the ingestion://status resource is read
	status := s.stats.Status()

	// Then: the snapshot reflects the recorded document and segment counts
	assert.Equal(t, 1, status.TotalDocuments)
	assert.Equal(t, 3, status.TotalSegments)
}

func TestAddJSONResource_RegistersWithoutPanicOnEmptySpecSet(t *testing.T) {
	// Given: a server with no configured specs
	s := newTestServer(t)

	// When/Then: registering an additional JSON resource and computing the
	// zero-spec snapshots used by other resources does not panic
	assert.NotPanics(t, func() {
		s.addJSONResource("ingestion://test", "test", "test resource", func(ctx context.Context) (any, error) {
			return struct {
				Value int `json:"value"`
			}{Value: 7}, nil
		})
	})
	assert.Empty(t, s.pathSpecMetadata())
	assert.Empty(t, s.watchStats())
}
