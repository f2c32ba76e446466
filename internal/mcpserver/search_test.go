package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/mcp-vector-search/internal/embedmodel"
	"github.com/Aman-CERP/mcp-vector-search/internal/ingeststats"
	"github.com/Aman-CERP/mcp-vector-search/internal/registry"
	"github.com/Aman-CERP/mcp-vector-search/internal/vectorstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := vectorstore.New()
	reg := registry.New()
	stats := ingeststats.New()
	embedder := embedmodel.NewStaticEmbedder()
	return New(store, embedder, reg, stats, nil, true)
}

func callSearch(t *testing.T, s *Server, args any) *mcp.CallToolResult {
	t.Helper()
	body, err := json.Marshal(args)
	require.NoError(t, err)
	result, err := s.handleSearch(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: body},
	})
	require.NoError(t, err)
	return result
}

func TestHandleSearch_EmptyQuery_ReturnsErrorResult(t *testing.T) {
	// Given: a server with no stored content
	s := newTestServer(t)

	// When: search is called with an empty query
	result := callSearch(t, s, map[string]any{"query": ""})

	// Then: the call reports a tool-level error
	assert.True(t, result.IsError)
	text := result.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "Search error:")
}

func TestHandleSearch_RankedResults_ReturnedAsJSONArray(t *testing.T) {
	// Given: a server with two ingested rows of differing similarity
	s := newTestServer(t)
	queryVec, err := s.embedder.Embed(context.Background(), "football and soccer")
	require.NoError(t, err)
	otherVec, err := s.embedder.Embed(context.Background(), "cooking pasta")
	require.NoError(t, err)
	s.store.InsertAll([]vectorstore.Row{
		{FileID: "football.md", SegmentID: "football.md", Embedding: queryVec, Text: "I love playing football and soccer"},
		{FileID: "cooking.md", SegmentID: "cooking.md", Embedding: otherVec, Text: "Cooking pasta is delicious"},
	})

	// When: searching for a query closest to the football row
	result := callSearch(t, s, map[string]any{"query": "football and soccer", "limit": 2})

	// Then: the response is a ranked JSON array with the closer row first
	require.False(t, result.IsError)
	var hits []searchHit
	text := result.Content[0].(*mcp.TextContent).Text
	require.NoError(t, json.Unmarshal([]byte(text), &hits))
	require.Len(t, hits, 2)
	assert.Equal(t, "I love playing football and soccer", hits[0].Content)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestHandleSearch_UnknownMetadataKey_FailsValidation(t *testing.T) {
	// Given: a server whose registry has never observed a "lang" key
	s := newTestServer(t)

	// When: search is called filtering on that key
	result := callSearch(t, s, map[string]any{"query": "anything", "metadata": map[string]string{"lang": "go"}})

	// Then: the call fails as a validation error, not a store lookup
	assert.True(t, result.IsError)
}

func TestHandleSearch_KnownMetadataValue_FiltersResults(t *testing.T) {
	// Given: a registry that has observed lang=go and lang=py, and rows tagged accordingly
	s := newTestServer(t)
	s.registry.Observe("lang", "go")
	s.registry.Observe("lang", "py")
	vec, err := s.embedder.Embed(context.Background(), "shared text")
	require.NoError(t, err)
	s.store.InsertAll([]vectorstore.Row{
		{FileID: "a.go", SegmentID: "a.go", Embedding: vec, Text: "go file", Metadata: map[string]any{"lang": "go"}},
		{FileID: "b.py", SegmentID: "b.py", Embedding: vec, Text: "py file", Metadata: map[string]any{"lang": "py"}},
	})

	// When: searching filtered to lang=go
	result := callSearch(t, s, map[string]any{"query": "shared text", "metadata": map[string]string{"lang": "go"}})

	// Then: only the go-tagged row is returned
	require.False(t, result.IsError)
	var hits []searchHit
	text := result.Content[0].(*mcp.TextContent).Text
	require.NoError(t, json.Unmarshal([]byte(text), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "go file", hits[0].Content)
}

func TestRegisterSearchTool_RegistryKeepsValuesAcrossRebuild(t *testing.T) {
	// Given: a server whose registry has observed two values for "lang"
	s := newTestServer(t)
	s.registry.Observe("lang", "go")
	s.registry.Observe("lang", "python")

	// When: the search tool schema is (re)built
	s.registerSearchTool()

	// Then: a value observed after the rebuild sits in the registry beside
	// the earlier ones; the schema itself is not inspected here
	s.registry.Observe("lang", "rust")
	assert.ElementsMatch(t, []string{"go", "python", "rust"}, s.registry.ValuesSorted("lang"))
}
