package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	amanerrors "github.com/Aman-CERP/mcp-vector-search/internal/errors"
	"github.com/Aman-CERP/mcp-vector-search/internal/vectorstore"
)

const searchToolName = "search"

const defaultSearchLimit = 10

// searchRequest is the shape of the search tool's arguments. Metadata
// is validated against the registry's observed enum before any
// embedding call is made.
type searchRequest struct {
	Query    string            `json:"query"`
	Limit    int               `json:"limit"`
	Metadata map[string]string `json:"metadata"`
}

// searchHit is one element of the JSON array the search tool returns.
type searchHit struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// registerSearchTool (re)builds the search tool's input schema from the
// current metadata registry snapshot and registers it under a fixed
// name. The schema is hand-built as *jsonschema.Schema rather than
// derived from struct tags, since that's the only approach that lets
// the metadata property's enum constraints be recomputed at
// registration time instead of fixed at compile time.
func (s *Server) registerSearchTool() {
	metadataProps := make(map[string]*jsonschema.Schema)
	for _, key := range s.registry.Keys() {
		metadataProps[key] = &jsonschema.Schema{
			Type: "string",
			Enum: stringsToAny(s.registry.ValuesSorted(key)),
		}
	}

	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "Natural-language search query.",
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of results to return (default 10).",
			},
			"metadata": {
				Type:        "object",
				Description: "Equality filters; keys and values must match observed ingestion metadata.",
				Properties:  metadataProps,
			},
		},
		Required: []string{"query"},
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        searchToolName,
		Description: "Search ingested content by semantic similarity, optionally filtered by metadata.",
		InputSchema: schema,
	}, s.handleSearch)
}

func stringsToAny(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in searchRequest
	if err := json.Unmarshal(req.Params.Arguments, &in); err != nil {
		return errorResult(amanerrors.New(amanerrors.ErrCodeInvalidInput, "malformed search arguments", err)), nil
	}

	if in.Query == "" {
		return errorResult(amanerrors.New(amanerrors.ErrCodeQueryEmpty, "query must not be empty", nil)), nil
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if err := s.validateMetadataFilter(in.Metadata); err != nil {
		return errorResult(err), nil
	}

	queryVec, err := s.embedder.Embed(ctx, in.Query)
	if err != nil {
		return errorResult(amanerrors.New(amanerrors.ErrCodeEmbeddingFailed, "failed to embed query", err)), nil
	}

	filter := vectorstore.FromEquality(in.Metadata)
	hits := s.store.Search(queryVec, limit, filter)

	out := make([]searchHit, len(hits))
	for i, h := range hits {
		out[i] = searchHit{Content: h.Text, Score: h.Score}
	}
	body, err := json.Marshal(out)
	if err != nil {
		return errorResult(amanerrors.New(amanerrors.ErrCodeInternal, "failed to encode search results", err)), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}, nil
}

// validateMetadataFilter requires that every requested key and value
// already appear in the registry's observed enum.
func (s *Server) validateMetadataFilter(metadata map[string]string) *amanerrors.AmanError {
	for key, value := range metadata {
		known := s.registry.ValuesSorted(key)
		if len(known) == 0 {
			return amanerrors.New(amanerrors.ErrCodeInvalidInput, fmt.Sprintf("unknown metadata key %q", key), nil)
		}
		found := false
		for _, v := range known {
			if v == value {
				found = true
				break
			}
		}
		if !found {
			return amanerrors.New(amanerrors.ErrCodeInvalidInput, fmt.Sprintf("unknown value %q for metadata key %q", value, key), nil)
		}
	}
	return nil
}
