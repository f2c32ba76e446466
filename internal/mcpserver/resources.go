package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// resourceMIMEType is used by every ingestion:// resource; all five are
// JSON documents.
const resourceMIMEType = "application/json"

// registerResources registers the five ingestion:// status resources:
// each is a fixed URI backed by a snapshot taken under the owning
// component's lock, marshaled to JSON.
func (s *Server) registerResources() {
	s.addJSONResource("ingestion://status", "ingestion-status", "Process-wide ingestion totals.", func(context.Context) (any, error) {
		return s.stats.Status(), nil
	})
	s.addJSONResource("ingestion://stats", "ingestion-stats", "Per-source ingestion counters.", func(context.Context) (any, error) {
		return struct {
			Sources []sourceStatsOutput `json:"sources"`
		}{Sources: s.sourceStats()}, nil
	})
	s.addJSONResource("ingestion://failures", "ingestion-failures", "Most recent ingestion failures (at most 20).", func(context.Context) (any, error) {
		return s.stats.Failures(), nil
	})
	s.addJSONResource("ingestion://metadata", "ingestion-metadata", "Configured path-specs and their observed capture values.", func(context.Context) (any, error) {
		return struct {
			PathSpecs []pathSpecMetadataOutput `json:"path_specs"`
		}{PathSpecs: s.pathSpecMetadata()}, nil
	})
	s.addJSONResource("ingestion://watch-stats", "ingestion-watch-stats", "Per-source watch status and counters.", func(context.Context) (any, error) {
		return struct {
			Sources []watchStatsOutput `json:"sources"`
		}{Sources: s.watchStats()}, nil
	})
}

// addJSONResource registers one read-only JSON resource whose body is
// computed fresh on every read, the same refresh-on-read discipline the
// search tool's schema uses.
func (s *Server) addJSONResource(uri, name, description string, snapshot func(context.Context) (any, error)) {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        name,
			URI:         uri,
			Description: description,
			MIMEType:    resourceMIMEType,
		},
		func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			data, err := snapshot(ctx)
			if err != nil {
				return nil, err
			}
			body, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return nil, err
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: uri, MIMEType: resourceMIMEType, Text: string(body)},
				},
			}, nil
		},
	)
}

type sourceStatsOutput struct {
	Path            string `json:"path"`
	FilesMatched    int    `json:"files_matched"`
	FilesProcessed  int    `json:"files_processed"`
	SegmentsCreated int    `json:"segments_created"`
	Errors          int    `json:"errors"`
}

func (s *Server) sourceStats() []sourceStatsOutput {
	counters := s.stats.Sources()
	out := make([]sourceStatsOutput, len(counters))
	for i, c := range counters {
		out[i] = sourceStatsOutput{
			Path:            c.Path,
			FilesMatched:    c.FilesMatched,
			FilesProcessed:  c.FilesProcessed,
			SegmentsCreated: c.SegmentsCreated,
			Errors:          c.Errors,
		}
	}
	return out
}

type pathSpecMetadataOutput struct {
	Path     string              `json:"path"`
	Captures map[string][]string `json:"captures"`
}

// pathSpecMetadata correlates each configured spec's declared capture
// names with the values the registry has observed for those names. The
// registry is keyed by metadata key only, not per-spec, so two specs
// sharing a capture name also share its observed-value list; this is a
// simplification over a fully per-spec registry, acceptable because
// capture names are conventionally chosen to be source-specific.
func (s *Server) pathSpecMetadata() []pathSpecMetadataOutput {
	out := make([]pathSpecMetadataOutput, 0, len(s.specs))
	for _, spec := range s.specs {
		captures := make(map[string][]string)
		for _, name := range spec.CaptureNames() {
			captures[name] = s.registry.ValuesSorted(name)
		}
		out = append(out, pathSpecMetadataOutput{Path: spec.Raw, Captures: captures})
	}
	return out
}

type watchStatsOutput struct {
	Path            string `json:"path"`
	Watched         bool   `json:"watched"`
	FilesProcessed  int    `json:"files_processed"`
	Errors          int    `json:"errors"`
}

func (s *Server) watchStats() []watchStatsOutput {
	counters := make(map[string]sourceStatsOutput, len(s.specs))
	for _, c := range s.sourceStats() {
		counters[c.Path] = c
	}

	out := make([]watchStatsOutput, 0, len(s.specs))
	for _, spec := range s.specs {
		c := counters[spec.Raw]
		out = append(out, watchStatsOutput{
			Path:           spec.Raw,
			Watched:        spec.Watch.Resolve(s.watchDefault),
			FilesProcessed: c.FilesProcessed,
			Errors:         c.Errors,
		})
	}
	return out
}
