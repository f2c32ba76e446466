package mcpserver

import (
	"context"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/mcp-vector-search/internal/embedmodel"
	"github.com/Aman-CERP/mcp-vector-search/internal/ingeststats"
	"github.com/Aman-CERP/mcp-vector-search/internal/pathspec"
	"github.com/Aman-CERP/mcp-vector-search/internal/registry"
	"github.com/Aman-CERP/mcp-vector-search/internal/vectorstore"
	"github.com/Aman-CERP/mcp-vector-search/pkg/version"
)

// Server bridges MCP clients to the search engine: one search tool and
// five ingestion:// status resources.
type Server struct {
	mcp      *mcp.Server
	store    *vectorstore.Store
	embedder embedmodel.Embedder
	registry *registry.MetadataRegistry
	stats    *ingeststats.Stats

	specs        []*pathspec.PathSpec
	watchDefault bool

	mu sync.Mutex
}

// New constructs a Server wired to the given components. specs is every
// configured path-spec (watched or not), used only to report per-source
// capture names and watch status on the ingestion:// resources; the
// watcher itself receives its own, pre-filtered subset. The search tool
// and resources are registered immediately.
func New(store *vectorstore.Store, embedder embedmodel.Embedder, reg *registry.MetadataRegistry, stats *ingeststats.Stats, specs []*pathspec.PathSpec, watchDefault bool) *Server {
	s := &Server{
		store:        store,
		embedder:     embedder,
		registry:     reg,
		stats:        stats,
		specs:        specs,
		watchDefault: watchDefault,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "mcp-vector-search",
			Version: version.Version,
		},
		nil,
	)

	s.registerSearchTool()
	s.registerResources()

	return s
}

// Serve runs the MCP protocol over stdio JSON-RPC until ctx is cancelled
// or the transport closes. The transport is treated as an external
// collaborator, a black box that invokes tool/resource callbacks.
func (s *Server) Serve(ctx context.Context) error {
	slog.Info("starting MCP server", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		slog.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	slog.Info("MCP server stopped")
	return nil
}

// RefreshSearchSchema rebuilds the search tool's metadata parameter
// schema from the current state of the metadata registry and
// re-registers the tool under its existing name. The go-sdk treats
// AddTool as an upsert keyed by tool name, so this is how a tool
// definition is kept current between client tools/list calls — called
// after every ingest and watch-triggered store update, so the schema's
// enum constraints stay in sync with observed metadata.
func (s *Server) RefreshSearchSchema() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerSearchTool()
}
