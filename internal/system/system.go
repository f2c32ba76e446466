// Package system wires every package's values into one running server
// instance: no process-wide mutable cell, one System owns the store,
// registry, stats, dispatcher, watcher, and MCP server. Source ingestion
// fans out concurrently across configured sources via errgroup.
package system

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/mcp-vector-search/internal/config"
	"github.com/Aman-CERP/mcp-vector-search/internal/embedmodel"
	"github.com/Aman-CERP/mcp-vector-search/internal/ingest"
	"github.com/Aman-CERP/mcp-vector-search/internal/ingeststats"
	"github.com/Aman-CERP/mcp-vector-search/internal/mcpserver"
	"github.com/Aman-CERP/mcp-vector-search/internal/pathspec"
	"github.com/Aman-CERP/mcp-vector-search/internal/registry"
	"github.com/Aman-CERP/mcp-vector-search/internal/source"
	"github.com/Aman-CERP/mcp-vector-search/internal/vectorstore"
	"github.com/Aman-CERP/mcp-vector-search/internal/watcher"
)

// System is the fully wired set of collaborators for one server process.
type System struct {
	cfg      *config.Config
	store    *vectorstore.Store
	embedder embedmodel.Embedder
	registry *registry.MetadataRegistry
	stats    *ingeststats.Stats
	pipeline *ingest.Pipeline
	mcp      *mcpserver.Server
	watcher  *watcher.Watcher

	specs     []*pathspec.PathSpec
	resources fs.FS
}

// New loads configuration from projectDir, compiles its sources,
// constructs the embedder named by embedderCfg, and wires the store,
// registry, stats tracker, ingestion pipeline, watcher, and MCP server
// around them. resources backs class-path sources; pass nil when the
// binary embeds none. The returned System has not yet ingested anything
// or started watching; call Start for that.
func New(ctx context.Context, projectDir string, embedderCfg embedmodel.Config, resources fs.FS) (*System, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	specs, err := cfg.PathSpecs()
	if err != nil {
		return nil, fmt.Errorf("compile sources: %w", err)
	}

	embedder, err := embedmodel.New(ctx, embedderCfg)
	if err != nil {
		return nil, fmt.Errorf("construct embedder: %w", err)
	}

	store := vectorstore.New()
	reg := registry.New()
	stats := ingeststats.New()
	pipeline := ingest.NewPipeline(ingest.NewDispatcher(), embedder)

	mcp := mcpserver.New(store, embedder, reg, stats, specs, cfg.Watch)

	watched := cfg.WatchedSpecs(specs)
	w := watcher.New(watched, pipeline, store, reg, stats, watcher.DefaultOptions())
	w.OnChange(mcp.RefreshSearchSchema)

	s := &System{
		cfg:       cfg,
		store:     store,
		embedder:  embedder,
		registry:  reg,
		stats:     stats,
		pipeline:  pipeline,
		mcp:       mcp,
		watcher:   w,
		specs:     specs,
		resources: resources,
	}

	return s, nil
}

// IngestAll walks every configured source once and loads its matches
// into the store, all sources concurrently. Per-file read/strategy
// errors are recorded and skipped rather than aborting the run; a
// source-enumeration error aborts only that source and never the group.
func (s *System) IngestAll(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	for _, spec := range s.specs {
		spec := spec
		g.Go(func() error {
			s.ingestSource(gctx, spec)
			return nil
		})
	}
	_ = g.Wait()
	s.mcp.RefreshSearchSchema()
}

func (s *System) ingestSource(ctx context.Context, spec *pathspec.PathSpec) {
	out, errs := source.Enumerate(ctx, spec, s.resources)

	for fd := range out {
		s.stats.RecordMatched(spec.Raw, 1)
		rows, err := s.pipeline.IngestFile(ctx, fd)
		if err != nil {
			s.stats.RecordError(spec.Raw, fd.FileID, "ingest", err.Error())
			slog.Warn("ingest failed", slog.String("file", fd.FileID), slog.String("error", err.Error()))
			continue
		}
		s.store.InsertAll(rows)
		s.stats.RecordProcessed(spec.Raw, len(rows))
		for _, row := range rows {
			s.registry.ObserveAll(row.Metadata)
		}
	}

	if err := <-errs; err != nil {
		s.stats.RecordError(spec.Raw, spec.Raw, "enumerate", err.Error())
		slog.Warn("source enumeration failed", slog.String("source", spec.Raw), slog.String("error", err.Error()))
	}
}

// Start runs startup ingestion over every configured source, then begins
// watching the filesystem sources whose watch setting resolves to
// enabled.
func (s *System) Start(ctx context.Context) error {
	s.IngestAll(ctx)
	return s.watcher.Start(ctx)
}

// Stop stops the watcher, allowing any in-flight re-ingest to finish.
func (s *System) Stop() {
	s.watcher.Stop()
}

// Serve runs the MCP server over stdio until ctx is cancelled.
func (s *System) Serve(ctx context.Context) error {
	return s.mcp.Serve(ctx)
}
