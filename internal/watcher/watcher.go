package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Aman-CERP/mcp-vector-search/internal/ingest"
	"github.com/Aman-CERP/mcp-vector-search/internal/ingeststats"
	"github.com/Aman-CERP/mcp-vector-search/internal/pathspec"
	"github.com/Aman-CERP/mcp-vector-search/internal/registry"
	"github.com/Aman-CERP/mcp-vector-search/internal/source"
	"github.com/Aman-CERP/mcp-vector-search/internal/vectorstore"
)

// Options configures a Watcher.
type Options struct {
	// DebounceWindow is the per-path quiet interval.
	DebounceWindow time.Duration

	// PollInterval governs the polling fallback used when fsnotify fails
	// to initialize.
	PollInterval time.Duration

	// EventBufferSize bounds the Debouncer's output channel.
	EventBufferSize int
}

// DefaultOptions returns the default debounce window, poll interval,
// and event buffer size.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  500 * time.Millisecond,
		PollInterval:    5 * time.Second,
		EventBufferSize: 256,
	}
}

// WithDefaults fills zero-valued fields with DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = d.DebounceWindow
	}
	if o.PollInterval == 0 {
		o.PollInterval = d.PollInterval
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = d.EventBufferSize
	}
	return o
}

// Watcher observes the union of watched path-spec base directories
// and applies create/modify/delete transitions against the vector
// store through the ingestion pipeline. It runs fsnotify as the
// primary event source with a polling fallback, and supports multiple
// independent PathSpec roots rather than a single project root.
//
// specs must already be filtered to filesystem PathSpecs whose Watch
// setting resolves to enabled; classpath sources are never watched.
type Watcher struct {
	specs    []*pathspec.PathSpec
	pipeline *ingest.Pipeline
	store    *vectorstore.Store
	registry *registry.MetadataRegistry
	stats    *ingeststats.Stats

	opts      Options
	debouncer *Debouncer

	fsWatcher   *fsnotify.Watcher
	pollWatcher *PollingWatcher
	useFsnotify bool

	onChange func()

	stopCh  chan struct{}
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// OnChange registers a callback invoked after every store mutation the
// watcher applies (insert, replace, or delete). Used to keep the MCP
// search tool's metadata schema current without coupling this package
// to mcpserver directly.
func (w *Watcher) OnChange(fn func()) {
	w.onChange = fn
}

// New constructs a Watcher. It never fails to construct: if fsnotify
// cannot be initialized, it falls back to polling.
func New(specs []*pathspec.PathSpec, pipeline *ingest.Pipeline, store *vectorstore.Store, reg *registry.MetadataRegistry, stats *ingeststats.Stats, opts Options) *Watcher {
	opts = opts.WithDefaults()

	w := &Watcher{
		specs:     specs,
		pipeline:  pipeline,
		store:     store,
		registry:  reg,
		stats:     stats,
		opts:      opts,
		debouncer: NewDebouncer(opts.DebounceWindow, opts.EventBufferSize),
		stopCh:    make(chan struct{}),
	}

	if fsw, err := fsnotify.NewWatcher(); err == nil {
		w.fsWatcher = fsw
		w.useFsnotify = true
	} else {
		slog.Warn("fsnotify unavailable, falling back to polling", slog.String("error", err.Error()))
		w.pollWatcher = NewPollingWatcher(opts.PollInterval, func(path string, op Operation) {
			w.debouncer.Add(path, op)
		})
	}

	return w
}

// Start begins watching. It returns once the watch set is established;
// event handling continues on background goroutines until Stop is called
// or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.applyLoop(ctx)

	roots := w.roots()

	if w.useFsnotify {
		for _, root := range roots {
			if err := w.addRecursive(root); err != nil {
				slog.Warn("failed to watch root", slog.String("root", root), slog.String("error", err.Error()))
			}
		}
		w.wg.Add(1)
		go w.fsnotifyLoop(ctx)
		return nil
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.pollWatcher.Run(ctx, roots); err != nil && ctx.Err() == nil {
			slog.Warn("polling watcher stopped", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// Stop cancels outstanding debounce timers and stops watching. Any
// ingest already running when Stop is called is allowed to finish
//; new events are ignored.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	w.debouncer.Stop()
	if w.fsWatcher != nil {
		_ = w.fsWatcher.Close()
	}
	if w.pollWatcher != nil {
		w.pollWatcher.Stop()
	}
	w.wg.Wait()
}

func (w *Watcher) roots() []string {
	seen := make(map[string]bool, len(w.specs))
	var out []string
	for _, spec := range w.specs {
		root := spec.BasePrefix
		if root == "" {
			root = "."
		}
		if seen[root] {
			continue
		}
		seen[root] = true
		out = append(out, root)
	}
	return out
}

func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		// A base prefix under a not-yet-created directory is not fatal;
		// it simply produces no matches until the directory appears.
		return nil
	}
	if !info.IsDir() {
		return w.fsWatcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(p)
	})
}

func (w *Watcher) fsnotifyLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFsnotifyEvent(ev)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handleFsnotifyEvent(ev fsnotify.Event) {
	path := canonicalize(ev.Name)

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				slog.Warn("failed to watch new directory", slog.String("path", ev.Name), slog.String("error", err.Error()))
			}
			return
		}
		w.debouncer.Add(path, OpCreate)
		return
	}
	if ev.Op&fsnotify.Write != 0 {
		w.debouncer.Add(path, OpModify)
		return
	}
	if ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0 {
		w.debouncer.Add(path, OpDelete)
	}
}

// canonicalize resolves symlinks the same way ingestion does, falling
// back to the given path when the target no longer exists (a delete
// event's path cannot be stat'd once the file is gone).
func canonicalize(absPath string) string {
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		return resolved
	}
	return absPath
}

func (w *Watcher) applyLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			w.apply(ctx, ev)
		}
	}
}

func (w *Watcher) apply(ctx context.Context, ev FileEvent) {
	if ev.Operation == OpDelete {
		w.store.RemoveAll(ev.Path)
		w.notifyChange()
		return
	}

	fd, spec, ok := w.match(ev.Path)
	if !ok {
		// No longer matches any watched spec (e.g. excluded mid-flight);
		// drop any rows that may exist for it.
		w.store.RemoveAll(ev.Path)
		w.notifyChange()
		return
	}

	rows, err := w.pipeline.IngestFile(ctx, fd)
	if err != nil {
		w.stats.RecordError(spec.Raw, ev.Path, "watch-ingest", err.Error())
		slog.Warn("watch re-ingest failed", slog.String("path", ev.Path), slog.String("error", err.Error()))
		return
	}

	w.store.ReplaceFile(ev.Path, rows)
	w.stats.RecordProcessed(spec.Raw, len(rows))
	for _, row := range rows {
		w.registry.ObserveAll(row.Metadata)
	}
	w.notifyChange()
}

func (w *Watcher) notifyChange() {
	if w.onChange != nil {
		w.onChange()
	}
}

func (w *Watcher) match(absPath string) (source.FileDescriptor, *pathspec.PathSpec, bool) {
	for _, spec := range w.specs {
		if fd, ok := source.MatchSingle(spec, absPath); ok {
			return fd, spec, true
		}
	}
	return source.FileDescriptor{}, nil, false
}
