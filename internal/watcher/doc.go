// Package watcher implements the file-watching subsystem:
// it observes the base directories of every watched path-spec, debounces
// events per path with a 500ms quiet interval, and applies the resulting
// create/modify/delete transitions against the vector store through the
// ingestion pipeline.
//
// The package implements a hybrid watching strategy:
//   - Primary: fsnotify for efficient event-based watching.
//   - Fallback: polling, for environments where fsnotify fails to
//     initialize (inotify instance limits, some network mounts).
//
// Usage:
//
//	w := watcher.New(watchedSpecs, pipeline, store, registry, stats, watcher.DefaultOptions())
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Stop()
package watcher
