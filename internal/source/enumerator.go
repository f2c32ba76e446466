package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Aman-CERP/mcp-vector-search/internal/pathspec"
)

// fileContent opens a path on the OS filesystem.
type fileContent struct{ path string }

func (f fileContent) Open() (io.ReadCloser, error) { return os.Open(f.path) }

// resourceContent opens a path inside an embedded/bundled fs.FS.
type resourceContent struct {
	fsys fs.FS
	path string
}

func (r resourceContent) Open() (io.ReadCloser, error) { return r.fsys.Open(r.path) }

// Enumerate walks the source described by spec and streams matching
// FileDescriptors on the returned channel. resources is consulted only
// for SourceClasspath specs; it may be nil when no spec uses that source
// type. The channel is closed when enumeration completes. An error on a
// single entry of the tree is skipped without stopping enumeration of
// the rest; an error that stops the whole walk (missing base prefix,
// unknown source type, no resource tree, cancelled context) is sent on
// errs, which is also closed at the end.
func Enumerate(ctx context.Context, spec *pathspec.PathSpec, resources fs.FS) (<-chan FileDescriptor, <-chan error) {
	out := make(chan FileDescriptor)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		var err error
		switch spec.SourceType {
		case pathspec.SourceFilesystem:
			err = walkFilesystem(ctx, spec, out)
		case pathspec.SourceClasspath:
			err = walkClasspath(ctx, spec, resources, out)
		default:
			err = fmt.Errorf("unknown source type %q", spec.SourceType)
		}
		if err != nil {
			errs <- err
		}
	}()

	return out, errs
}

func walkFilesystem(ctx context.Context, spec *pathspec.PathSpec, out chan<- FileDescriptor) error {
	root := spec.BasePrefix
	if root == "" {
		root = "."
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat base prefix %q: %w", root, err)
	}

	if !info.IsDir() {
		abs, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		if captures, ok := spec.Match(pathspec.ToSlash(abs)); ok {
			emit(ctx, out, spec, abs, captures, fileContent{path: abs})
		}
		return nil
	}

	globPattern, globOK := literalGlobPattern(spec)

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // isolate per-entry walk errors; skip and continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		abs, err := filepath.Abs(p)
		if err != nil {
			return nil
		}
		slashPath := pathspec.ToSlash(abs)

		if globOK && !doublestar.MatchUnvalidated(globPattern, slashPath) {
			return nil
		}

		captures, ok := spec.Match(slashPath)
		if !ok {
			return nil
		}
		emit(ctx, out, spec, abs, captures, fileContent{path: abs})
		return nil
	})
}

func walkClasspath(ctx context.Context, spec *pathspec.PathSpec, resources fs.FS, out chan<- FileDescriptor) error {
	if resources == nil {
		return fmt.Errorf("classpath source %q declared but no embedded resource tree is configured", spec.Raw)
	}

	dir := parentDirOfPrefix(spec.BasePrefix)
	if dir == "" {
		dir = "."
	}

	return fs.WalkDir(resources, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		captures, ok := spec.Match(p)
		if !ok {
			return nil
		}
		emit(ctx, out, spec, p, captures, resourceContent{fsys: resources, path: p})
		return nil
	})
}

func emit(ctx context.Context, out chan<- FileDescriptor, spec *pathspec.PathSpec, fileID string, captures map[string]string, content Content) {
	select {
	case out <- buildDescriptor(spec, fileID, captures, content):
	case <-ctx.Done():
	}
}

func buildDescriptor(spec *pathspec.PathSpec, fileID string, captures map[string]string, content Content) FileDescriptor {
	meta := make(map[string]string, len(spec.BaseMetadata)+len(captures)+2)
	for k, v := range spec.BaseMetadata {
		meta[k] = v
	}
	for k, v := range captures {
		meta[k] = v
	}
	meta[MetaDocID] = fileID
	meta[MetaFileID] = fileID

	return FileDescriptor{
		FileID:         fileID,
		Content:        content,
		Captures:       captures,
		Metadata:       meta,
		Strategy:       spec.Strategy,
		StrategyParams: spec.StrategyParams,
		SourcePath:     spec.Raw,
	}
}

// MatchSingle tests absPath against spec's compiled pattern and, on a
// match, builds the same FileDescriptor Enumerate would have yielded
// for this path. Used by the watcher to re-ingest a single
// created/modified path without a full tree walk.
func MatchSingle(spec *pathspec.PathSpec, absPath string) (FileDescriptor, bool) {
	captures, ok := spec.Match(pathspec.ToSlash(absPath))
	if !ok {
		return FileDescriptor{}, false
	}
	return buildDescriptor(spec, absPath, captures, fileContent{path: absPath}), true
}

// parentDirOfPrefix trims a trailing literal filename from a base
// prefix. A prefix is treated as ending in a file when it has no
// trailing slash and contains a ".".
func parentDirOfPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	if strings.HasSuffix(prefix, "/") {
		return strings.TrimSuffix(prefix, "/")
	}
	base := path.Base(prefix)
	if strings.Contains(base, ".") {
		return path.Dir(prefix)
	}
	return prefix
}

// literalGlobPattern renders a capture-free path-spec as a doublestar glob
// pattern, used as a cheap per-file pre-filter before the full anchored
// regex runs; every directory under the base prefix is still descended. ok is false when the spec contains captures (which
// doublestar cannot express), in which case callers fall back to the
// regex alone.
func literalGlobPattern(spec *pathspec.PathSpec) (string, bool) {
	var b strings.Builder
	for _, seg := range spec.Segments {
		switch seg.Kind {
		case pathspec.SegmentLiteral:
			b.WriteString(seg.Literal)
		case pathspec.SegmentGlobSingle:
			b.WriteString("*")
		case pathspec.SegmentGlobRecursive:
			b.WriteString("**")
		case pathspec.SegmentCapture:
			return "", false
		}
	}
	return b.String(), true
}
