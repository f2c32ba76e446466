// Package source enumerates the files matched by a compiled path-spec,
// yielding one FileDescriptor per match with its captured metadata. It
// has two modes: walking an OS filesystem, or walking an embedded
// resource tree (the Go analogue of a JVM classpath resource).
package source

import (
	"io"

	"github.com/Aman-CERP/mcp-vector-search/internal/pathspec"
)

// MetaDocID and MetaFileID are the metadata keys every FileDescriptor and
// downstream SegmentDescriptor carries, rendered here as plain string
// keys — Go has no EDN keyword syntax.
const (
	MetaDocID  = "doc-id"
	MetaFileID = "file-id"
)

// Content opens the raw bytes of a matched file or resource. Callers must
// close the returned reader.
type Content interface {
	Open() (io.ReadCloser, error)
}

// FileDescriptor is a single enumerator match.
type FileDescriptor struct {
	// FileID is the canonicalized absolute filesystem path, or the
	// classpath-relative path; it is the deletion key in the vector store.
	FileID string

	Content Content

	// Captures holds the named regex groups extracted from the path.
	Captures map[string]string

	// Metadata is base_metadata ⊎ captures ⊎ {doc-id, file-id}, captures
	// taking precedence on key conflict.
	Metadata map[string]string

	Strategy       string
	StrategyParams map[string]string

	// SourcePath is the raw path-spec string that produced this match,
	// used for per-source stats attribution.
	SourcePath string
}
