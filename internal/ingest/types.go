// Package ingest implements the ingestion dispatcher and the built-in
// processing strategies. A strategy turns one file's content into zero
// or more SegmentDescriptors; the dispatcher validates what strategies
// return before it reaches the vector store. Strategy tags form an open
// registry, not a closed enum.
package ingest

import "github.com/Aman-CERP/mcp-vector-search/internal/source"

// Strategy tags recognized out of the box. Callers may register
// additional tags on a Dispatcher; this is an open map, not a closed enum.
const (
	StrategyWholeDocument = "whole-document"
	StrategyFilePath      = "file-path"
	StrategyNamespaceDoc  = "namespace-doc"
	StrategySingleSegment = "single-segment"
	StrategyChunked       = "chunked"
	StrategyCodeAnalysis  = "code-analysis"
)

// Metadata keys strategies contribute on top of a FileDescriptor's own
// metadata.
const (
	MetaSegmentID   = "segment-id"
	MetaNamespace   = "namespace"
	MetaChunkIndex  = "chunk-index"
	MetaChunkCount  = "chunk-count"
	MetaChunkOffset = "chunk-offset"
	MetaElementType = "element-type"
	MetaElementName = "element-name"
	MetaLanguage    = "language"
	MetaVisibility  = "visibility"
)

// FileInput is what a strategy receives: the file's identity, its raw
// content, the descriptor's accumulated metadata (base + captures +
// doc-id/file-id), and the source's strategy-specific parameters.
type FileInput struct {
	FileID   string
	Content  string
	Metadata map[string]string
	Params   map[string]string
}

// NewFileInput adapts a source.FileDescriptor and its loaded content into
// a FileInput for dispatch.
func NewFileInput(fd source.FileDescriptor, content string) FileInput {
	meta := make(map[string]string, len(fd.Metadata))
	for k, v := range fd.Metadata {
		meta[k] = v
	}
	return FileInput{
		FileID:   fd.FileID,
		Content:  content,
		Metadata: meta,
		Params:   fd.StrategyParams,
	}
}

// SegmentDescriptor is one unit a strategy produces for embedding and
// storage. Metadata values are usually strings; the chunked strategy's
// chunk-index/chunk-count/chunk-offset keys are a documented numeric
// exception, so values are carried as `any`.
type SegmentDescriptor struct {
	FileID         string
	SegmentID      string
	TextToEmbed    string
	ContentToStore string
	Metadata       map[string]any
}

// baseSegmentMetadata copies a FileInput's string metadata into the
// map[string]any shape SegmentDescriptor carries, then stamps doc-id,
// file-id and segment-id — every segment must trace back to the file
// it came from.
func baseSegmentMetadata(in FileInput, segmentID string) map[string]any {
	meta := make(map[string]any, len(in.Metadata)+3)
	for k, v := range in.Metadata {
		meta[k] = v
	}
	meta[source.MetaDocID] = in.FileID
	meta[source.MetaFileID] = in.FileID
	meta[MetaSegmentID] = segmentID
	return meta
}
