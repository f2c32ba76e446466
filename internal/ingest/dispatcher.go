package ingest

import (
	"context"
	"fmt"

	amanerrors "github.com/Aman-CERP/mcp-vector-search/internal/errors"
)

// StrategyFunc processes one file's content into zero or more segments.
// Implementations must ensure every returned descriptor's FileID equals
// in.FileID, SegmentID is unique within the returned slice, and
// TextToEmbed/ContentToStore are non-empty.
type StrategyFunc func(ctx context.Context, in FileInput) ([]SegmentDescriptor, error)

// Dispatcher is the open tag → strategy registry backing
// process_document. New strategies register under a new tag; nothing
// about the dispatch loop assumes a closed set.
type Dispatcher struct {
	strategies map[string]StrategyFunc
}

// NewDispatcher builds a Dispatcher with the six built-in strategies
// registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{strategies: make(map[string]StrategyFunc)}
	d.Register(StrategyWholeDocument, WholeDocument)
	d.Register(StrategyFilePath, FilePath)
	d.Register(StrategyNamespaceDoc, NamespaceDoc)
	d.Register(StrategySingleSegment, SingleSegment)
	d.Register(StrategyChunked, Chunked)
	d.Register(StrategyCodeAnalysis, CodeAnalysis)
	return d
}

// Register adds or replaces the strategy function for tag.
func (d *Dispatcher) Register(tag string, fn StrategyFunc) {
	d.strategies[tag] = fn
}

// Dispatch looks up the strategy registered under tag, runs it, and
// validates its output before returning it to the caller. An unknown
// tag or a validation failure returns a validation-error.
func (d *Dispatcher) Dispatch(ctx context.Context, tag string, in FileInput) ([]SegmentDescriptor, error) {
	fn, ok := d.strategies[tag]
	if !ok {
		return nil, amanerrors.New(amanerrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown ingestion strategy %q", tag), nil)
	}

	segments, err := fn(ctx, in)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(segments))
	for _, seg := range segments {
		if seg.FileID != in.FileID {
			return nil, amanerrors.New(amanerrors.ErrCodeInvalidInput,
				fmt.Sprintf("strategy %q produced segment for file %q, expected %q", tag, seg.FileID, in.FileID), nil)
		}
		if seg.SegmentID == "" {
			return nil, amanerrors.New(amanerrors.ErrCodeInvalidInput,
				fmt.Sprintf("strategy %q produced segment with empty segment_id", tag), nil)
		}
		if _, dup := seen[seg.SegmentID]; dup {
			return nil, amanerrors.New(amanerrors.ErrCodeInvalidInput,
				fmt.Sprintf("strategy %q produced duplicate segment_id %q", tag, seg.SegmentID), nil)
		}
		seen[seg.SegmentID] = struct{}{}
		if seg.TextToEmbed == "" {
			return nil, amanerrors.New(amanerrors.ErrCodeInvalidInput,
				fmt.Sprintf("strategy %q produced empty text_to_embed for segment %q", tag, seg.SegmentID), nil)
		}
		if seg.ContentToStore == "" {
			return nil, amanerrors.New(amanerrors.ErrCodeInvalidInput,
				fmt.Sprintf("strategy %q produced empty content_to_store for segment %q", tag, seg.SegmentID), nil)
		}
	}

	return segments, nil
}
