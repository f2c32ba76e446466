package ingest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Aman-CERP/mcp-vector-search/internal/chunk"
	amanerrors "github.com/Aman-CERP/mcp-vector-search/internal/errors"
)

const (
	defaultChunkSize    = 512
	defaultChunkOverlap = 100
)

// Chunked implements the "chunked" strategy: splits
// content with the recursive paragraph-preferring splitter and emits
// one segment per chunk, each tagged with chunk-index, chunk-count and
// chunk-offset.
func Chunked(ctx context.Context, in FileInput) ([]SegmentDescriptor, error) {
	chunkSize, err := intParam(in.Params, "chunk-size", defaultChunkSize)
	if err != nil {
		return nil, err
	}
	if chunkSize < 1 {
		return nil, amanerrors.New(amanerrors.ErrCodeInvalidInput,
			fmt.Sprintf("chunk-size must be >= 1, got %d", chunkSize), nil)
	}

	chunkOverlap, err := intParam(in.Params, "chunk-overlap", defaultChunkOverlap)
	if err != nil {
		return nil, err
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, amanerrors.New(amanerrors.ErrCodeInvalidInput,
			fmt.Sprintf("chunk-overlap must satisfy 0 <= chunk-overlap < chunk-size (%d), got %d", chunkSize, chunkOverlap), nil)
	}

	pieces := chunk.Split(in.Content, chunkSize, chunkOverlap)
	segments := make([]SegmentDescriptor, 0, len(pieces))
	for i, c := range pieces {
		segmentID := fmt.Sprintf("%s#%d", in.FileID, i)
		meta := baseSegmentMetadata(in, segmentID)
		meta[MetaChunkIndex] = i
		meta[MetaChunkCount] = len(pieces)
		meta[MetaChunkOffset] = c.Offset

		segments = append(segments, SegmentDescriptor{
			FileID:         in.FileID,
			SegmentID:      segmentID,
			TextToEmbed:    c.Text,
			ContentToStore: c.Text,
			Metadata:       meta,
		})
	}
	return segments, nil
}

func intParam(params map[string]string, key string, fallback int) (int, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, amanerrors.New(amanerrors.ErrCodeInvalidInput,
			fmt.Sprintf("parameter %q must be an integer, got %q", key, raw), err)
	}
	return n, nil
}
