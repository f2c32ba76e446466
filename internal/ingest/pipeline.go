package ingest

import (
	"context"
	"fmt"
	"io"

	amanerrors "github.com/Aman-CERP/mcp-vector-search/internal/errors"
	"github.com/Aman-CERP/mcp-vector-search/internal/embedmodel"
	"github.com/Aman-CERP/mcp-vector-search/internal/source"
	"github.com/Aman-CERP/mcp-vector-search/internal/vectorstore"
)

// Pipeline turns one enumerated FileDescriptor into vector store rows: it
// reads the file's content, dispatches it to the strategy the descriptor
// names, and embeds each resulting segment. Startup ingestion and the
// watcher both drive a file through the same Pipeline so a file reaches
// the store identically regardless of which one triggered it.
type Pipeline struct {
	Dispatcher *Dispatcher
	Embedder   embedmodel.Embedder
}

// NewPipeline constructs a Pipeline over the given dispatcher and embedder.
func NewPipeline(dispatcher *Dispatcher, embedder embedmodel.Embedder) *Pipeline {
	return &Pipeline{Dispatcher: dispatcher, Embedder: embedder}
}

// IngestFile reads fd's content, dispatches it to its strategy, and
// embeds every resulting segment into vector store rows. It does not
// touch the store itself; callers decide how to apply the rows
// (insert-only for a fresh file, ReplaceFile for a re-ingest).
func (p *Pipeline) IngestFile(ctx context.Context, fd source.FileDescriptor) ([]vectorstore.Row, error) {
	content, err := readAll(fd)
	if err != nil {
		return nil, amanerrors.New(amanerrors.ErrCodeReadFailed,
			fmt.Sprintf("read %s: %v", fd.FileID, err), err)
	}

	segments, err := p.Dispatcher.Dispatch(ctx, fd.Strategy, NewFileInput(fd, content))
	if err != nil {
		return nil, err
	}

	rows := make([]vectorstore.Row, 0, len(segments))
	for _, seg := range segments {
		vec, err := p.Embedder.Embed(ctx, seg.TextToEmbed)
		if err != nil {
			return nil, fmt.Errorf("embed segment %s: %w", seg.SegmentID, err)
		}
		rows = append(rows, vectorstore.Row{
			FileID:    seg.FileID,
			SegmentID: seg.SegmentID,
			Embedding: vec,
			Text:      seg.ContentToStore,
			Metadata:  seg.Metadata,
		})
	}
	return rows, nil
}

func readAll(fd source.FileDescriptor) (string, error) {
	rc, err := fd.Content.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
