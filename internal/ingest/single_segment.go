package ingest

import (
	"context"
	"fmt"

	amanerrors "github.com/Aman-CERP/mcp-vector-search/internal/errors"
)

// customFunc computes either the embed text or the stored content for a
// "custom" embedding/content-strategy selection. Registered by name via
// RegisterCustomEmbedding/RegisterCustomContent: a compile-time,
// config-selected registration table rather than dynamic plugins.
type customFunc func(in FileInput) (string, error)

var (
	customEmbeddingFuncs = map[string]customFunc{}
	customContentFuncs   = map[string]customFunc{}
)

// RegisterCustomEmbedding makes name selectable as a source's
// `embedding: custom` sub-strategy for single-segment ingestion.
func RegisterCustomEmbedding(name string, fn customFunc) {
	customEmbeddingFuncs[name] = fn
}

// RegisterCustomContent makes name selectable as a source's
// `content-strategy: custom` sub-strategy for single-segment ingestion.
func RegisterCustomContent(name string, fn customFunc) {
	customContentFuncs[name] = fn
}

// SingleSegment implements the "single-segment" strategy: the composable
// form that reads `embedding` and `content-strategy` parameters to
// decide what to embed and what to store, each independently.
// whole-document and file-path are convenience forwards to this with
// fixed parameters; namespace-doc is implemented directly in
// NamespaceDoc and yields the same segment as `embedding: namespace-doc`
// with `content-strategy: whole-document`.
func SingleSegment(ctx context.Context, in FileInput) ([]SegmentDescriptor, error) {
	embedding := paramOr(in.Params, "embedding", "whole-document")
	contentStrategy := paramOr(in.Params, "content-strategy", "whole-document")

	textToEmbed, err := resolveEmbedding(in, embedding)
	if err != nil {
		return nil, err
	}
	contentToStore, err := resolveContent(in, contentStrategy)
	if err != nil {
		return nil, err
	}

	meta := baseSegmentMetadata(in, in.FileID)
	if embedding == "namespace-doc" {
		if name, _, ok := parseNamespaceForm(in.Content); ok {
			meta[MetaNamespace] = name
		}
	}

	return []SegmentDescriptor{{
		FileID:         in.FileID,
		SegmentID:      in.FileID,
		TextToEmbed:    textToEmbed,
		ContentToStore: contentToStore,
		Metadata:       meta,
	}}, nil
}

func resolveEmbedding(in FileInput, embedding string) (string, error) {
	switch embedding {
	case "whole-document":
		return in.Content, nil
	case "namespace-doc":
		_, doc, ok := parseNamespaceForm(in.Content)
		if !ok {
			return "", amanerrors.New(amanerrors.ErrCodeParseFailed,
				"no (ns NAME \"DOC\" ...) form with a docstring found", nil)
		}
		return doc, nil
	case "custom":
		fn, ok := customEmbeddingFuncs[paramOr(in.Params, "embedding-custom", "")]
		if !ok {
			return "", amanerrors.New(amanerrors.ErrCodeInvalidInput,
				"embedding: custom requires a registered embedding-custom name", nil)
		}
		return fn(in)
	default:
		return "", amanerrors.New(amanerrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown embedding parameter %q", embedding), nil)
	}
}

func resolveContent(in FileInput, contentStrategy string) (string, error) {
	switch contentStrategy {
	case "whole-document":
		return in.Content, nil
	case "file-path":
		return in.FileID, nil
	case "custom":
		fn, ok := customContentFuncs[paramOr(in.Params, "content-custom", "")]
		if !ok {
			return "", amanerrors.New(amanerrors.ErrCodeInvalidInput,
				"content-strategy: custom requires a registered content-custom name", nil)
		}
		return fn(in)
	default:
		return "", amanerrors.New(amanerrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown content-strategy parameter %q", contentStrategy), nil)
	}
}

func paramOr(params map[string]string, key, fallback string) string {
	if v, ok := params[key]; ok && v != "" {
		return v
	}
	return fallback
}
