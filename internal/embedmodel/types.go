// Package embedmodel provides the Embedder abstraction the ingestion
// dispatcher and search tool use to turn text into vectors. The
// concrete sentence-embedding model is an external collaborator; this
// package supplies a deterministic, dependency-free fallback (static)
// and an HTTP client for a local Ollama server, both satisfying the
// same interface so ingestion and query always embed with the same
// model.
package embedmodel

import (
	"context"
	"math"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	Available(ctx context.Context) bool
	Close() error
}

// normalizeVector scales v to unit length, leaving a zero vector
// untouched — the store's cosine similarity treats a zero-magnitude row
// as similarity 0 regardless.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / magnitude)
	}
	return out
}
