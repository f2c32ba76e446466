package embedmodel

import (
	"context"
	"fmt"
)

// Provider selects which embedding backend New constructs.
type Provider string

const (
	ProviderStatic Provider = "static"
	ProviderOllama Provider = "ollama"
)

// Config configures New.
type Config struct {
	Provider  Provider
	Model     string // Ollama model name; ignored by static
	Host      string // Ollama server host; ignored by static
	CacheSize int    // 0 uses DefaultCacheSize; negative disables caching
}

// New constructs an Embedder for the given provider, wrapped in an LRU
// cache unless CacheSize is negative.
func New(ctx context.Context, cfg Config) (Embedder, error) {
	var embedder Embedder
	switch cfg.Provider {
	case ProviderOllama:
		e, err := NewOllamaEmbedder(ctx, OllamaConfig{Host: cfg.Host, Model: cfg.Model})
		if err != nil {
			return nil, fmt.Errorf("embedmodel: ollama unavailable: %w", err)
		}
		embedder = e
	case ProviderStatic, "":
		embedder = NewStaticEmbedder()
	default:
		return nil, fmt.Errorf("embedmodel: unknown provider %q", cfg.Provider)
	}

	if cfg.CacheSize < 0 {
		return embedder, nil
	}
	return NewCachedEmbedder(embedder, cfg.CacheSize), nil
}
