// Package embedding abstracts the text-embedding backend feeding the ANN
// index. Vectors are float32 to match the index storage format.
package embedding

import (
	"context"
	"fmt"

	"github.com/andozai/retrieval/config"
)

// Provider computes embeddings. Implementations must be safe for concurrent
// use; one instance is shared process-wide.
type Provider interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	GetProviderType() string
}

// NewProvider creates a provider from configuration.
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "openai":
		return newOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
