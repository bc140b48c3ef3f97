// Package vectordb abstracts the ANN index. Search responses carry only the
// identifiers, distance and minimal metadata needed downstream; embedding
// vectors are never returned to keep transfer and deserialization cheap.
package vectordb

import (
	"context"
	"fmt"

	"github.com/andozai/retrieval/config"
	"github.com/andozai/retrieval/schema"
)

// Provider issues nearest-neighbor queries against the index. Implementations
// must be safe for concurrent use; one instance is shared process-wide.
type Provider interface {
	// Search returns the topK closest chunks to vector as vector-source
	// candidates with a lower-is-closer distance.
	Search(ctx context.Context, vector []float32, topK int) ([]schema.Candidate, error)
	Close() error
}

// NewProvider creates a provider from configuration.
func NewProvider(ctx context.Context, cfg config.VectorDBConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "milvus":
		return newMilvusProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown vectordb provider: %s", cfg.Provider)
	}
}
