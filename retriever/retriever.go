// Package retriever turns a condensed query into scored candidates from the
// vector index.
package retriever

import (
	"context"

	"github.com/andozai/retrieval/schema"
)

// Retriever searches a backend for grounding passages.
type Retriever interface {
	Type() string
	// Search returns candidates ordered best first. topK <= 0 uses the
	// retriever's configured default.
	Search(ctx context.Context, query string, topK int) ([]schema.Candidate, error)
}
