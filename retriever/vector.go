package retriever

import (
	"context"
	"time"

	"github.com/andozai/retrieval/common/logger"
	"github.com/andozai/retrieval/common/pool"
	"github.com/andozai/retrieval/config"
	"github.com/andozai/retrieval/embedding"
	"github.com/andozai/retrieval/schema"
	"github.com/andozai/retrieval/vectordb"
)

// VectorRetriever embeds the query and searches the ANN index. Both calls run
// on the shared worker pool under the stage timeout, and transient backend
// failures are retried a bounded number of times.
type VectorRetriever struct {
	embed embedding.Provider
	store vectordb.Provider
	p     *pool.Pool
	cfg   config.RetrievalConfig
}

// NewVector builds a VectorRetriever.
func NewVector(embed embedding.Provider, store vectordb.Provider, p *pool.Pool, cfg config.RetrievalConfig) *VectorRetriever {
	return &VectorRetriever{embed: embed, store: store, p: p, cfg: cfg}
}

func (r *VectorRetriever) Type() string { return "vector" }

func (r *VectorRetriever) Search(ctx context.Context, query string, topK int) ([]schema.Candidate, error) {
	if topK <= 0 {
		topK = r.cfg.TopK
	}
	if r.cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	var out []schema.Candidate
	err := r.p.Do(ctx, func(ctx context.Context) error {
		vec, err := r.embed.GetEmbedding(ctx, query)
		if err != nil {
			return err
		}
		out, err = r.searchWithRetry(ctx, vec, topK)
		return err
	})
	return out, err
}

func (r *VectorRetriever) searchWithRetry(ctx context.Context, vec []float32, topK int) ([]schema.Candidate, error) {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.Retries; attempt++ {
		out, err := r.store.Search(ctx, vec, topK)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !schema.IsTransient(err) || ctx.Err() != nil {
			break
		}
		logger.Warnf("retriever: transient search failure (attempt %d/%d): %v", attempt+1, r.cfg.Retries+1, err)
	}
	return nil, lastErr
}
