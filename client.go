// Package retrieval wires the multilingual retrieval pipeline together and
// exposes it as a client and an MCP server.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/andozai/retrieval/cache"
	"github.com/andozai/retrieval/common/httpx"
	"github.com/andozai/retrieval/common/pool"
	"github.com/andozai/retrieval/condense"
	"github.com/andozai/retrieval/config"
	"github.com/andozai/retrieval/embedding"
	"github.com/andozai/retrieval/fallback"
	"github.com/andozai/retrieval/faq"
	"github.com/andozai/retrieval/llm"
	"github.com/andozai/retrieval/pipeline"
	"github.com/andozai/retrieval/retriever"
	"github.com/andozai/retrieval/schema"
	"github.com/andozai/retrieval/session"
	"github.com/andozai/retrieval/vectordb"
)

// Client owns external backend connections and the assembled pipeline.
type Client struct {
	config   *config.Config
	vectordb vectordb.Provider
	sessions session.Store
	pipeline *pipeline.Pipeline
}

// NewClient builds all providers from configuration and assembles the
// pipeline. faqEntries seeds the in-memory FAQ store when no HTTP endpoint
// is configured.
func NewClient(ctx context.Context, cfg *config.Config, faqEntries []faq.Entry) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{config: cfg}

	llmProvider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm provider failed, err: %w", err)
	}
	embedProvider, err := embedding.NewProvider(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider failed, err: %w", err)
	}
	vdbProvider, err := vectordb.NewProvider(ctx, cfg.VectorDB)
	if err != nil {
		return nil, fmt.Errorf("create vector store provider failed, err: %w", err)
	}
	c.vectordb = vdbProvider

	sessions, err := session.NewStore(cfg.Session)
	if err != nil {
		_ = vdbProvider.Close()
		return nil, fmt.Errorf("create session store failed, err: %w", err)
	}
	c.sessions = sessions

	workers := pool.New(cfg.Pool.Size)
	condenseCache := cache.NewCondenseCache(cfg.Cache.MaxEntries, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	condenser := condense.New(llmProvider, condenseCache, workers, condense.NewTokenCounter(), cfg.Condense)

	var store faq.Store
	if cfg.FAQ.Endpoint != "" {
		store = faq.NewHTTPStore(cfg.FAQ.Endpoint, httpx.NewFromConfig(cfg.HTTP))
	} else {
		store = faq.NewMemoryStore(faqEntries)
	}
	matcher := faq.NewMatcher(store, cfg.FAQ.MinConfidence)

	vec := retriever.NewVector(embedProvider, vdbProvider, workers, cfg.Retrieval)
	fb := fallback.New(cfg.Fallback, cfg.Rank.AcceptDistance)

	c.pipeline = pipeline.New(cfg, condenser, matcher, vec, fb, sessions)
	return c, nil
}

// Retrieve runs one retrieval request. See pipeline.Pipeline.Retrieve.
func (c *Client) Retrieve(ctx context.Context, question, conversationID string, topN int) *schema.RankedContext {
	return c.pipeline.Retrieve(ctx, question, conversationID, topN)
}

// Close releases backend connections.
func (c *Client) Close() error {
	var first error
	if err := c.sessions.Close(); err != nil {
		first = err
	}
	if err := c.vectordb.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
