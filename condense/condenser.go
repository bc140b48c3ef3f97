// Package condense rewrites context-dependent follow-up questions into
// standalone search queries. Condensation failure is a degradation, never a
// hard error: the pipeline falls back to the normalized query.
package condense

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/andozai/retrieval/cache"
	"github.com/andozai/retrieval/common/logger"
	"github.com/andozai/retrieval/common/pool"
	"github.com/andozai/retrieval/config"
	"github.com/andozai/retrieval/llm"
	"github.com/andozai/retrieval/normalize"
	"github.com/andozai/retrieval/schema"
)

// Anaphoric markers that make a follow-up question depend on prior turns.
// Russian, Tajik and English variants.
var anaphoraRe = regexp.MustCompile(`(^|\s)(это|этом|этим|этого|оно|он|она|они|там|выше|туда|такое|ин|он[ҳх]о|дар он ҷо|болотар|it|there|above|that)($|\s|[?!.,])`)

// Condenser decides whether rewriting is needed and invokes the LLM when it
// is, through the condense cache and the bounded worker pool.
type Condenser struct {
	provider llm.Provider
	cache    *cache.CondenseCache
	pool     *pool.Pool
	counter  TokenCounter
	cfg      config.CondenseConfig
}

// New builds a Condenser. counter may be nil, in which case the default
// tiktoken-backed counter is used.
func New(provider llm.Provider, c *cache.CondenseCache, p *pool.Pool, counter TokenCounter, cfg config.CondenseConfig) *Condenser {
	if counter == nil {
		counter = NewTokenCounter()
	}
	return &Condenser{provider: provider, cache: c, pool: p, counter: counter, cfg: cfg}
}

// ShouldCondense is the cheap gating heuristic. Queries without prior
// conversational context never condense: they are the dominant traffic path
// and must stay fast. With history, a query condenses when it carries an
// anaphoric marker, is below the token-count threshold, or shows low distinct
// token diversity; long diverse follow-ups are assumed standalone already.
func (c *Condenser) ShouldCondense(q schema.Query, history []schema.ChatMessage) bool {
	if len(history) == 0 {
		return false
	}
	if anaphoraRe.MatchString(q.Folded) {
		return true
	}
	tokens := c.counter.Count(q.Display)
	if tokens < c.cfg.MinTokens {
		return true
	}
	words := strings.Fields(q.Folded)
	if len(words) > 0 {
		distinct := len(normalize.Tokenize(q.Folded))
		if float64(distinct)/float64(len(words)) < c.cfg.MinDistinctRatio {
			return true
		}
	}
	return false
}

// Condense produces the CondensedQuery for q. The rewrite is cached by
// (language, folded text); concurrent identical requests share one LLM call.
func (c *Condenser) Condense(ctx context.Context, q schema.Query, history []schema.ChatMessage) schema.CondensedQuery {
	out := schema.CondensedQuery{
		QueryID: q.ID,
		Text:    q.Display,
		Source:  schema.CondenseSourceSkipped,
	}
	if !c.ShouldCondense(q, history) {
		return out
	}

	key := cache.Key(q.Language, q.Folded)
	value, hit, err := c.cache.GetOrCompute(ctx, key, func(ctx context.Context) (string, error) {
		return c.rewrite(ctx, q, history)
	})
	if err != nil {
		logger.Warnf("condense: rewrite failed, using normalized query: %v", err)
		return out
	}
	out.Text = value
	out.Applied = value != q.Display
	if hit {
		out.Source = schema.CondenseSourceCache
	} else {
		out.Source = schema.CondenseSourceLLM
	}
	return out
}

// rewrite calls the LLM under its own timeout via the worker pool. Empty or
// runaway rewrites fall back to the normalized query without error, so they
// are cached and not retried for every request.
func (c *Condenser) rewrite(ctx context.Context, q schema.Query, history []schema.ChatMessage) (string, error) {
	timeout := time.Duration(c.cfg.TimeoutMs) * time.Millisecond
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := buildPrompt(q.Display, history)
	var rewritten string
	err := c.pool.Do(callCtx, func(ctx context.Context) error {
		resp, err := c.provider.GenerateCompletion(ctx, prompt)
		if err != nil {
			return err
		}
		rewritten = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("condense llm call: %w", err)
	}

	rewritten = strings.Trim(strings.TrimSpace(rewritten), `"`)
	if rewritten == "" || len(strings.Fields(rewritten)) > c.cfg.MaxRewriteWords {
		return q.Display, nil
	}
	return rewritten, nil
}

// buildPrompt renders the condensation prompt over the last three turns.
func buildPrompt(question string, history []schema.ChatMessage) string {
	var b strings.Builder
	start := len(history) - 3
	if start < 0 {
		start = 0
	}
	for _, msg := range history[start:] {
		role := "AI"
		if msg.Role == "user" {
			role = "User"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return fmt.Sprintf(
		"Given the following conversation and a follow-up question, rephrase the follow-up question "+
			"to be a standalone search query that contains all necessary keywords from the context.\n"+
			"Rules:\n"+
			"1) Keep it concise (max 10 words).\n"+
			"2) Just return the refined query, no explanations.\n"+
			"3) If the question is already standalone, return it as is.\n\n"+
			"Chat History:\n%s\n"+
			"Follow-up Question: %s\n"+
			"Standalone Query:",
		b.String(), question)
}
