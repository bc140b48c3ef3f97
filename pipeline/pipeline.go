// Package pipeline orchestrates one retrieval request: normalize, condense,
// FAQ match, vector retrieve, cross-lingual fallback, rank.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andozai/retrieval/common/logger"
	"github.com/andozai/retrieval/condense"
	"github.com/andozai/retrieval/config"
	"github.com/andozai/retrieval/fallback"
	"github.com/andozai/retrieval/faq"
	"github.com/andozai/retrieval/metrics"
	"github.com/andozai/retrieval/normalize"
	"github.com/andozai/retrieval/rank"
	"github.com/andozai/retrieval/retriever"
	"github.com/andozai/retrieval/schema"
	"github.com/andozai/retrieval/session"
)

// Stage names used in timings and metrics.
const (
	StageNormalize = "normalize"
	StageCondense  = "condense"
	StageFAQ       = "faq"
	StageVector    = "vector"
	StageFallback  = "fallback"
	StageRank      = "rank"
)

// Pipeline runs the full retrieval flow. Construct with New; safe for
// concurrent use.
type Pipeline struct {
	condenser *condense.Condenser
	matcher   *faq.Matcher
	retriever retriever.Retriever
	fb        *fallback.Controller
	sessions  session.Store
	cfg       *config.Config
}

// New wires the pipeline from its stage implementations.
func New(cfg *config.Config, condenser *condense.Condenser, matcher *faq.Matcher, r retriever.Retriever, fb *fallback.Controller, sessions session.Store) *Pipeline {
	return &Pipeline{
		condenser: condenser,
		matcher:   matcher,
		retriever: r,
		fb:        fb,
		sessions:  sessions,
		cfg:       cfg,
	}
}

// Retrieve produces the ranked grounding context for one user question. It
// never returns an error to the caller: stage failures degrade their stage
// and the deadline yields a partial result. The returned context may be
// empty.
func (p *Pipeline) Retrieve(ctx context.Context, question, conversationID string, topN int) *schema.RankedContext {
	if topN <= 0 {
		topN = p.cfg.Pipeline.TopN
	}
	budget := time.Duration(p.cfg.Pipeline.BudgetMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	rec := &run{
		result: &schema.RankedContext{QueryID: uuid.New().String()},
	}

	// Normalize.
	start := time.Now()
	q := normalize.Normalize(question)
	q.ID = rec.result.QueryID
	q.ConversationID = conversationID
	rec.stage(StageNormalize, start, schema.StageOK)

	rm := metrics.NewRetrievalMetrics(q.ID, q.Display, string(q.Language))
	defer rm.Log()

	// Greetings and injection attempts never reach the backends.
	if normalize.IsGreeting(q.Folded) || normalize.IsPromptInjection(q.Folded) {
		logger.Debugf("pipeline: query %s short-circuited by guard", q.ID)
		for _, s := range []string{StageCondense, StageFAQ, StageVector, StageFallback, StageRank} {
			rec.stage(s, time.Now(), schema.StageSkipped)
		}
		rec.finish(rm)
		return rec.result
	}

	history := p.history(ctx, q)

	// Condense and FAQ matching are independent: the matcher works on the
	// raw normalized query, so both run concurrently.
	var (
		wg        sync.WaitGroup
		condensed schema.CondensedQuery
		faqCands  []schema.Candidate
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		condensed = p.condenser.Condense(ctx, q, history)
		status := schema.StageOK
		switch {
		case ctx.Err() != nil:
			status = schema.StageTimeout
		case condensed.Source == schema.CondenseSourceSkipped && len(history) > 0 && p.condenser.ShouldCondense(q, history):
			status = schema.StageDegraded
		case condensed.Source == schema.CondenseSourceSkipped:
			status = schema.StageSkipped
		}
		rec.stage(StageCondense, start, status)
		metrics.IncCondenseSource(string(condensed.Source))
		switch condensed.Source {
		case schema.CondenseSourceCache:
			metrics.IncCacheHit()
		case schema.CondenseSourceLLM:
			metrics.IncCacheMiss()
		}
		rm.CondenseSource = string(condensed.Source)
		rm.CondenseApplied = condensed.Applied
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		faqCands = p.matcher.Match(ctx, q)
		rec.stage(StageFAQ, start, schema.StageOK)
		metrics.ObserveCandidates(StageFAQ, len(faqCands))
		rm.FAQMatches = len(faqCands)
	}()
	wg.Wait()

	// Vector retrieval uses the condensed text and waits for condensation.
	vectorCands := p.retrieveVector(ctx, rec, q, condensed.Text)
	rm.VectorResults = len(vectorCands)

	// Cross-lingual fallback for weak Tajik results.
	vectorCands = p.applyFallback(ctx, rec, rm, q, vectorCands)

	start = time.Now()
	items := rank.Rank(faqCands, vectorCands, rank.Options{
		AcceptThreshold: p.cfg.Rank.AcceptDistance,
		ConfidenceFloor: p.cfg.Rank.ConfidenceFloor,
		TopN:            topN,
	})
	rec.stage(StageRank, start, schema.StageOK)
	rec.result.Items = items

	if ctx.Err() != nil {
		logger.Warnf("pipeline: %v for query %s, returning completed stages", schema.ErrBudgetExceeded, q.ID)
		rec.result.Partial = true
		metrics.IncPartial()
	}
	rec.finish(rm)

	p.remember(q)
	return rec.result
}

// history loads prior turns, capped to the configured rounds. Failures
// degrade to an empty history.
func (p *Pipeline) history(ctx context.Context, q schema.Query) []schema.ChatMessage {
	if q.ConversationID == "" || p.sessions == nil {
		return nil
	}
	msgs, err := p.sessions.History(ctx, q.ConversationID)
	if err != nil {
		logger.Warnf("pipeline: history load failed for %s: %v", q.ConversationID, err)
		return nil
	}
	if max := p.cfg.Pipeline.HistoryRounds * 2; len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}
	return msgs
}

func (p *Pipeline) retrieveVector(ctx context.Context, rec *run, q schema.Query, text string) []schema.Candidate {
	start := time.Now()
	topK := p.cfg.Retrieval.TopK
	refs := retriever.DetectArticleRefs(strings.ToLower(text))
	if len(refs) > 0 && p.cfg.Retrieval.ArticleTopK > topK {
		topK = p.cfg.Retrieval.ArticleTopK
	}
	cands, err := p.retriever.Search(ctx, text, topK)
	switch {
	case err != nil && ctx.Err() != nil:
		rec.stage(StageVector, start, schema.StageTimeout)
		logger.Warnf("pipeline: vector stage timed out for query %s", q.ID)
		return nil
	case err != nil:
		rec.stage(StageVector, start, schema.StageDegraded)
		logger.Warnf("pipeline: vector stage degraded for query %s: %v", q.ID, err)
		return nil
	}
	cands = retriever.BoostArticleMatches(cands, refs)
	rec.stage(StageVector, start, schema.StageOK)
	metrics.ObserveCandidates(StageVector, len(cands))
	return cands
}

func (p *Pipeline) applyFallback(ctx context.Context, rec *run, rm *metrics.RetrievalMetrics, q schema.Query, primary []schema.Candidate) []schema.Candidate {
	start := time.Now()
	decision := p.fb.Evaluate(q, primary)
	rm.FallbackState = string(decision.State)
	rm.FallbackReason = decision.Reason

	if decision.State != fallback.StateTriggered {
		metrics.IncFallback(string(decision.State))
		rec.stage(StageFallback, start, schema.StageSkipped)
		return primary
	}

	hinted, err := p.retriever.Search(ctx, decision.HintedQuery, p.cfg.Retrieval.TopK)
	if err != nil {
		metrics.IncFallback(string(fallback.StateTriggered))
		rec.stage(StageFallback, start, schema.StageDegraded)
		logger.Warnf("pipeline: hinted retrieval failed for query %s: %v", q.ID, err)
		return primary
	}
	merged := p.fb.Merge(primary, hinted)
	metrics.IncFallback(string(fallback.StateMerged))
	rm.FallbackState = string(fallback.StateMerged)
	rec.stage(StageFallback, start, schema.StageOK)
	metrics.ObserveCandidates(StageFallback, len(merged))
	return merged
}

// remember appends the user question to the conversation, detached from the
// request deadline so a spent budget does not lose the turn.
func (p *Pipeline) remember(q schema.Query) {
	if q.ConversationID == "" || p.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := p.sessions.Append(ctx, q.ConversationID, schema.ChatMessage{
		Role:      "user",
		Content:   q.Display,
		Timestamp: time.Now(),
	})
	if err != nil {
		logger.Warnf("pipeline: history append failed for %s: %v", q.ConversationID, err)
	}
}

// run accumulates per-request stage timings.
type run struct {
	mu     sync.Mutex
	result *schema.RankedContext
}

func (r *run) stage(name string, start time.Time, status schema.StageStatus) {
	d := time.Since(start)
	r.mu.Lock()
	r.result.Stages = append(r.result.Stages, schema.StageTiming{
		Stage:      name,
		DurationMs: d.Milliseconds(),
		Status:     status,
	})
	r.mu.Unlock()
	metrics.ObserveStage(name, string(status), start)
}

func (r *run) finish(rm *metrics.RetrievalMetrics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.result.Stages {
		rm.RecordStage(s.Stage, time.Duration(s.DurationMs)*time.Millisecond)
	}
	rm.FinalCount = len(r.result.Items)
	rm.Partial = r.result.Partial
}
