package faq

import (
	"context"
	"sort"

	"github.com/andozai/retrieval/common/logger"
	"github.com/andozai/retrieval/normalize"
	"github.com/andozai/retrieval/schema"
)

// Matcher scores a query against the FAQ store. Matching is lexical only;
// no embedding call is made on this path.
type Matcher struct {
	store         Store
	minConfidence float64
}

// NewMatcher builds a Matcher with the given confidence floor.
func NewMatcher(store Store, minConfidence float64) *Matcher {
	return &Matcher{store: store, minConfidence: minConfidence}
}

// Match returns FAQ candidates for the query, best first. An exact match on
// the folded question form scores 1.0; otherwise confidence is the token
// overlap ratio. Matches below the confidence floor are dropped. Store
// failures degrade to an empty result.
func (m *Matcher) Match(ctx context.Context, q schema.Query) []schema.Candidate {
	entries, err := m.store.Search(ctx, q.Folded, q.Language)
	if err != nil {
		logger.Warnf("faq: store search failed, skipping faq stage: %v", err)
		return nil
	}
	qTokens := normalize.Tokenize(q.Folded)
	if len(qTokens) == 0 {
		return nil
	}

	var out []schema.Candidate
	for _, e := range entries {
		eq := normalize.Normalize(e.Question)
		conf := 0.0
		if eq.Folded == q.Folded {
			conf = 1.0
		} else {
			conf = overlapRatio(qTokens, normalize.Tokenize(eq.Folded))
		}
		if conf < m.minConfidence {
			continue
		}
		out = append(out, schema.Candidate{
			Source:     schema.SourceFAQ,
			DocumentID: e.ID,
			Text:       e.Answer,
			Distance:   1 - conf,
			Confidence: conf,
			Metadata: map[string]any{
				"question": e.Question,
				"category": e.Category,
				"priority": e.Priority,
			},
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		pi, _ := out[i].Metadata["priority"].(int)
		pj, _ := out[j].Metadata["priority"].(int)
		return pi > pj
	})
	return out
}

// overlapRatio is |a ∩ b| / max(|a|, |b|) over stemmed token sets.
func overlapRatio(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	shared := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			shared++
		}
	}
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	return float64(shared) / float64(max)
}
