// Package rank merges FAQ and vector candidates into the final context list.
package rank

import (
	"sort"

	"github.com/andozai/retrieval/schema"
)

// Options control filtering and ordering of the merged list.
type Options struct {
	// AcceptThreshold drops candidates whose distance exceeds it.
	AcceptThreshold float64
	// ConfidenceFloor promotes FAQ candidates at or above it ahead of all
	// vector candidates.
	ConfidenceFloor float64
	// TopN truncates the final list.
	TopN int
}

// Rank merges, filters, deduplicates and orders candidates. The result is
// deterministic: equal inputs always produce the same list. Ordering is
// high-confidence FAQ first (descending confidence), then everything else by
// ascending distance with document id breaking ties.
func Rank(faqCands, vectorCands []schema.Candidate, opts Options) []schema.ContextItem {
	merged := make([]schema.Candidate, 0, len(faqCands)+len(vectorCands))
	merged = append(merged, faqCands...)
	merged = append(merged, vectorCands...)

	// Dedupe by (document, chunk), keeping the closer entry.
	byKey := make(map[string]int, len(merged))
	deduped := make([]schema.Candidate, 0, len(merged))
	for _, c := range merged {
		if c.Distance > opts.AcceptThreshold {
			continue
		}
		if i, ok := byKey[c.Key()]; ok {
			if c.Distance < deduped[i].Distance {
				deduped[i] = c
			}
			continue
		}
		byKey[c.Key()] = len(deduped)
		deduped = append(deduped, c)
	}

	promoted := func(c schema.Candidate) bool {
		return c.Source == schema.SourceFAQ && c.Confidence >= opts.ConfidenceFloor
	}
	sort.SliceStable(deduped, func(i, j int) bool {
		pi, pj := promoted(deduped[i]), promoted(deduped[j])
		if pi != pj {
			return pi
		}
		if pi && pj && deduped[i].Confidence != deduped[j].Confidence {
			return deduped[i].Confidence > deduped[j].Confidence
		}
		if deduped[i].Distance != deduped[j].Distance {
			return deduped[i].Distance < deduped[j].Distance
		}
		return deduped[i].DocumentID < deduped[j].DocumentID
	})

	if opts.TopN > 0 && len(deduped) > opts.TopN {
		deduped = deduped[:opts.TopN]
	}
	items := make([]schema.ContextItem, len(deduped))
	for i, c := range deduped {
		items[i] = schema.ContextItem{
			DocumentID: c.DocumentID,
			ChunkID:    c.ChunkID,
			Text:       c.Text,
			Distance:   c.Distance,
			Source:     c.Source,
		}
	}
	return items
}
