package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andozai/retrieval/schema"
)

func opts() Options {
	return Options{AcceptThreshold: 1.2, ConfidenceFloor: 0.6, TopN: 5}
}

func vec(doc, chunk string, dist float64) schema.Candidate {
	return schema.Candidate{Source: schema.SourceVector, DocumentID: doc, ChunkID: chunk, Text: doc + "/" + chunk, Distance: dist}
}

func faqCand(id string, conf float64) schema.Candidate {
	return schema.Candidate{Source: schema.SourceFAQ, DocumentID: id, Text: id, Distance: 1 - conf, Confidence: conf}
}

func TestRankFiltersBeyondThreshold(t *testing.T) {
	out := Rank(nil, []schema.Candidate{vec("d1", "1", 0.4), vec("d2", "1", 1.5)}, opts())
	require.Len(t, out, 1)
	assert.Equal(t, "d1", out[0].DocumentID)
}

func TestRankDeduplicatesKeepingMinDistance(t *testing.T) {
	primary := []schema.Candidate{
		vec("5", "1", 0.8),
		vec("6", "1", 0.5),
	}
	hinted := []schema.Candidate{
		vec("5", "1", 0.3), // same chunk, closer after the hinted pass
	}
	out := Rank(nil, append(primary, hinted...), opts())
	require.Len(t, out, 2)
	assert.Equal(t, "5", out[0].DocumentID)
	assert.Equal(t, 0.3, out[0].Distance)
	assert.Equal(t, "6", out[1].DocumentID)
}

func TestRankPromotesConfidentFAQ(t *testing.T) {
	faqs := []schema.Candidate{faqCand("faq-1", 0.8)}
	vecs := []schema.Candidate{vec("d1", "1", 0.05)} // closer than the FAQ by raw distance
	out := Rank(faqs, vecs, opts())
	require.Len(t, out, 2)
	assert.Equal(t, schema.SourceFAQ, out[0].Source)
	assert.Equal(t, "faq-1", out[0].DocumentID)
}

func TestRankLowConfidenceFAQNotPromoted(t *testing.T) {
	faqs := []schema.Candidate{faqCand("faq-1", 0.4)} // below floor: competes on distance
	vecs := []schema.Candidate{vec("d1", "1", 0.05)}
	out := Rank(faqs, vecs, opts())
	require.Len(t, out, 2)
	assert.Equal(t, "d1", out[0].DocumentID)
}

func TestRankTruncatesToTopN(t *testing.T) {
	o := opts()
	o.TopN = 2
	vecs := []schema.Candidate{vec("d1", "1", 0.1), vec("d2", "1", 0.2), vec("d3", "1", 0.3)}
	out := Rank(nil, vecs, o)
	require.Len(t, out, 2)
	assert.Equal(t, "d1", out[0].DocumentID)
	assert.Equal(t, "d2", out[1].DocumentID)
}

func TestRankDeterministic(t *testing.T) {
	faqs := []schema.Candidate{faqCand("faq-1", 0.9), faqCand("faq-2", 0.7)}
	vecs := []schema.Candidate{
		vec("d2", "1", 0.4),
		vec("d1", "1", 0.4), // tie broken by document id
		vec("d3", "2", 0.6),
	}
	first := Rank(faqs, vecs, opts())
	for i := 0; i < 10; i++ {
		again := Rank(faqs, vecs, opts())
		require.Equal(t, first, again, "iteration %d", i)
	}
	require.Len(t, first, 5)
	assert.Equal(t, "faq-1", first[0].DocumentID)
	assert.Equal(t, "faq-2", first[1].DocumentID)
	assert.Equal(t, "d1", first[2].DocumentID)
	assert.Equal(t, "d2", first[3].DocumentID)
	assert.Equal(t, "d3", first[4].DocumentID)
}

func TestRankEmptyInput(t *testing.T) {
	out := Rank(nil, nil, opts())
	assert.Empty(t, out)
}
