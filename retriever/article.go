package retriever

import (
	"regexp"
	"strings"

	"github.com/andozai/retrieval/schema"
)

// Queries that cite a specific article, clause or law number need the exact
// provision, not just topically similar text. For those the search widens and
// chunks that mention the cited number are pulled toward the front.
var articleRefRe = regexp.MustCompile(`(?i)(стать[яией]\p{L}*|моддаи?|закон\p{L}*|қонун\p{L}*|пункт\p{L}*|банди?)\s*(№\s*)?(\d+)`)

// ArticleRef is a detected reference to a numbered legal provision.
type ArticleRef struct {
	Kind   string // folded form of the citing word, e.g. "статья"
	Number string
}

// DetectArticleRefs extracts numbered provision references from the folded
// query. Nil when the query cites nothing.
func DetectArticleRefs(folded string) []ArticleRef {
	ms := articleRefRe.FindAllStringSubmatch(folded, -1)
	if len(ms) == 0 {
		return nil
	}
	refs := make([]ArticleRef, 0, len(ms))
	for _, m := range ms {
		refs = append(refs, ArticleRef{Kind: strings.ToLower(m[1]), Number: m[3]})
	}
	return refs
}

// BoostArticleMatches halves the distance of candidates whose text mentions a
// cited provision number, keeping relative order among boosted candidates.
func BoostArticleMatches(cands []schema.Candidate, refs []ArticleRef) []schema.Candidate {
	if len(refs) == 0 {
		return cands
	}
	out := make([]schema.Candidate, len(cands))
	copy(out, cands)
	for i := range out {
		if mentionsRef(out[i].Text, refs) {
			out[i].Distance /= 2
		}
	}
	return out
}

func mentionsRef(text string, refs []ArticleRef) bool {
	lower := strings.ToLower(text)
	for _, ref := range refs {
		for _, m := range articleRefRe.FindAllStringSubmatch(lower, -1) {
			if m[3] == ref.Number {
				return true
			}
		}
	}
	return false
}
