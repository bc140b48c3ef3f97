package condense

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter measures query length for the condense gating heuristic.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// WordCounter approximates token counts by whitespace fields. Used when the
// BPE vocabulary is unavailable (offline deployments) and in tests.
type WordCounter struct{}

// Count implements TokenCounter.
func (WordCounter) Count(text string) int { return len(strings.Fields(text)) }

// NewTokenCounter returns a cl100k_base BPE counter, degrading to word
// counting when the encoding cannot be loaded.
func NewTokenCounter() TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return WordCounter{}
	}
	return &tiktokenCounter{enc: enc}
}
