// Package normalize performs deterministic text cleanup and language tag
// inference for incoming questions. Everything here is pure: no I/O, no
// failure modes, and Normalize is idempotent over its own output.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/andozai/retrieval/schema"
)

var folder = cases.Fold()

// tajikLetters only occur in the Tajik Cyrillic alphabet, never in Russian.
var tajikLetters = []rune{'ӯ', 'қ', 'ҳ', 'ҷ', 'ғ', 'ӣ'}

// Normalize builds the canonical Query for raw input. Display keeps the
// original casing for rendering; Folded is the case-folded form used for
// matching only.
func Normalize(raw string) schema.Query {
	display := collapse(norm.NFC.String(raw))
	folded := folder.String(display)
	return schema.Query{
		Raw:      raw,
		Display:  display,
		Folded:   folded,
		Language: DetectLanguage(folded),
	}
}

// DetectLanguage infers the language tag of folded text. Tajik-specific
// letters win over the generic Cyrillic check; text without Cyrillic at all
// is tagged unknown.
func DetectLanguage(folded string) schema.Language {
	sawCyrillic := false
	for _, r := range folded {
		for _, t := range tajikLetters {
			if r == t {
				return schema.LangTajik
			}
		}
		if unicode.Is(unicode.Cyrillic, r) {
			sawCyrillic = true
		}
	}
	if sawCyrillic {
		return schema.LangRussian
	}
	return schema.LangUnknown
}

// collapse trims and squeezes all interior whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
