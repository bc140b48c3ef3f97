package normalize

import (
	"regexp"
	"strings"
)

// Query guards short-circuit retrieval before any backend is touched.
// Greetings get a canned reply from the chat layer; injection attempts are
// refused outright. Both operate on the folded form.

var greetingRe = regexp.MustCompile(`(^|\s)(салом|привет|здравствуйте|добрый (день|вечер|утро))($|\s|[!.,?])`)

var injectionPatterns = []string{
	"ignore previous instructions",
	"forget all instructions",
	"system prompt",
	"developer message",
	"reveal prompt",
	"bypass",
	"jailbreak",
	"act as",
	"disregard above",
	"игнорируй предыдущие",
	"раскрой системный",
	"обойди ограничения",
	"фаромӯш кун дастур",
	"дастурҳоро нодида гир",
}

// IsGreeting reports whether folded text is a bare greeting. Longer messages
// that merely start with a greeting still go through retrieval.
func IsGreeting(folded string) bool {
	if !greetingRe.MatchString(folded) {
		return false
	}
	return len(strings.Fields(folded)) <= 3
}

// IsPromptInjection reports whether folded text tries to override the
// assistant's instructions.
func IsPromptInjection(folded string) bool {
	for _, p := range injectionPatterns {
		if strings.Contains(folded, p) {
			return true
		}
	}
	return false
}
