// Package fallback decides whether a weak Tajik retrieval pass warrants a
// second, Russian-hinted pass, and merges the results of the two passes.
package fallback

import (
	"regexp"
	"strings"
	"unicode"
)

// The corpus is predominantly Russian, so a hinted retry often recovers
// relevant chunks a pure Tajik query misses. Phrase hints run over the whole
// query first; word hints match whole tokens only, so Russian words sharing a
// prefix stay untouched.
var tajikPhraseHints = []struct {
	re *regexp.Regexp
	ru string
}{
	{regexp.MustCompile(`(?i)чӣ\s*тавр`), "как"},
	{regexp.MustCompile(`(?i)дар\s+куҷо`), "где"},
}

var tajikWordHints = []struct {
	re *regexp.Regexp
	ru string
}{
	{regexp.MustCompile(`(?i)^ч[иӣ]$`), "как"},
	{regexp.MustCompile(`(?i)^андоз(ро|и)?$`), "налог"},
	{regexp.MustCompile(`(?i)^супор(ам|ем|ад|анд|ӣ|ид|идан)$`), "уплатить"},
	{regexp.MustCompile(`(?i)^пардохт$`), "уплата"},
	{regexp.MustCompile(`(?i)^меъёр(и)?$`), "ставка"},
	{regexp.MustCompile(`(?i)^фоиз$`), "процент"},
	{regexp.MustCompile(`(?i)^ҷарима$`), "штраф"},
}

// RussianHint rewrites a Tajik query onto Russian hint vocabulary. Returns
// the rewritten query and whether any substitution applied; an unchanged
// query means a hinted retry would just repeat the primary pass.
func RussianHint(query string) (string, bool) {
	hinted := query
	for _, h := range tajikPhraseHints {
		hinted = h.re.ReplaceAllString(hinted, h.ru)
	}
	fields := strings.Fields(hinted)
	for i, f := range fields {
		core := strings.TrimFunc(f, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if core == "" {
			continue
		}
		for _, h := range tajikWordHints {
			if h.re.MatchString(core) {
				fields[i] = strings.Replace(f, core, h.ru, 1)
				break
			}
		}
	}
	out := strings.Join(fields, " ")
	return out, out != strings.Join(strings.Fields(query), " ")
}
