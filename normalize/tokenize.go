package normalize

import (
	"regexp"
	"sort"
)

// Stopwords shared by Russian and Tajik tax questions. Greetings are included
// so they never dominate token-overlap scores.
var ruTjStopwords = map[string]struct{}{
	"и": {}, "или": {}, "а": {}, "но": {}, "что": {}, "это": {}, "этот": {}, "эта": {}, "эти": {},
	"такой": {}, "такая": {}, "какой": {}, "какая": {}, "какие": {}, "каково": {}, "как": {},
	"где": {}, "когда": {}, "почему": {}, "зачем": {}, "сколько": {}, "ли": {}, "же": {}, "бы": {},
	"на": {}, "в": {}, "во": {}, "к": {}, "ко": {}, "по": {}, "о": {}, "об": {}, "от": {}, "до": {},
	"для": {}, "при": {}, "за": {}, "из": {}, "у": {}, "над": {}, "под": {}, "без": {}, "с": {},
	"со": {}, "про": {}, "именно": {}, "пожалуйста": {}, "андоза": {}, "чанд": {}, "чӣ": {},
	"ин": {}, "барои": {}, "бо": {}, "аз": {}, "какова": {}, "каков": {}, "какую": {},
	"салом": {}, "привет": {}, "здравствуйте": {},
}

var (
	wordRe     = regexp.MustCompile(`[\p{L}\p{N}\-]+`)
	ruSuffixRe = regexp.MustCompile(`(ого|его|ому|ему|ыми|ими|ых|их|ая|яя|ое|ее|ый|ий|ой|а|я|о|е|ы|и|у|ю|ом|ем|ам|ям|ах|ях)$`)
	tjSuffixRe = regexp.MustCompile(`(ро|и|ҳо|он|онӣ)$`)
	digitsRe   = regexp.MustCompile(`^\d+$`)
)

// StemLight strips common Russian and Tajik suffixes. It is intentionally
// crude; both FAQ matching and the condense heuristic only need stable stems,
// not linguistic correctness.
func StemLight(word string) string {
	if len([]rune(word)) <= 3 {
		return word
	}
	word = ruSuffixRe.ReplaceAllString(word, "")
	return tjSuffixRe.ReplaceAllString(word, "")
}

// Tokenize splits folded text into a sorted set of stemmed content tokens,
// dropping stopwords and fragments too short to carry meaning. Hyphenated
// words contribute both the full token and their pieces.
func Tokenize(folded string) []string {
	set := make(map[string]struct{})
	add := func(tok string) {
		if _, stop := ruTjStopwords[tok]; stop {
			return
		}
		stem := StemLight(tok)
		if len([]rune(stem)) >= 2 || digitsRe.MatchString(stem) {
			set[stem] = struct{}{}
		}
	}
	for _, tok := range wordRe.FindAllString(folded, -1) {
		add(tok)
		if idx := indexRune(tok, '-'); idx >= 0 {
			for _, piece := range splitHyphen(tok) {
				add(piece)
			}
		}
	}
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

func indexRune(s string, r rune) int {
	for i, c := range s {
		if c == r {
			return i
		}
	}
	return -1
}

func splitHyphen(s string) []string {
	var out []string
	start := 0
	for i, c := range s {
		if c == '-' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
