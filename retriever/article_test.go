package retriever

import (
	"testing"

	"github.com/andozai/retrieval/schema"
)

func TestDetectArticleRefs(t *testing.T) {
	cases := []struct {
		in      string
		numbers []string
	}{
		{"что говорит статья 164 налогового кодекса", []string{"164"}},
		{"моддаи 25 чиро муқаррар мекунад", []string{"25"}},
		{"закон № 1208 о госбюджете", []string{"1208"}},
		{"пункт 3 статьи 164", []string{"3", "164"}},
		{"какая ставка ндс", nil},
		{"в 2024 году", nil},
	}
	for _, c := range cases {
		refs := DetectArticleRefs(c.in)
		if len(refs) != len(c.numbers) {
			t.Errorf("DetectArticleRefs(%q) = %+v, want numbers %v", c.in, refs, c.numbers)
			continue
		}
		for i, n := range c.numbers {
			if refs[i].Number != n {
				t.Errorf("DetectArticleRefs(%q)[%d] = %s, want %s", c.in, i, refs[i].Number, n)
			}
		}
	}
}

func TestBoostArticleMatches(t *testing.T) {
	refs := DetectArticleRefs("что говорит статья 164")
	cands := []schema.Candidate{
		{DocumentID: "d1", ChunkID: "1", Text: "Общие положения о налогах.", Distance: 0.4},
		{DocumentID: "d2", ChunkID: "1", Text: "Статья 164. Ставки налога на добавленную стоимость.", Distance: 0.8},
		{DocumentID: "d3", ChunkID: "1", Text: "Статья 12. Определения.", Distance: 0.5},
	}
	out := BoostArticleMatches(cands, refs)
	if out[1].Distance != 0.4 {
		t.Fatalf("cited chunk not boosted: %v", out[1].Distance)
	}
	if out[0].Distance != 0.4 || out[2].Distance != 0.5 {
		t.Fatalf("unrelated chunks changed: %+v", out)
	}
	// input untouched
	if cands[1].Distance != 0.8 {
		t.Fatal("input slice mutated")
	}
}

func TestBoostWithoutRefsIsNoop(t *testing.T) {
	cands := []schema.Candidate{{DocumentID: "d1", Distance: 0.7}}
	out := BoostArticleMatches(cands, nil)
	if out[0].Distance != 0.7 {
		t.Fatalf("distance changed without refs: %v", out[0].Distance)
	}
}
