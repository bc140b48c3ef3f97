package faq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andozai/retrieval/common/httpx"
	"github.com/andozai/retrieval/normalize"
	"github.com/andozai/retrieval/schema"
)

var testEntries = []Entry{
	{ID: "faq-nds", Question: "Какая ставка НДС?", Answer: "Стандартная ставка НДС составляет 14 процентов.", Language: schema.LangRussian, Priority: 10},
	{ID: "faq-profit", Question: "Какая ставка налога на прибыль?", Answer: "Ставка налога на прибыль составляет 18 процентов.", Language: schema.LangRussian},
	{ID: "faq-aai", Question: "Меъёри ААИ чанд фоиз аст?", Answer: "Меъёри стандартии ААИ 14 фоиз аст.", Language: schema.LangTajik},
}

func TestMatchExact(t *testing.T) {
	m := NewMatcher(NewMemoryStore(testEntries), 0.35)
	q := normalize.Normalize("Какая ставка НДС?")

	cands := m.Match(context.Background(), q)
	if len(cands) == 0 {
		t.Fatal("no candidates for exact question")
	}
	best := cands[0]
	if best.DocumentID != "faq-nds" {
		t.Fatalf("best = %s, want faq-nds", best.DocumentID)
	}
	if best.Confidence != 1.0 {
		t.Fatalf("exact match confidence = %v, want 1.0", best.Confidence)
	}
	if best.Distance != 0 {
		t.Fatalf("exact match distance = %v, want 0", best.Distance)
	}
	if best.Source != schema.SourceFAQ {
		t.Fatalf("source = %s", best.Source)
	}
}

func TestMatchExactVariantCasingAndSpacing(t *testing.T) {
	m := NewMatcher(NewMemoryStore(testEntries), 0.35)
	q := normalize.Normalize("  какая   СТАВКА ндс?  ")

	cands := m.Match(context.Background(), q)
	if len(cands) == 0 || cands[0].Confidence != 1.0 {
		t.Fatalf("folded comparison failed: %+v", cands)
	}
}

func TestMatchFuzzyOverlap(t *testing.T) {
	m := NewMatcher(NewMemoryStore(testEntries), 0.35)
	q := normalize.Normalize("ставка НДС в этом году")

	cands := m.Match(context.Background(), q)
	if len(cands) == 0 {
		t.Fatal("fuzzy match found nothing")
	}
	if cands[0].DocumentID != "faq-nds" {
		t.Fatalf("best = %s, want faq-nds", cands[0].DocumentID)
	}
	if cands[0].Confidence >= 1.0 || cands[0].Confidence < 0.35 {
		t.Fatalf("confidence out of range: %v", cands[0].Confidence)
	}
}

func TestMatchBelowFloorDropped(t *testing.T) {
	m := NewMatcher(NewMemoryStore(testEntries), 0.35)
	q := normalize.Normalize("порядок регистрации транспортного средства")

	if cands := m.Match(context.Background(), q); len(cands) != 0 {
		t.Fatalf("unrelated query matched: %+v", cands)
	}
}

func TestMatchLanguageScoping(t *testing.T) {
	m := NewMatcher(NewMemoryStore(testEntries), 0.35)
	q := normalize.Normalize("Меъёри ААИ чанд фоиз аст?")

	cands := m.Match(context.Background(), q)
	if len(cands) == 0 || cands[0].DocumentID != "faq-aai" {
		t.Fatalf("tajik entry not matched: %+v", cands)
	}
}

func TestHTTPStoreSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("lang"); got != "ru" {
			t.Errorf("lang = %q, want ru", got)
		}
		_ = json.NewEncoder(w).Encode(testEntries[:2])
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, httpx.NewFromConfig(nil))
	entries, err := store.Search(context.Background(), "какая ставка ндс?", schema.LangRussian)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "faq-nds" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestHTTPStoreErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, httpx.NewFromConfig(nil))
	_, err := store.Search(context.Background(), "налог", schema.LangRussian)
	if err == nil || !schema.IsTransient(err) {
		t.Fatalf("err = %v, want transient", err)
	}
}

func TestMatcherDegradesOnStoreFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewMatcher(NewHTTPStore(srv.URL, httpx.NewFromConfig(nil)), 0.35)
	q := normalize.Normalize("Какая ставка НДС?")
	if cands := m.Match(context.Background(), q); cands != nil {
		t.Fatalf("store failure must degrade to nil, got %+v", cands)
	}
}
