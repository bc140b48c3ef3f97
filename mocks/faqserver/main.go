// Command faqserver is a development mock of the remote FAQ service. It
// serves a fixed entry set on GET /faq, filtered by the lang parameter.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
)

type entry struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
	Language string `json:"language,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

var entries = []entry{
	{ID: "faq-nds-rate", Question: "Какая ставка НДС?", Answer: "Стандартная ставка НДС составляет 14 процентов.", Category: "НДС", Language: "ru", Priority: 10},
	{ID: "faq-nds-rate-tj", Question: "Меъёри ААИ чанд фоиз аст?", Answer: "Меъёри стандартии ААИ 14 фоиз аст.", Category: "ААИ", Language: "tj", Priority: 10},
	{ID: "faq-register", Question: "Как зарегистрироваться в качестве ИП?", Answer: "Регистрация проводится через портал налоговой службы.", Category: "Регистрация", Language: "ru", Priority: 5},
}

func handleFAQ(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		if lang == "" || lang == "unknown" || e.Language == "" || e.Language == lang {
			out = append(out, e)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func main() {
	addr := ":8082"
	if v := os.Getenv("FAQ_ADDR"); v != "" {
		addr = v
	}
	http.HandleFunc("/faq", handleFAQ)
	log.Printf("FAQ mock listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
