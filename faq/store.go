// Package faq matches queries against a curated question/answer set before
// the vector index is consulted. Curated answers outrank retrieved chunks.
package faq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/andozai/retrieval/common/httpx"
	"github.com/andozai/retrieval/schema"
)

// Entry is one curated FAQ record.
type Entry struct {
	ID       string          `json:"id"`
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Category string          `json:"category,omitempty"`
	Language schema.Language `json:"language,omitempty"`
	Priority int             `json:"priority,omitempty"`
}

// Store provides FAQ entries scoped to a language. Entries with an empty
// Language apply to every query language.
type Store interface {
	// Search returns entries eligible for the given folded query.
	Search(ctx context.Context, folded string, lang schema.Language) ([]Entry, error)
}

// MemoryStore is an in-process Store backed by a static entry list.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore builds a store over the given entries.
func NewMemoryStore(entries []Entry) *MemoryStore {
	s := &MemoryStore{}
	s.Replace(entries)
	return s
}

// Replace swaps the entry set atomically, for hot reloads.
func (s *MemoryStore) Replace(entries []Entry) {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	s.mu.Lock()
	s.entries = cp
	s.mu.Unlock()
}

func (s *MemoryStore) Search(_ context.Context, _ string, lang schema.Language) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Language == "" || e.Language == lang || lang == schema.LangUnknown {
			out = append(out, e)
		}
	}
	return out, nil
}

// HTTPStore fetches FAQ entries from a remote service. The service receives
// the folded query and language and returns a JSON array of entries.
type HTTPStore struct {
	endpoint string
	client   *httpx.Client
}

// NewHTTPStore builds a store talking to the given endpoint.
func NewHTTPStore(endpoint string, client *httpx.Client) *HTTPStore {
	return &HTTPStore{endpoint: endpoint, client: client}
}

func (s *HTTPStore) Search(ctx context.Context, folded string, lang schema.Language) ([]Entry, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("faq: bad endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", folded)
	q.Set("lang", string(lang))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("faq: fetch: %w (%w)", err, schema.ErrTransientBackend)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("faq: fetch status %d (%w)", resp.StatusCode, schema.ErrTransientBackend)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("faq: read body: %w (%w)", err, schema.ErrTransientBackend)
	}
	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("faq: decode body: %w", err)
	}
	return entries, nil
}
