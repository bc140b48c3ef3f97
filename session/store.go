// Package session persists conversation history for anaphora resolution.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/andozai/retrieval/config"
	"github.com/andozai/retrieval/schema"
)

// Store keeps per-conversation chat history. History returns the most recent
// rounds oldest first; Append records one turn.
type Store interface {
	History(ctx context.Context, conversationID string) ([]schema.ChatMessage, error)
	Append(ctx context.Context, conversationID string, msg schema.ChatMessage) error
	Close() error
}

// NewStore builds the configured store backend.
func NewStore(cfg config.SessionConfig) (Store, error) {
	switch cfg.Store {
	case "redis":
		return newRedisStore(cfg)
	default:
		return NewMemoryStore(cfg), nil
	}
}

type conversation struct {
	messages []schema.ChatMessage
	touched  time.Time
}

// MemoryStore is the in-process backend, for single-instance deployments and
// tests. Conversations expire lazily after the configured TTL.
type MemoryStore struct {
	mu        sync.Mutex
	convs     map[string]*conversation
	maxRounds int
	ttl       time.Duration
}

// NewMemoryStore builds an in-process store.
func NewMemoryStore(cfg config.SessionConfig) *MemoryStore {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 10
	}
	return &MemoryStore{
		convs:     make(map[string]*conversation),
		maxRounds: maxRounds,
		ttl:       ttl,
	}
}

func (s *MemoryStore) History(_ context.Context, conversationID string) ([]schema.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[conversationID]
	if !ok {
		return nil, nil
	}
	if time.Since(c.touched) > s.ttl {
		delete(s.convs, conversationID)
		return nil, nil
	}
	out := make([]schema.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, conversationID string, msg schema.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[conversationID]
	if !ok || time.Since(c.touched) > s.ttl {
		c = &conversation{}
		s.convs[conversationID] = c
	}
	c.messages = append(c.messages, msg)
	// a round is a user/assistant pair
	if max := s.maxRounds * 2; len(c.messages) > max {
		c.messages = c.messages[len(c.messages)-max:]
	}
	c.touched = time.Now()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
