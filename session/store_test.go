package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/andozai/retrieval/config"
	"github.com/andozai/retrieval/schema"
)

func memConfig() config.SessionConfig {
	return config.SessionConfig{Store: "inmemory", TTLSeconds: 3600, MaxRounds: 3}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(memConfig())
	ctx := context.Background()

	if err := s.Append(ctx, "conv-1", schema.ChatMessage{Role: "user", Content: "вопрос"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, "conv-1", schema.ChatMessage{Role: "assistant", Content: "ответ"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	msgs, err := s.History(ctx, "conv-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "вопрос" || msgs[1].Role != "assistant" {
		t.Fatalf("unexpected history: %+v", msgs)
	}
}

func TestMemoryStoreIsolatesConversations(t *testing.T) {
	s := NewMemoryStore(memConfig())
	ctx := context.Background()

	_ = s.Append(ctx, "a", schema.ChatMessage{Role: "user", Content: "x"})
	msgs, _ := s.History(ctx, "b")
	if len(msgs) != 0 {
		t.Fatalf("conversation b sees a's messages: %+v", msgs)
	}
}

func TestMemoryStoreCapsRounds(t *testing.T) {
	s := NewMemoryStore(memConfig())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_ = s.Append(ctx, "c", schema.ChatMessage{Role: "user", Content: fmt.Sprintf("q%d", i)})
		_ = s.Append(ctx, "c", schema.ChatMessage{Role: "assistant", Content: fmt.Sprintf("a%d", i)})
	}
	msgs, _ := s.History(ctx, "c")
	if len(msgs) != 6 {
		t.Fatalf("history length = %d, want 6 (3 rounds)", len(msgs))
	}
	if msgs[0].Content != "q7" {
		t.Fatalf("oldest kept message = %q, want q7", msgs[0].Content)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	cfg := memConfig()
	cfg.TTLSeconds = 0 // default applies
	s := NewMemoryStore(cfg)
	s.ttl = 20 * time.Millisecond

	ctx := context.Background()
	_ = s.Append(ctx, "d", schema.ChatMessage{Role: "user", Content: "x"})
	time.Sleep(40 * time.Millisecond)
	msgs, _ := s.History(ctx, "d")
	if len(msgs) != 0 {
		t.Fatalf("expired conversation served: %+v", msgs)
	}
}

func TestNewStoreDefaultsToMemory(t *testing.T) {
	s, err := NewStore(config.SessionConfig{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("default store is %T, want *MemoryStore", s)
	}
}
