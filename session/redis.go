package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andozai/retrieval/config"
	"github.com/andozai/retrieval/schema"
)

// redisStore persists conversations in Redis. Each conversation is a list of
// JSON-encoded messages under "retrieval:sess:<id>", trimmed to the round cap
// and refreshed to the TTL on every append.
type redisStore struct {
	cli       *redis.Client
	maxRounds int
	ttl       time.Duration
}

func newRedisStore(cfg config.SessionConfig) (*redisStore, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 10
	}
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("session: redis ping: %w", err)
	}
	return &redisStore{cli: cli, maxRounds: maxRounds, ttl: ttl}, nil
}

func key(conversationID string) string { return "retrieval:sess:" + conversationID }

func (s *redisStore) History(ctx context.Context, conversationID string) ([]schema.ChatMessage, error) {
	raw, err := s.cli.LRange(ctx, key(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("session: history: %w (%w)", err, schema.ErrTransientBackend)
	}
	out := make([]schema.ChatMessage, 0, len(raw))
	for _, r := range raw {
		var m schema.ChatMessage
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *redisStore) Append(ctx context.Context, conversationID string, msg schema.ChatMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	k := key(conversationID)
	pipe := s.cli.TxPipeline()
	pipe.RPush(ctx, k, string(b))
	pipe.LTrim(ctx, k, int64(-s.maxRounds*2), -1)
	pipe.Expire(ctx, k, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: append: %w (%w)", err, schema.ErrTransientBackend)
	}
	return nil
}

func (s *redisStore) Close() error { return s.cli.Close() }
