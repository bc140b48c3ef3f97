// Package llm abstracts the chat-completion backend used for query
// condensation.
package llm

import (
	"context"
	"fmt"

	"github.com/andozai/retrieval/config"
)

// Provider generates completions for condensation prompts. Implementations
// must be safe for concurrent use; one instance is shared process-wide.
type Provider interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
	GetProviderType() string
}

// NewProvider creates a provider from configuration.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "openai":
		return newOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
