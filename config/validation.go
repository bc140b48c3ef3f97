package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a single configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. [%s] %s\n", i+1, err.Field, err.Message))
	}
	return b.String()
}

// Validate checks the complete configuration.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Pipeline.BudgetMs <= 0 {
		errs = append(errs, ValidationError{"pipeline.budget_ms", "must be positive"})
	}
	if c.Pipeline.TopN <= 0 {
		errs = append(errs, ValidationError{"pipeline.top_n", "must be positive"})
	}
	if c.Condense.TimeoutMs <= 0 {
		errs = append(errs, ValidationError{"condense.timeout_ms", "must be positive"})
	}
	if c.Condense.MinDistinctRatio < 0 || c.Condense.MinDistinctRatio > 1 {
		errs = append(errs, ValidationError{"condense.min_distinct_ratio", "must be in [0,1]"})
	}
	if c.Cache.MaxEntries <= 0 {
		errs = append(errs, ValidationError{"cache.max_entries", "must be positive"})
	}
	if c.FAQ.MinConfidence < 0 || c.FAQ.MinConfidence > 1 {
		errs = append(errs, ValidationError{"faq.min_confidence", "must be in [0,1]"})
	}
	if c.Retrieval.TopK <= 0 {
		errs = append(errs, ValidationError{"retrieval.top_k", "must be positive"})
	}
	if c.Fallback.MinCandidates < 1 {
		errs = append(errs, ValidationError{"fallback.min_candidates", "must be at least 1"})
	}
	if c.Fallback.WeakDistance < 0 {
		errs = append(errs, ValidationError{"fallback.weak_distance", "must be non-negative"})
	}
	if c.Rank.AcceptDistance <= 0 {
		errs = append(errs, ValidationError{"rank.accept_distance", "must be positive"})
	}
	if c.Rank.ConfidenceFloor < 0 || c.Rank.ConfidenceFloor > 1 {
		errs = append(errs, ValidationError{"rank.confidence_floor", "must be in [0,1]"})
	}

	switch c.LLM.Provider {
	case "", "openai":
	default:
		errs = append(errs, ValidationError{"llm.provider", fmt.Sprintf("unknown provider %q", c.LLM.Provider)})
	}
	switch c.Embedding.Provider {
	case "", "openai":
	default:
		errs = append(errs, ValidationError{"embedding.provider", fmt.Sprintf("unknown provider %q", c.Embedding.Provider)})
	}
	switch c.VectorDB.Provider {
	case "", "milvus":
	default:
		errs = append(errs, ValidationError{"vectordb.provider", fmt.Sprintf("unknown provider %q", c.VectorDB.Provider)})
	}
	if c.VectorDB.Provider != "" && c.VectorDB.Collection == "" {
		errs = append(errs, ValidationError{"vectordb.collection", "collection name is required"})
	}
	switch strings.ToUpper(c.VectorDB.Metric) {
	case "", "COSINE", "L2", "IP":
	default:
		errs = append(errs, ValidationError{"vectordb.metric", fmt.Sprintf("unsupported metric %q", c.VectorDB.Metric)})
	}

	switch c.Session.Store {
	case "", "inmemory":
	case "redis":
		if c.Session.Redis.Address == "" {
			errs = append(errs, ValidationError{"session.redis.address", "address is required for redis store"})
		}
	default:
		errs = append(errs, ValidationError{"session.store", fmt.Sprintf("unknown store %q", c.Session.Store)})
	}

	if c.Pool.Size <= 0 {
		errs = append(errs, ValidationError{"pool.size", "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
