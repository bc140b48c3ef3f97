// Package config holds all tunable settings of the retrieval pipeline.
// Retrieval quality thresholds (weak-match distance, candidate minimums,
// acceptance cutoff) are operationally tuned values, so they are exposed
// here rather than hard-coded in the stages.
package config

// Config is the root configuration for the retrieval service.
type Config struct {
	Pipeline  PipelineConfig  `json:"pipeline" yaml:"pipeline"`
	Condense  CondenseConfig  `json:"condense" yaml:"condense"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	FAQ       FAQConfig       `json:"faq" yaml:"faq"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Fallback  FallbackConfig  `json:"fallback" yaml:"fallback"`
	Rank      RankConfig      `json:"rank" yaml:"rank"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	VectorDB  VectorDBConfig  `json:"vectordb" yaml:"vectordb"`
	Session   SessionConfig   `json:"session" yaml:"session"`
	Pool      PoolConfig      `json:"pool" yaml:"pool"`
	// HTTP holds defaults for outbound HTTP calls (FAQ store).
	HTTP *HTTPClientConfig `json:"http,omitempty" yaml:"http,omitempty"`
}

// PipelineConfig bounds the whole request.
type PipelineConfig struct {
	// BudgetMs is the total retrieval deadline per request.
	BudgetMs int `json:"budget_ms,omitempty" yaml:"budget_ms,omitempty"`
	// TopN is the default size of the final ranked list when the caller
	// does not request one.
	TopN int `json:"top_n,omitempty" yaml:"top_n,omitempty"`
	// HistoryRounds caps how many prior turns feed condensation.
	HistoryRounds int `json:"history_rounds,omitempty" yaml:"history_rounds,omitempty"`
}

// CondenseConfig controls query condensation.
type CondenseConfig struct {
	// TimeoutMs bounds the LLM rewrite call.
	TimeoutMs int `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	// MinTokens is the token-count threshold below which a follow-up query
	// is assumed to be elliptical and worth condensing.
	MinTokens int `json:"min_tokens,omitempty" yaml:"min_tokens,omitempty"`
	// MinDistinctRatio is the distinct-token diversity floor; follow-ups
	// below it are condensed.
	MinDistinctRatio float64 `json:"min_distinct_ratio,omitempty" yaml:"min_distinct_ratio,omitempty"`
	// MaxRewriteWords rejects runaway rewrites and falls back to the
	// normalized query.
	MaxRewriteWords int `json:"max_rewrite_words,omitempty" yaml:"max_rewrite_words,omitempty"`
}

// CacheConfig controls the condense cache.
type CacheConfig struct {
	MaxEntries int `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	TTLSeconds int `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// FAQConfig controls curated FAQ matching.
type FAQConfig struct {
	// MinConfidence is the floor below which fuzzy matches are discarded.
	MinConfidence float64 `json:"min_confidence,omitempty" yaml:"min_confidence,omitempty"`
	// Endpoint, when set, switches the FAQ store to the HTTP backend.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// RetrievalConfig controls the vector retrieval stage.
type RetrievalConfig struct {
	TopK      int `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	TimeoutMs int `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	// Retries is the number of extra attempts on transient failure.
	Retries int `json:"retries,omitempty" yaml:"retries,omitempty"`
	// ArticleTopK widens the search when the query references a specific
	// article or law number.
	ArticleTopK int `json:"article_top_k,omitempty" yaml:"article_top_k,omitempty"`
}

// FallbackConfig gates the secondary cross-lingual retrieval pass.
type FallbackConfig struct {
	// MinCandidates is the minimum primary candidate count (after distance
	// filtering) considered a healthy signal.
	MinCandidates int `json:"min_candidates,omitempty" yaml:"min_candidates,omitempty"`
	// WeakDistance marks the primary best match as weak when its distance
	// exceeds this value.
	WeakDistance float64 `json:"weak_distance,omitempty" yaml:"weak_distance,omitempty"`
	// FlatEpsilon marks a near-flat distance distribution: when the spread
	// between best and worst filtered candidate is below it, no clear best
	// candidate exists.
	FlatEpsilon float64 `json:"flat_epsilon,omitempty" yaml:"flat_epsilon,omitempty"`
}

// RankConfig controls final merging and ordering.
type RankConfig struct {
	// AcceptDistance is the hard acceptance threshold; candidates farther
	// than this are dropped.
	AcceptDistance float64 `json:"accept_distance,omitempty" yaml:"accept_distance,omitempty"`
	// ConfidenceFloor is the FAQ confidence above which FAQ candidates sort
	// ahead of vector candidates regardless of raw distance.
	ConfidenceFloor float64 `json:"confidence_floor,omitempty" yaml:"confidence_floor,omitempty"`
}

// LLMConfig configures the condensation model client.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // "openai"
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// EmbeddingConfig configures the embedding client.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // "openai"
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// VectorDBConfig configures the ANN index client.
type VectorDBConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // "milvus"
	Host       string `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
	// Metric is the index metric ("COSINE" or "L2"); similarity scores are
	// converted so candidates always carry a lower-is-closer distance.
	Metric string `json:"metric,omitempty" yaml:"metric,omitempty"`
	// SearchEf is the HNSW search-scope parameter.
	SearchEf int `json:"search_ef,omitempty" yaml:"search_ef,omitempty"`
}

// SessionConfig controls conversation-history persistence.
// Store: "inmemory" (default) or "redis".
type SessionConfig struct {
	Store      string `json:"store,omitempty" yaml:"store,omitempty"`
	TTLSeconds int    `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	MaxRounds  int    `json:"max_rounds,omitempty" yaml:"max_rounds,omitempty"`
	Redis      struct {
		Address  string `json:"address,omitempty" yaml:"address,omitempty"`
		Username string `json:"username,omitempty" yaml:"username,omitempty"`
		Password string `json:"password,omitempty" yaml:"password,omitempty"`
		DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
	} `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// PoolConfig bounds the worker pool that offloads synchronous backend calls.
type PoolConfig struct {
	Size int `json:"size,omitempty" yaml:"size,omitempty"`
}

// HTTPClientConfig defines common options for outbound HTTP calls.
type HTTPClientConfig struct {
	TimeoutMs              int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry                  int      `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffMinMs           int      `json:"backoff_min_ms,omitempty" yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int      `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	HostAllowlist          []string `json:"host_allowlist,omitempty" yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

// Default returns a configuration with production-safe defaults. Threshold
// values follow the multilingual embedding calibration of the source corpus
// and should be re-validated against a labeled evaluation set before tuning.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			BudgetMs:      1200,
			TopN:          5,
			HistoryRounds: 3,
		},
		Condense: CondenseConfig{
			TimeoutMs:        800,
			MinTokens:        6,
			MinDistinctRatio: 0.5,
			MaxRewriteWords:  20,
		},
		Cache: CacheConfig{
			MaxEntries: 512,
			TTLSeconds: 300,
		},
		FAQ: FAQConfig{
			MinConfidence: 0.35,
		},
		Retrieval: RetrievalConfig{
			TopK:        5,
			TimeoutMs:   600,
			Retries:     1,
			ArticleTopK: 15,
		},
		Fallback: FallbackConfig{
			MinCandidates: 2,
			WeakDistance:  0.9,
			FlatEpsilon:   0.02,
		},
		Rank: RankConfig{
			AcceptDistance:  1.2,
			ConfidenceFloor: 0.6,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4.1-mini",
			Temperature: 0.2,
			MaxTokens:   64,
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		VectorDB: VectorDBConfig{
			Provider:   "milvus",
			Host:       "localhost",
			Port:       19530,
			Collection: "tax_docs_multilingual",
			Metric:     "COSINE",
			SearchEf:   64,
		},
		Session: SessionConfig{
			Store:      "inmemory",
			TTLSeconds: 86400,
			MaxRounds:  10,
		},
		Pool: PoolConfig{Size: 32},
	}
}
