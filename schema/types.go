package schema

import "time"

// Language is the inferred language tag of a query.
type Language string

const (
	LangRussian Language = "ru"
	LangTajik   Language = "tj"
	LangUnknown Language = "unknown"
)

// Query is the normalized form of one user question. Immutable once built.
type Query struct {
	ID             string   `json:"id,omitempty"`
	Raw            string   `json:"raw"`
	Display        string   `json:"display"` // normalized, original casing preserved
	Folded         string   `json:"folded"`  // case-folded form used for matching only
	Language       Language `json:"language"`
	ConversationID string   `json:"conversation_id,omitempty"`
}

// CondenseSource records where a condensed query came from.
type CondenseSource string

const (
	CondenseSourceCache   CondenseSource = "cache"
	CondenseSourceLLM     CondenseSource = "llm"
	CondenseSourceSkipped CondenseSource = "skipped"
)

// CondensedQuery is the standalone search query derived from a Query.
// Created once per request, never mutated.
type CondensedQuery struct {
	QueryID string         `json:"query_id"`
	Text    string         `json:"text"`
	Applied bool           `json:"applied"`
	Source  CondenseSource `json:"source"`
}

// CandidateSource identifies which stage produced a candidate.
type CandidateSource string

const (
	SourceFAQ    CandidateSource = "faq"
	SourceVector CandidateSource = "vector"
)

// Candidate is one scored grounding passage. Distance is normalized so that
// lower always means closer, and is never negative. FAQ candidates carry a
// Confidence in [0,1] and no chunk id.
type Candidate struct {
	Source     CandidateSource `json:"source"`
	DocumentID string          `json:"document_id"`
	ChunkID    string          `json:"chunk_id,omitempty"`
	Text       string          `json:"text"`
	Distance   float64         `json:"distance"`
	Confidence float64         `json:"confidence,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
}

// Key identifies a candidate for deduplication by (document id, chunk id).
func (c Candidate) Key() string {
	return c.DocumentID + "\x00" + c.ChunkID
}

// ChatMessage is a single prior conversation turn used for anaphora
// resolution during condensation.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// StageStatus reports how a pipeline stage finished.
type StageStatus string

const (
	StageOK       StageStatus = "ok"
	StageSkipped  StageStatus = "skipped"
	StageDegraded StageStatus = "degraded"
	StageTimeout  StageStatus = "timeout"
)

// StageTiming is per-stage observability metadata attached to every result.
type StageTiming struct {
	Stage      string      `json:"stage"`
	DurationMs int64       `json:"duration_ms"`
	Status     StageStatus `json:"status"`
}

// ContextItem is one entry of the final ranked grounding context.
type ContextItem struct {
	DocumentID string          `json:"document_id"`
	ChunkID    string          `json:"chunk_id,omitempty"`
	Text       string          `json:"text"`
	Distance   float64         `json:"distance"`
	Source     CandidateSource `json:"source"`
}

// RankedContext is the single result type handed to the answer generator.
// Callers always receive one, possibly empty or partial, never an error
// surfaced to the end user.
type RankedContext struct {
	QueryID string        `json:"query_id"`
	Items   []ContextItem `json:"items"`
	Partial bool          `json:"partial"`
	Stages  []StageTiming `json:"stages"`
}
