package metrics

import (
	"encoding/json"
	"time"

	"github.com/andozai/retrieval/common/logger"
)

// RetrievalMetrics captures one request end to end, for structured debug
// logging alongside the Prometheus instruments.
type RetrievalMetrics struct {
	QueryID   string    `json:"query_id"`
	Query     string    `json:"query"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`

	CondenseSource  string `json:"condense_source,omitempty"`
	CondenseApplied bool   `json:"condense_applied"`

	FAQMatches    int `json:"faq_matches"`
	VectorResults int `json:"vector_results"`

	FallbackState  string `json:"fallback_state,omitempty"`
	FallbackReason string `json:"fallback_reason,omitempty"`

	StageLatencyMs map[string]int64 `json:"stage_latency_ms"`
	FinalCount     int              `json:"final_count"`
	Partial        bool             `json:"partial"`
	TotalLatencyMs int64            `json:"total_latency_ms"`
}

// NewRetrievalMetrics starts a per-request record.
func NewRetrievalMetrics(queryID, query, language string) *RetrievalMetrics {
	return &RetrievalMetrics{
		QueryID:        queryID,
		Query:          query,
		Language:       language,
		Timestamp:      time.Now(),
		StageLatencyMs: make(map[string]int64),
	}
}

// RecordStage stores a stage latency.
func (m *RetrievalMetrics) RecordStage(stage string, d time.Duration) {
	m.StageLatencyMs[stage] = d.Milliseconds()
}

// Log emits the record as one structured debug line.
func (m *RetrievalMetrics) Log() {
	m.TotalLatencyMs = time.Since(m.Timestamp).Milliseconds()
	b, err := json.Marshal(m)
	if err != nil {
		logger.Warnf("metrics: marshal retrieval record: %v", err)
		return
	}
	logger.Debugf("retrieval completed: %s", string(b))
}
