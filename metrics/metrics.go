// Package metrics exposes Prometheus instruments for the retrieval pipeline.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	stageLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retrieval_stage_latency_ms",
		Help:    "Latency of pipeline stages in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 600, 800, 1200, 2000},
	}, []string{"stage", "status"})

	candidateCount = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retrieval_candidates",
		Help:    "Number of candidates produced by a stage",
		Buckets: []float64{0, 1, 2, 5, 10, 15, 25, 50},
	}, []string{"stage"})

	condenseSource = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retrieval_condense_source_total",
		Help: "Where condensed queries came from (cache/llm/skipped)",
	}, []string{"source"})

	cacheEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retrieval_condense_cache_total",
		Help: "Condense cache hits and misses",
	}, []string{"event"})

	fallbackDecision = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retrieval_fallback_decision_total",
		Help: "Cross-lingual fallback decisions by terminal state",
	}, []string{"state"})

	partialResults = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "retrieval_partial_results_total",
		Help: "Requests that returned a partial context due to the budget",
	})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(stageLatency, candidateCount, condenseSource, cacheEvents, fallbackDecision, partialResults)
	})
}

// ObserveStage records latency and terminal status for a pipeline stage.
func ObserveStage(stage, status string, start time.Time) {
	ensureRegistered()
	stageLatency.WithLabelValues(stage, status).Observe(float64(time.Since(start).Milliseconds()))
}

// ObserveCandidates records how many candidates a stage produced.
func ObserveCandidates(stage string, n int) {
	ensureRegistered()
	candidateCount.WithLabelValues(stage).Observe(float64(n))
}

// IncCondenseSource counts where a condensed query came from.
func IncCondenseSource(source string) {
	ensureRegistered()
	condenseSource.WithLabelValues(source).Inc()
}

// IncCacheHit and IncCacheMiss count condense cache lookups.
func IncCacheHit() {
	ensureRegistered()
	cacheEvents.WithLabelValues("hit").Inc()
}

func IncCacheMiss() {
	ensureRegistered()
	cacheEvents.WithLabelValues("miss").Inc()
}

// IncFallback counts a fallback decision by its terminal state.
func IncFallback(state string) {
	ensureRegistered()
	fallbackDecision.WithLabelValues(state).Inc()
}

// IncPartial counts a budget-truncated result.
func IncPartial() {
	ensureRegistered()
	partialResults.Inc()
}
