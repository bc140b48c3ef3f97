package schema

import "errors"

// Error taxonomy for the retrieval pipeline. Stage failures degrade that
// stage's contribution; they never abort the whole request. An empty result
// set is a valid result, not an error.
var (
	// ErrTransientBackend marks an LLM or vector-store timeout/network
	// failure. Retried at most once, then the stage degrades.
	ErrTransientBackend = errors.New("transient backend failure")

	// ErrBudgetExceeded marks the global per-request deadline being hit.
	// The caller still receives completed candidates, flagged partial.
	ErrBudgetExceeded = errors.New("retrieval budget exceeded")
)

// IsTransient reports whether err should be retried once before degrading.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientBackend)
}
