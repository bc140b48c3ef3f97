package fallback

import (
	"math"
	"sort"

	"github.com/andozai/retrieval/common/logger"
	"github.com/andozai/retrieval/config"
	"github.com/andozai/retrieval/schema"
)

// State is the fallback decision lifecycle. Every request starts at
// StateNotNeeded, passes through the controller exactly once and ends in a
// terminal state: Skipped, or Triggered followed by Merged.
type State string

const (
	// StateNotNeeded: initial state, no evaluation has happened yet.
	StateNotNeeded State = "not_needed"
	// StateEvaluating: primary results are being assessed.
	StateEvaluating State = "evaluating"
	// StateSkipped: no second pass runs. Terminal.
	StateSkipped State = "skipped"
	// StateTriggered: primary results were weak, a hinted pass runs.
	StateTriggered State = "triggered"
	// StateMerged: hinted results were merged into the primary set. Terminal.
	StateMerged State = "merged"
)

// Decision is the outcome of evaluating the primary pass.
type Decision struct {
	State  State
	Reason string
	// HintedQuery is only set when State is StateTriggered.
	HintedQuery string
}

// Controller evaluates primary retrieval quality for Tajik queries.
type Controller struct {
	cfg            config.FallbackConfig
	acceptDistance float64
}

// New builds a Controller. acceptDistance is the ranker's hard threshold; the
// quality signals are computed over candidates that would survive it.
func New(cfg config.FallbackConfig, acceptDistance float64) *Controller {
	return &Controller{cfg: cfg, acceptDistance: acceptDistance}
}

// Evaluate decides whether a hinted second pass should run. Non-Tajik queries
// are never retried: the hint table only maps Tajik vocabulary.
func (c *Controller) Evaluate(q schema.Query, primary []schema.Candidate) Decision {
	if q.Language != schema.LangTajik {
		return Decision{State: StateSkipped, Reason: "query not tajik"}
	}

	accepted := c.filter(primary)
	if reason := c.weakSignal(accepted); reason != "" {
		hinted, changed := RussianHint(q.Folded)
		if !changed {
			return Decision{State: StateSkipped, Reason: "no hint vocabulary applies"}
		}
		logger.Infof("fallback: triggered for query %s: %s", q.ID, reason)
		return Decision{State: StateTriggered, Reason: reason, HintedQuery: hinted}
	}
	return Decision{State: StateSkipped, Reason: "primary results healthy"}
}

// Merge combines primary and hinted candidates, deduplicating by document and
// chunk id and keeping the smaller distance for shared entries.
func (c *Controller) Merge(primary, hinted []schema.Candidate) []schema.Candidate {
	byKey := make(map[string]int, len(primary))
	out := make([]schema.Candidate, 0, len(primary)+len(hinted))
	for _, cand := range primary {
		byKey[cand.Key()] = len(out)
		out = append(out, cand)
	}
	for _, cand := range hinted {
		if i, ok := byKey[cand.Key()]; ok {
			if cand.Distance < out[i].Distance {
				out[i] = cand
			}
			continue
		}
		byKey[cand.Key()] = len(out)
		out = append(out, cand)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

func (c *Controller) filter(cands []schema.Candidate) []schema.Candidate {
	out := make([]schema.Candidate, 0, len(cands))
	for _, cand := range cands {
		if cand.Distance <= c.acceptDistance {
			out = append(out, cand)
		}
	}
	return out
}

// weakSignal returns a non-empty reason when the accepted candidate set looks
// too weak to answer from: too few survivors, a distant best match, or a
// near-flat distance spread with no clear best candidate.
func (c *Controller) weakSignal(accepted []schema.Candidate) string {
	if len(accepted) < c.cfg.MinCandidates {
		return "too few accepted candidates"
	}
	best, worst := math.Inf(1), math.Inf(-1)
	for _, cand := range accepted {
		if cand.Distance < best {
			best = cand.Distance
		}
		if cand.Distance > worst {
			worst = cand.Distance
		}
	}
	if best > c.cfg.WeakDistance {
		return "best match too distant"
	}
	if worst-best < c.cfg.FlatEpsilon {
		return "flat distance distribution"
	}
	return ""
}
