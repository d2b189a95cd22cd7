// Package scoring defines the contract shared by the two interchangeable
// scoring backends: the real Gemini-backed scorer and the deterministic
// offline heuristic. Which backend is active is decided once at startup and
// injected into the match engine.
package scoring

import (
	"context"

	"github.com/subsidiematch/subsidiematch/internal/store"
)

// Result is one bounded score plus its rationale lines.
type Result struct {
	Score     int
	Rationale []string
}

// Scorer scores the fit between one subject and one subsidy. Backend
// problems (network failures, unusable replies) never surface as errors:
// backends resolve them to a fallback result so a full recompute survives
// isolated flakiness. An error return indicates a malformed prompt template.
type Scorer interface {
	Score(ctx context.Context, template string, subject *store.Subject, sub *store.Subsidy) (*Result, error)

	// Real reports whether scores come from a real inference backend
	// rather than the offline heuristic. Surfaced to users as a banner,
	// never consumed by the match engine.
	Real() bool
}

// ClampScore bounds v to [lo, hi].
func ClampScore(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
