// Package heuristic implements the offline scoring backend: a deterministic
// keyword heuristic used when no Gemini credential is configured. Given the
// same subject and subsidy it always produces the same result, which keeps
// demo runs and tests reproducible.
package heuristic

import (
	"context"
	"fmt"
	"strings"

	"github.com/subsidiematch/subsidiematch/internal/scoring"
	"github.com/subsidiematch/subsidiematch/internal/store"
)

const (
	baseScore = 60
	minScore  = 40
	maxScore  = 95
)

type Scorer struct{}

func New() *Scorer {
	return &Scorer{}
}

func (s *Scorer) Real() bool { return false }

// Score computes the heuristic fit. The base score rises when the subject's
// profile and the subsidy name overlap within a topical bucket: education,
// care, or AI/data. Later buckets take precedence. The template argument is
// ignored; no prompt is rendered and no network call is made.
func (s *Scorer) Score(_ context.Context, _ string, subject *store.Subject, sub *store.Subsidy) (*scoring.Result, error) {
	profile := strings.ToLower(subject.Profile())
	name := strings.ToLower(sub.Name)

	score := baseScore
	if containsAny(profile, "onderwijs", "school", "mbo") && containsAny(name, "onderwijs", "digitale") {
		score = 85
	}
	if containsAny(profile, "zorg", "oudere", "thuiszorg") && containsAny(name, "zorg", "thuis") {
		score = 82
	}
	if containsAny(profile, "ai", "data") && containsAny(name, "ai", "data") {
		score = 90
	}

	return &scoring.Result{
		Score: scoring.ClampScore(score, minScore, maxScore),
		Rationale: []string{
			fmt.Sprintf("Mock-score gebaseerd op overlap tussen organisatieprofiel en subsidie '%s'.", sub.Name),
			"Demo-modus: geen echte LLM-call gedaan.",
		},
	}, nil
}

func containsAny(s string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
