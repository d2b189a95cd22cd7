// Package matching recomputes the match table: every organisation and every
// persona against every subsidy, scored through the injected backend. A run
// always replaces the whole table; there is no incremental diffing.
package matching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/subsidiematch/subsidiematch/internal/scoring"
	"github.com/subsidiematch/subsidiematch/internal/store"
)

var now = time.Now

type Engine struct {
	store  *store.Store
	scorer scoring.Scorer
	logger *zap.Logger
}

func New(st *store.Store, scorer scoring.Scorer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: st, scorer: scorer, logger: logger}
}

// RecomputeAll scores the Cartesian product of subjects and subsidies with
// the given prompt template and replaces the match table wholesale. Scoring
// calls run strictly sequentially; with a real backend this is an
// O(subjects x subsidies) sequence of blocking round-trips and the dominant
// latency cost of a run.
//
// A nil template degrades to a no-op with a warning: the existing match
// table stays untouched. Any error leaves the previous table authoritative,
// since rows are accumulated in memory and written back in one replace.
func (e *Engine) RecomputeAll(ctx context.Context, tmpl *store.PromptTemplate) error {
	if tmpl == nil {
		e.logger.Warn("no active prompt template configured, keeping current matches")
		return nil
	}

	organisations := e.store.Organisations()
	personas := e.store.Personas()
	subsidies := e.store.Subsidies()

	rows := make(store.Matches, 0, (len(organisations)+len(personas))*len(subsidies))
	createdAt := now()

	for _, org := range organisations {
		for _, sub := range subsidies {
			match, err := e.scorePair(ctx, tmpl, store.SubjectFromOrganisation(org), sub, len(rows)+1, createdAt)
			if err != nil {
				return err
			}
			rows = append(rows, match)
		}
	}

	for _, persona := range personas {
		for _, sub := range subsidies {
			match, err := e.scorePair(ctx, tmpl, store.SubjectFromPersona(persona), sub, len(rows)+1, createdAt)
			if err != nil {
				return err
			}
			rows = append(rows, match)
		}
	}

	e.store.ReplaceMatches(rows)

	e.logger.Info("recomputed matches",
		zap.Int("organisations", len(organisations)),
		zap.Int("personas", len(personas)),
		zap.Int("subsidies", len(subsidies)),
		zap.Int("rows", len(rows)),
	)

	return nil
}

// scorePair scores one subject against one subsidy and materializes a match
// row with a run-local id. Ids restart at 1 every run; the whole table is
// replaced anyway.
func (e *Engine) scorePair(ctx context.Context, tmpl *store.PromptTemplate, subject *store.Subject, sub *store.Subsidy, id int, createdAt time.Time) (*store.Match, error) {
	result, err := e.scorer.Score(ctx, tmpl.Template, subject, sub)
	if err != nil {
		return nil, fmt.Errorf("scoring %s against subsidy %d: %w", subject.Key(), sub.ID, err)
	}

	e.logger.Debug("scored pair",
		zap.String("subject", subject.Key()),
		zap.Int("subsidy_id", sub.ID),
		zap.Int("score", result.Score),
	)

	match := &store.Match{
		ID:        id,
		SubsidyID: sub.ID,
		Type:      subject.Type(),
		Score:     result.Score,
		Rationale: strings.Join(result.Rationale, "\n"),
		CreatedAt: createdAt,
	}

	if subject.Persona != nil {
		personaID := subject.Persona.ID
		match.PersonaID = &personaID
	} else {
		orgID := subject.Organisation.ID
		match.OrganisationID = &orgID
	}

	return match, nil
}
