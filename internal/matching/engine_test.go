package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/subsidiematch/subsidiematch/internal/scoring"
	"github.com/subsidiematch/subsidiematch/internal/store"
)

type fakeScorer struct {
	scores map[string]int
	err    error
	calls  int
}

func (f *fakeScorer) Score(_ context.Context, _ string, subject *store.Subject, sub *store.Subsidy) (*scoring.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	score, ok := f.scores[subject.Key()]
	if !ok {
		score = 60
	}
	return &scoring.Result{
		Score:     score,
		Rationale: []string{"eerste regel", "tweede regel"},
	}, nil
}

func (f *fakeScorer) Real() bool { return false }

func testStore() *store.Store {
	st := store.Empty()
	st.ReplaceOrganisations([]*store.Organisation{
		{ID: 1, Name: "ROC Midden Nederland", Subscription: store.SubscriptionPremium},
		{ID: 2, Name: "Blue Analytics BV", Subscription: store.SubscriptionBasic},
	})
	st.ReplacePersonas([]*store.Persona{
		{ID: 1, Sector: "zorg"},
	})
	st.ReplaceSubsidies([]*store.Subsidy{
		{ID: 1, Name: "MIT R&D"},
		{ID: 2, Name: "ZonMw Ouderen Thuis"},
		{ID: 3, Name: "Impuls digitale vaardigheden"},
	})
	return st
}

func testTemplate() *store.PromptTemplate {
	return &store.PromptTemplate{ID: 1, Name: "standaard", Template: "Profiel: {organisatieprofiel}"}
}

func TestRecomputeAllBuildsFullProduct(t *testing.T) {
	fixed := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	originalNow := now
	now = func() time.Time { return fixed }
	defer func() { now = originalNow }()

	st := testStore()
	scorerStub := &fakeScorer{scores: map[string]int{
		"organisation:1": 85,
		"organisation:2": 90,
		"persona:1":      82,
	}}
	engine := New(st, scorerStub, zap.NewNop())

	if err := engine.RecomputeAll(context.Background(), testTemplate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches := st.Matches()
	if len(matches) != 9 {
		t.Fatalf("expected 9 matches (2 organisations + 1 persona, 3 subsidies each), got %d", len(matches))
	}
	if scorerStub.calls != 9 {
		t.Fatalf("expected 9 scoring calls, got %d", scorerStub.calls)
	}

	for i, match := range matches {
		if match.ID != i+1 {
			t.Fatalf("expected run-local ids starting at 1, got id %d at position %d", match.ID, i)
		}
		if !match.CreatedAt.Equal(fixed) {
			t.Fatalf("expected all rows to share the run timestamp, got %v", match.CreatedAt)
		}
		switch match.Type {
		case store.MatchTypeOrganisation:
			if match.OrganisationID == nil || match.PersonaID != nil {
				t.Fatalf("organisation match %d must set only the organisation id", match.ID)
			}
		case store.MatchTypePersona:
			if match.PersonaID == nil || match.OrganisationID != nil {
				t.Fatalf("persona match %d must set only the persona id", match.ID)
			}
		default:
			t.Fatalf("unexpected match type %q", match.Type)
		}
		if match.Rationale != "eerste regel\ntweede regel" {
			t.Fatalf("expected newline joined rationale, got %q", match.Rationale)
		}
	}

	// Organisations come before personas, in table order.
	first := matches[0]
	if first.Type != store.MatchTypeOrganisation || *first.OrganisationID != 1 || first.SubsidyID != 1 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.Score != 85 {
		t.Fatalf("expected score 85 for the first organisation, got %d", first.Score)
	}
	last := matches[8]
	if last.Type != store.MatchTypePersona || *last.PersonaID != 1 || last.SubsidyID != 3 {
		t.Fatalf("unexpected last row: %+v", last)
	}
}

func TestRecomputeAllReplacesPreviousTable(t *testing.T) {
	st := testStore()
	engine := New(st, &fakeScorer{}, zap.NewNop())

	if err := engine.RecomputeAll(context.Background(), testTemplate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.RecomputeAll(context.Background(), testTemplate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches := st.Matches()
	if len(matches) != 9 {
		t.Fatalf("expected the second run to replace the table, got %d rows", len(matches))
	}
	if matches[0].ID != 1 {
		t.Fatalf("expected ids to restart at 1 after a replace, got %d", matches[0].ID)
	}
}

func TestRecomputeAllNilTemplateKeepsMatches(t *testing.T) {
	st := testStore()
	engine := New(st, &fakeScorer{}, zap.NewNop())

	if err := engine.RecomputeAll(context.Background(), testTemplate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := st.Matches()

	core, logs := observer.New(zap.WarnLevel)
	scorerStub := &fakeScorer{}
	engine = New(st, scorerStub, zap.New(core))

	if err := engine.RecomputeAll(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if scorerStub.calls != 0 {
		t.Fatalf("expected no scoring calls without a template, got %d", scorerStub.calls)
	}
	if diff := cmp.Diff(before, st.Matches()); diff != "" {
		t.Fatalf("expected the match table to stay untouched (-before +after):\n%s", diff)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d entries", len(entries))
	}
	if entries[0].Message != "no active prompt template configured, keeping current matches" {
		t.Fatalf("unexpected warning message: %q", entries[0].Message)
	}
}

func TestRecomputeAllScorerErrorKeepsPreviousTable(t *testing.T) {
	st := testStore()
	engine := New(st, &fakeScorer{}, zap.NewNop())

	if err := engine.RecomputeAll(context.Background(), testTemplate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := st.Matches()

	failing := &fakeScorer{err: errors.New("template corrupt")}
	engine = New(st, failing, zap.NewNop())

	err := engine.RecomputeAll(context.Background(), testTemplate())
	if err == nil {
		t.Fatalf("expected the scorer error to propagate")
	}

	if diff := cmp.Diff(before, st.Matches()); diff != "" {
		t.Fatalf("expected the previous table to stay authoritative (-before +after):\n%s", diff)
	}
}

func TestRecomputeAllEmptyTables(t *testing.T) {
	st := store.Empty()
	scorerStub := &fakeScorer{}
	engine := New(st, scorerStub, zap.NewNop())

	if err := engine.RecomputeAll(context.Background(), testTemplate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Matches()) != 0 {
		t.Fatalf("expected no matches for empty tables, got %d", len(st.Matches()))
	}
	if scorerStub.calls != 0 {
		t.Fatalf("expected no scoring calls for empty tables, got %d", scorerStub.calls)
	}
}
