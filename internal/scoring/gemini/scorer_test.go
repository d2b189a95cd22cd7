package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/subsidiematch/subsidiematch/internal/store"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func testSubject() *store.Subject {
	return store.SubjectFromOrganisation(&store.Organisation{
		ID:      1,
		Name:    "Blue Analytics BV",
		Profile: "AI-oplossingen en data-analytics voor het MKB.",
	})
}

func testSubsidy() *store.Subsidy {
	return &store.Subsidy{
		ID:     2,
		Name:   "MIT R&D-samenwerkingsprojecten AI",
		Source: "RVO",
	}
}

const testTemplate = "Organisatie: {organisatie_naam}\nProfiel: {organisatieprofiel}\nSubsidie: {subsidie_naam} ({bron})"

func TestScorerParsesWellFormedReply(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: `{"match_score": 88, "match_toelichting": ["sterke technische aansluiting", "doelgroep past"]}`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	result, err := scorer.Score(context.Background(), testTemplate, testSubject(), testSubsidy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score != 88 {
		t.Fatalf("expected score 88, got %d", result.Score)
	}
	if len(result.Rationale) != 2 {
		t.Fatalf("expected two rationale lines, got %v", result.Rationale)
	}
	if result.Rationale[0] != "sterke technische aansluiting" {
		t.Fatalf("unexpected first rationale line: %q", result.Rationale[0])
	}
}

func TestScorerSendsRenderedPrompt(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: `{"match_score": 50, "match_toelichting": []}`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	if _, err := scorer.Score(context.Background(), testTemplate, testSubject(), testSubsidy()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stub.lastPrompt, "Organisatie: Blue Analytics BV") {
		t.Fatalf("expected the prompt to contain the organisation name, got: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "Subsidie: MIT R&D-samenwerkingsprojecten AI (RVO)") {
		t.Fatalf("expected the prompt to contain the subsidy line, got: %s", stub.lastPrompt)
	}
	if strings.Contains(stub.lastPrompt, "{") {
		t.Fatalf("expected all placeholders to be substituted, got: %s", stub.lastPrompt)
	}
}

func TestScorerMalformedTemplate(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: `{"match_score": 10}`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	_, err := scorer.Score(context.Background(), "Naam: {organisatie_naam", testSubject(), testSubsidy())
	if err == nil {
		t.Fatalf("expected an error for a malformed template")
	}
	if stub.lastPrompt != "" {
		t.Fatalf("expected no call for a malformed template, got: %s", stub.lastPrompt)
	}
}

func TestScorerFallsBackOnGeneratorError(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{err: errors.New("rate limited")}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	result, err := scorer.Score(context.Background(), testTemplate, testSubject(), testSubsidy())
	if err != nil {
		t.Fatalf("expected a fallback result instead of an error, got: %v", err)
	}
	assertFallback(t, result.Score, result.Rationale)
}

func TestScorerFallsBackOnUnusableReply(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		response string
	}{
		{name: "plain prose", response: "not json at all"},
		{name: "empty reply", response: ""},
		{name: "json without score key", response: `{"match_toelichting": ["alleen toelichting"]}`},
		{name: "json array instead of object", response: `[1, 2, 3]`},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGenerator{response: tt.response}
			scorer := NewScorer(stub, zap.NewNop(), 0)

			result, err := scorer.Score(context.Background(), testTemplate, testSubject(), testSubsidy())
			if err != nil {
				t.Fatalf("expected a fallback result instead of an error, got: %v", err)
			}
			assertFallback(t, result.Score, result.Rationale)
		})
	}
}

func TestScorerRecoversMessyReplies(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		response string
		score    int
	}{
		{
			name:     "markdown fenced json",
			response: "```json\n{\"match_score\": 73, \"match_toelichting\": [\"prima fit\"]}\n```",
			score:    73,
		},
		{
			name:     "trailing comma",
			response: `{"match_score": 70, "match_toelichting": ["eerste punt",],}`,
			score:    70,
		},
		{
			name:     "json embedded in prose",
			response: `Hier is mijn analyse: {"match_score": 77, "match_toelichting": ["goede aansluiting"]} Succes ermee!`,
			score:    77,
		},
		{
			name:     "score as string",
			response: `{"match_score": "81", "match_toelichting": ["tekstueel getal"]}`,
			score:    81,
		},
		{
			name:     "score as float",
			response: `{"match_score": 66.4, "match_toelichting": ["float getal"]}`,
			score:    66,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGenerator{response: tt.response}
			scorer := NewScorer(stub, zap.NewNop(), 0)

			result, err := scorer.Score(context.Background(), testTemplate, testSubject(), testSubsidy())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Score != tt.score {
				t.Fatalf("expected score %d, got %d", tt.score, result.Score)
			}
		})
	}
}

func TestScorerClampsScores(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		response string
		expected int
	}{
		{name: "above upper bound", response: `{"match_score": 250, "match_toelichting": []}`, expected: 100},
		{name: "below lower bound", response: `{"match_score": -5, "match_toelichting": []}`, expected: 1},
		{name: "zero", response: `{"match_score": 0, "match_toelichting": []}`, expected: 1},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGenerator{response: tt.response}
			scorer := NewScorer(stub, zap.NewNop(), 0)

			result, err := scorer.Score(context.Background(), testTemplate, testSubject(), testSubsidy())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Score != tt.expected {
				t.Fatalf("expected score %d, got %d", tt.expected, result.Score)
			}
		})
	}
}

func TestScorerScalarRationaleBecomesList(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: `{"match_score": 55, "match_toelichting": "enkele zin als toelichting"}`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	result, err := scorer.Score(context.Background(), testTemplate, testSubject(), testSubsidy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rationale) != 1 || result.Rationale[0] != "enkele zin als toelichting" {
		t.Fatalf("expected a single-element rationale list, got %v", result.Rationale)
	}
}

func assertFallback(t *testing.T, score int, rationale []string) {
	t.Helper()

	if score != fallbackScore {
		t.Fatalf("expected fallback score %d, got %d", fallbackScore, score)
	}
	if len(rationale) != 1 || rationale[0] != fallbackRationale {
		t.Fatalf("expected fallback rationale, got %v", rationale)
	}
}
