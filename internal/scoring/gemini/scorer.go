// Package gemini implements the real scoring backend on top of the Gemini
// API. The rendered prompt asks for a JSON reply with match_score and
// match_toelichting keys; any unusable reply or failed call resolves to a
// fixed fallback result rather than an error.
package gemini

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/kaptinlin/jsonrepair"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/subsidiematch/subsidiematch/internal/prompt"
	"github.com/subsidiematch/subsidiematch/internal/scoring"
	"github.com/subsidiematch/subsidiematch/internal/store"
	"github.com/subsidiematch/subsidiematch/internal/utils"
)

const (
	fallbackScore       = 50
	fallbackRationale   = "default score used - response unusable"
	defaultMaxLogLength = 200
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) Real() bool { return true }

// Score renders the template for the given pair and sends it to Gemini in a
// single blocking round-trip. A render failure propagates: it indicates a
// corrupt template the caller must surface. Everything that goes wrong after
// rendering degrades to the fallback result.
func (s *Scorer) Score(ctx context.Context, template string, subject *store.Subject, sub *store.Subsidy) (*scoring.Result, error) {
	rendered, err := prompt.Render(template, prompt.Context(subject, sub))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini generate content request",
		zap.String("subject", subject.Key()),
		zap.Int("subsidy_id", sub.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(rendered)),
		zap.String("prompt_preview", utils.TruncateForLog(rendered, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, rendered)
	if err != nil {
		s.logger.Warn("gemini call failed, falling back to default score",
			zap.String("subject", subject.Key()),
			zap.Int("subsidy_id", sub.ID),
			zap.Error(err),
		)
		return fallbackResult(), nil
	}

	s.logger.Debug("gemini generate content response",
		zap.String("subject", subject.Key()),
		zap.Int("subsidy_id", sub.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	result, ok := parseResponse(raw)
	if !ok {
		s.logger.Warn("gemini response unusable, falling back to default score",
			zap.String("subject", subject.Key()),
			zap.Int("subsidy_id", sub.ID),
			zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
		)
		return fallbackResult(), nil
	}

	return result, nil
}

func fallbackResult() *scoring.Result {
	return &scoring.Result{
		Score:     fallbackScore,
		Rationale: []string{fallbackRationale},
	}
}

// replyPayload is the JSON shape the prompt instructs the model to produce.
type replyPayload struct {
	Score     int      `json:"match_score"`
	Rationale []string `json:"match_toelichting"`
}

// parseResponse extracts the score payload from the raw model reply. It
// tries a strict JSON parse first, then a jsonrepair pass, then the
// first-{ to last-} substring. The weakly typed decode coerces string or
// float scores to int and a scalar rationale to a single-element list.
func parseResponse(raw string) (*scoring.Result, bool) {
	data, ok := decodeObject(raw)
	if !ok {
		return nil, false
	}

	if _, present := data["match_score"]; !present {
		return nil, false
	}

	var payload replyPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &payload,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, false
	}
	if err := decoder.Decode(data); err != nil {
		return nil, false
	}

	return &scoring.Result{
		Score:     scoring.ClampScore(payload.Score, 1, 100),
		Rationale: payload.Rationale,
	}, true
}

func decodeObject(raw string) (map[string]any, bool) {
	cleaned := stripFences(raw)

	var data map[string]any
	if json.Unmarshal([]byte(cleaned), &data) == nil {
		return data, true
	}

	if repaired, err := jsonrepair.JSONRepair(cleaned); err == nil {
		if json.Unmarshal([]byte(repaired), &data) == nil {
			return data, true
		}
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if json.Unmarshal([]byte(cleaned[start:end+1]), &data) == nil {
			return data, true
		}
	}

	return nil, false
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
