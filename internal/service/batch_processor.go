package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/createdbyadham/Questionary/internal/config"
	"github.com/createdbyadham/Questionary/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// ProgressFunc receives a human-readable status message plus the number of
// units completed so far out of the total.
type ProgressFunc func(message string, completed, total int)

// BatchProcessor sends one TextUnit to the LLM, validates the structured
// response, and retries transient failures. A unit either contributes its
// valid questions or, after exhausted retries, an empty list; it never
// returns an error past this boundary.
type BatchProcessor struct {
	model  llms.Model
	cfg    config.PipelineConfig
	logger *zap.Logger
}

// NewBatchProcessor creates a BatchProcessor with the given model and
// pipeline settings.
func NewBatchProcessor(model llms.Model, cfg config.PipelineConfig, logger *zap.Logger) *BatchProcessor {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}
	return &BatchProcessor{model: model, cfg: cfg, logger: logger}
}

var codeFenceRe = regexp.MustCompile("^```(?:json)?\\s*|\\s*```$")

// llmResponse models the JSON contract the prompts pin down.
type llmResponse struct {
	Questions []domain.Question `json:"questions"`
}

// ProcessUnit runs one unit through the LLM. On a network, parse, or shape
// failure it retries up to MaxRetries total attempts with exponential
// backoff; after exhaustion it returns the unit index with a nil list.
// Individual questions failing validation are dropped, never retried.
func (p *BatchProcessor) ProcessUnit(ctx context.Context, unit domain.TextUnit, mode domain.PipelineMode) (int, []domain.Question) {
	system, user := buildPrompts(unit, mode)

	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		questions, err := p.callOnce(ctx, system, user, unit)
		if err == nil {
			return unit.Index, questions
		}

		p.logger.Warn("Batch attempt failed",
			zap.Int("unit", unit.Index+1),
			zap.Int("total_units", unit.Total),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < p.cfg.MaxRetries {
			wait := p.cfg.RetryBaseDelay << attempt // 2^attempt * base
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return unit.Index, nil
			}
		}
	}

	p.logger.Error("Unit failed after exhausting retries",
		zap.Int("unit", unit.Index+1),
		zap.Int("max_retries", p.cfg.MaxRetries))
	return unit.Index, nil
}

// callOnce performs a single LLM round trip and returns the valid questions.
// Any error it returns is retryable.
func (p *BatchProcessor) callOnce(ctx context.Context, system, user string, unit domain.TextUnit) ([]domain.Question, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	resp, err := p.model.GenerateContent(ctx, messages,
		llms.WithTemperature(0.1),
		llms.WithMaxTokens(4096),
	)
	if err != nil {
		return nil, domain.NewLLMServiceError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.NewMalformedResponseError("LLM returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Content)
	raw = strings.TrimSpace(codeFenceRe.ReplaceAllString(raw, ""))

	if !strings.HasPrefix(raw, "{") || !strings.HasSuffix(raw, "}") {
		return nil, domain.NewMalformedResponseError("response is not a JSON object")
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, domain.NewMalformedResponseError(fmt.Sprintf("failed to parse response JSON: %v", err))
	}
	if len(parsed.Questions) == 0 {
		return nil, domain.NewMalformedResponseError("response has no questions")
	}

	valid := make([]domain.Question, 0, len(parsed.Questions))
	for _, q := range parsed.Questions {
		q.Normalize()
		if err := q.Validate(); err != nil {
			p.logger.Warn("Question dropped by validation",
				zap.Int("unit", unit.Index+1),
				zap.String("question", q.Text),
				zap.Strings("options", q.Options),
				zap.String("correct_answer", q.CorrectAnswer),
				zap.Error(err))
			continue
		}
		if unit.SourceLabel != "" {
			q.SourceLabel = unit.SourceLabel
			q.PageRange = unit.PageRange
		}
		valid = append(valid, q)
	}

	// All questions failing validation is a content problem, not a transport
	// one; retrying the same batch would not help.
	return valid, nil
}
