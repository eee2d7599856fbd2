package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/econbrief/news-enricher/internal/core/domain"
	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
	"github.com/econbrief/news-enricher/internal/core/llm"
	"github.com/econbrief/news-enricher/internal/platform/observability"
)

const (
	requiredBackgroundItems = 2
	maxKeywords             = 4
	maxRelatedIndicators    = 2
)

// IndicatorLister returns the indicators offered to the language model.
type IndicatorLister interface {
	ListAvailableIndicators(ctx context.Context) ([]domain.Indicator, error)
}

// Enricher builds the fixed-schema analysis prompt, invokes the language
// model and validates its structured output.
type Enricher struct {
	llm    llm.Client
	store  IndicatorLister
	logger *zerolog.Logger
}

// NewEnricher creates the LLM-driven enricher.
func NewEnricher(client llm.Client, store IndicatorLister, logger *zerolog.Logger) *Enricher {
	return &Enricher{llm: client, store: store, logger: logger}
}

// promptIndicator is the subset of indicator metadata embedded in the
// prompt; frequency and unit are irrelevant to relevance selection.
type promptIndicator struct {
	IndicatorID string `json:"indicator_id"`
	Name        string `json:"name"`
	Notes       string `json:"notes,omitempty"`
}

// Analyze sends the article body to the language model and returns the
// validated analysis. Malformed output and upstream failures surface as
// classified errors, retryable at the article level.
func (e *Enricher) Analyze(ctx context.Context, body string) (*domain.Analysis, error) {
	available, err := e.store.ListAvailableIndicators(ctx)
	if err != nil {
		return nil, err
	}

	if len(available) == 0 {
		return nil, apperrors.ErrNoIndicators
	}

	prompt, err := buildSystemPrompt(available)
	if err != nil {
		return nil, err
	}

	var raw string

	err = observability.TrackCall("llm", func() error {
		var err error

		raw, err = e.llm.Complete(ctx, prompt, body)

		return err
	})
	if err != nil {
		return nil, err
	}

	analysis, err := e.parseAnalysis(raw)
	if err != nil {
		return nil, err
	}

	e.validateRelatedIndicators(analysis, available)

	return analysis, nil
}

func buildSystemPrompt(available []domain.Indicator) (string, error) {
	prompted := make([]promptIndicator, 0, len(available))

	for _, ind := range available {
		if ind.Name == "" {
			continue
		}

		prompted = append(prompted, promptIndicator{
			IndicatorID: ind.IndicatorID,
			Name:        ind.Name,
			Notes:       ind.Notes,
		})
	}

	indicatorsJSON, err := json.MarshalIndent(prompted, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal indicators for prompt: %w", err)
	}

	return llm.AnalysisSystemPrompt(string(indicatorsJSON)), nil
}

// parseAnalysis decodes and validates the model output against the
// fixed schema. The raw payload is logged on any failure so malformed
// generations can be inspected.
func (e *Enricher) parseAnalysis(raw string) (*domain.Analysis, error) {
	var analysis domain.Analysis

	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		e.logger.Error().Str("raw", raw).Err(err).Msg("llm response is not valid json")

		return nil, fmt.Errorf("%w: %w", apperrors.ErrMalformedResponse, err)
	}

	if len(analysis.Background) != requiredBackgroundItems {
		e.logger.Error().Str("raw", raw).Int("items", len(analysis.Background)).Msg("llm response background item count mismatch")

		return nil, fmt.Errorf("%w: expected %d background items, got %d",
			apperrors.ErrMalformedResponse, requiredBackgroundItems, len(analysis.Background))
	}

	if analysis.Category == "" {
		e.logger.Error().Str("raw", raw).Msg("llm response missing category")

		return nil, fmt.Errorf("%w: missing category", apperrors.ErrMalformedResponse)
	}

	if len(analysis.Keywords) > maxKeywords {
		analysis.Keywords = analysis.Keywords[:maxKeywords]
	}

	if len(analysis.RelatedIndicators) > maxRelatedIndicators {
		analysis.RelatedIndicators = analysis.RelatedIndicators[:maxRelatedIndicators]
	}

	return &analysis, nil
}

// validateRelatedIndicators drops hallucinated indicator IDs that are
// not in the offered set.
func (e *Enricher) validateRelatedIndicators(analysis *domain.Analysis, available []domain.Indicator) {
	known := make(map[string]struct{}, len(available))
	for _, ind := range available {
		known[ind.IndicatorID] = struct{}{}
	}

	kept := analysis.RelatedIndicators[:0]

	for _, related := range analysis.RelatedIndicators {
		if related.IndicatorID == "" {
			continue
		}

		if _, ok := known[related.IndicatorID]; !ok {
			e.logger.Warn().Str("indicator_id", related.IndicatorID).Msg("dropping unknown indicator id from llm output")
			continue
		}

		kept = append(kept, related)
	}

	analysis.RelatedIndicators = kept
}
