package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/econbrief/news-enricher/internal/core/domain"
)

// Lookback spans per indicator frequency. Low-frequency series need
// longer history to show a trend; high-frequency series would overwhelm
// the reader at the same span.
const (
	dailyLookbackMonths    = 3
	monthlyLookbackMonths  = 24
	quarterlyLookbackYears = 5
	defaultLookbackYears   = 1
)

// StatisticsStore provides indicator metadata and observations.
type StatisticsStore interface {
	GetIndicatorsByIDs(ctx context.Context, ids []string) ([]domain.Indicator, error)
	GetObservations(ctx context.Context, indicatorID string, from, to time.Time) ([]domain.Observation, error)
}

// Contextualizer retrieves frequency-aware time-series windows for the
// indicators the language model linked to an article.
type Contextualizer struct {
	store  StatisticsStore
	logger *zerolog.Logger
}

// NewContextualizer creates a statistics contextualizer.
func NewContextualizer(store StatisticsStore, logger *zerolog.Logger) *Contextualizer {
	return &Contextualizer{store: store, logger: logger}
}

// GetTimeSeries returns one series per requested indicator, windowed by
// the indicator's frequency and anchored at referenceDate as window end.
// Indicators missing metadata are skipped with a warning, never fatal.
func (c *Contextualizer) GetTimeSeries(ctx context.Context, indicatorIDs []string, referenceDate time.Time) ([]domain.IndicatorSeries, error) {
	if len(indicatorIDs) == 0 {
		return nil, nil
	}

	indicators, err := c.store.GetIndicatorsByIDs(ctx, indicatorIDs)
	if err != nil {
		return nil, err
	}

	metaByID := make(map[string]domain.Indicator, len(indicators))
	for _, ind := range indicators {
		metaByID[ind.IndicatorID] = ind
	}

	results := make([]domain.IndicatorSeries, 0, len(indicatorIDs))

	for _, id := range indicatorIDs {
		meta, ok := metaByID[id]
		if !ok {
			c.logger.Warn().Str("indicator_id", id).Msg("indicator metadata not found, skipping")
			continue
		}

		start := lookbackStart(meta.Frequency, referenceDate)

		observations, err := c.store.GetObservations(ctx, id, start, referenceDate)
		if err != nil {
			return nil, err
		}

		results = append(results, domain.IndicatorSeries{
			IndicatorID:  meta.IndicatorID,
			Name:         meta.Name,
			Unit:         meta.Unit,
			Frequency:    meta.Frequency,
			Observations: observations,
		})
	}

	return results, nil
}

// lookbackStart computes the inclusive window start for a frequency,
// anchored at end. Unrecognized frequencies fall back to one year.
func lookbackStart(frequency string, end time.Time) time.Time {
	switch frequency {
	case domain.FrequencyDaily:
		return end.AddDate(0, -dailyLookbackMonths, 0)
	case domain.FrequencyMonthly:
		return end.AddDate(0, -monthlyLookbackMonths, 0)
	case domain.FrequencyQuarterly:
		return end.AddDate(-quarterlyLookbackYears, 0, 0)
	default:
		return end.AddDate(-defaultLookbackYears, 0, 0)
	}
}
