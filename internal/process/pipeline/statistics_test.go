package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econbrief/news-enricher/internal/core/domain"
)

type fakeStatisticsStore struct {
	indicators   []domain.Indicator
	observations map[string][]domain.Observation

	observationCalls []observationCall
	err              error
}

type observationCall struct {
	indicatorID string
	from        time.Time
	to          time.Time
}

func (s *fakeStatisticsStore) GetIndicatorsByIDs(_ context.Context, ids []string) ([]domain.Indicator, error) {
	if s.err != nil {
		return nil, s.err
	}

	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	var out []domain.Indicator

	for _, ind := range s.indicators {
		if _, ok := requested[ind.IndicatorID]; ok {
			out = append(out, ind)
		}
	}

	return out, nil
}

func (s *fakeStatisticsStore) GetObservations(_ context.Context, indicatorID string, from, to time.Time) ([]domain.Observation, error) {
	s.observationCalls = append(s.observationCalls, observationCall{indicatorID: indicatorID, from: from, to: to})

	return s.observations[indicatorID], nil
}

func TestLookbackStart(t *testing.T) {
	reference := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency string
		want      time.Time
	}{
		{
			name:      "daily gets three months",
			frequency: domain.FrequencyDaily,
			want:      time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly gets twenty four months",
			frequency: domain.FrequencyMonthly,
			want:      time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "quarterly gets five years",
			frequency: domain.FrequencyQuarterly,
			want:      time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "unknown frequency falls back to one year",
			frequency: "W",
			want:      time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "empty frequency falls back to one year",
			frequency: "",
			want:      time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lookbackStart(tt.frequency, reference)
			assert.True(t, got.Equal(tt.want), "lookbackStart(%q) = %v, want %v", tt.frequency, got, tt.want)
		})
	}
}

func TestGetTimeSeries(t *testing.T) {
	reference := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	logger := zerolog.Nop()

	store := &fakeStatisticsStore{
		indicators: []domain.Indicator{
			{IndicatorID: "base_rate", Name: "기준금리", Frequency: domain.FrequencyDaily, Unit: "%"},
			{IndicatorID: "cpi", Name: "소비자물가지수", Frequency: domain.FrequencyMonthly, Unit: "2020=100"},
		},
		observations: map[string][]domain.Observation{
			"base_rate": {{Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), Value: 2.75}},
			"cpi":       {{Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Value: 114.2}},
		},
	}

	c := NewContextualizer(store, &logger)

	series, err := c.GetTimeSeries(context.Background(), []string{"cpi", "missing", "base_rate"}, reference)
	require.NoError(t, err)

	// Unknown IDs are skipped; the rest keep the requested order.
	require.Len(t, series, 2)
	assert.Equal(t, "cpi", series[0].IndicatorID)
	assert.Equal(t, "base_rate", series[1].IndicatorID)
	assert.Equal(t, "소비자물가지수", series[0].Name)
	assert.Len(t, series[0].Observations, 1)

	require.Len(t, store.observationCalls, 2)
	assert.True(t, store.observationCalls[0].from.Equal(time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, store.observationCalls[1].from.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)))

	for _, call := range store.observationCalls {
		assert.True(t, call.to.Equal(reference), "window end must be the reference date")
	}
}

func TestGetTimeSeriesEmptyInput(t *testing.T) {
	logger := zerolog.Nop()
	c := NewContextualizer(&fakeStatisticsStore{}, &logger)

	series, err := c.GetTimeSeries(context.Background(), nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestGetTimeSeriesStoreError(t *testing.T) {
	logger := zerolog.Nop()
	store := &fakeStatisticsStore{err: errors.New("connection reset")}
	c := NewContextualizer(store, &logger)

	_, err := c.GetTimeSeries(context.Background(), []string{"cpi"}, time.Now())
	require.Error(t, err)
}
