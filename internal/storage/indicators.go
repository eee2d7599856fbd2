package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/econbrief/news-enricher/internal/core/domain"
)

// ListAvailableIndicators returns indicators with a non-empty name,
// the set offered to the language model for relevance selection.
func (db *DB) ListAvailableIndicators(ctx context.Context) ([]domain.Indicator, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT indicator_id, name, COALESCE(frequency, ''), COALESCE(unit, ''), COALESCE(notes, '')
		FROM indicators
		WHERE name IS NOT NULL AND name <> ''
	`)
	if err != nil {
		return nil, fmt.Errorf("list indicators: %w", err)
	}
	defer rows.Close()

	return scanIndicators(rows)
}

// GetIndicatorsByIDs returns metadata for the requested indicator IDs.
// Unknown IDs are simply absent from the result.
func (db *DB) GetIndicatorsByIDs(ctx context.Context, ids []string) ([]domain.Indicator, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT indicator_id, name, COALESCE(frequency, ''), COALESCE(unit, ''), COALESCE(notes, '')
		FROM indicators
		WHERE indicator_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("get indicators by ids: %w", err)
	}
	defer rows.Close()

	return scanIndicators(rows)
}

// GetObservations returns observations for one indicator within the
// inclusive [from, to] window, ascending by date.
func (db *DB) GetObservations(ctx context.Context, indicatorID string, from, to time.Time) ([]domain.Observation, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT date, value
		FROM observations
		WHERE indicator_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`, indicatorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get observations for %s: %w", indicatorID, err)
	}
	defer rows.Close()

	var observations []domain.Observation

	for rows.Next() {
		var o domain.Observation

		if err := rows.Scan(&o.Date, &o.Value); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}

		observations = append(observations, o)
	}

	return observations, rows.Err()
}

type indicatorRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanIndicators(rows indicatorRows) ([]domain.Indicator, error) {
	var indicators []domain.Indicator

	for rows.Next() {
		var ind domain.Indicator

		if err := rows.Scan(&ind.IndicatorID, &ind.Name, &ind.Frequency, &ind.Unit, &ind.Notes); err != nil {
			return nil, fmt.Errorf("scan indicator: %w", err)
		}

		indicators = append(indicators, ind)
	}

	return indicators, rows.Err()
}
