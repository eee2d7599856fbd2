package storage

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/econbrief/news-enricher/internal/core/domain"
)

// FindNearestTerms performs a cosine-distance nearest-neighbor lookup
// of domain terms against an article centroid.
func (db *DB) FindNearestTerms(ctx context.Context, centroid []float32, limit int) ([]domain.TermMatch, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT term, COALESCE(summary, ''), embedding <=> $1 AS distance
		FROM domain_terms
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(centroid), limit)
	if err != nil {
		return nil, fmt.Errorf("nearest terms lookup: %w", err)
	}
	defer rows.Close()

	var matches []domain.TermMatch

	for rows.Next() {
		var m domain.TermMatch

		if err := rows.Scan(&m.Term, &m.Summary, &m.Distance); err != nil {
			return nil, fmt.Errorf("scan term match: %w", err)
		}

		matches = append(matches, m)
	}

	return matches, rows.Err()
}
