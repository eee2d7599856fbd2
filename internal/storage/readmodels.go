package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/econbrief/news-enricher/internal/core/domain"
	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
)

// ArticleDetail is the read-surface shape: a processed article with its
// enrichment and stored images.
type ArticleDetail struct {
	Article           domain.Article
	Images            []string
	Background        []domain.BackgroundItem
	Keywords          []domain.Keyword
	RelatedIndicators []domain.RelatedIndicator
	TimeSeries        []domain.IndicatorSeries
}

// ListProcessedArticles returns PROCESSED articles newest first,
// optionally filtered by category. Only PROCESSED rows are ever exposed
// to readers.
func (db *DB) ListProcessedArticles(ctx context.Context, category string, offset, limit int) ([]domain.Article, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, title, url, COALESCE(description, ''), published_at, COALESCE(category, ''), status, created_at
		FROM articles
		WHERE status = $1 AND ($2 = '' OR category = $2)
		ORDER BY published_at DESC
		OFFSET $3 LIMIT $4
	`, string(domain.StatusProcessed), category, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list processed articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article

	for rows.Next() {
		var a domain.Article

		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Description, &a.PublishedAt, &a.Category, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}

		articles = append(articles, a)
	}

	return articles, rows.Err()
}

// ListTodayArticles returns PROCESSED articles published since midnight
// server time, newest first.
func (db *DB) ListTodayArticles(ctx context.Context) ([]domain.Article, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, title, url, COALESCE(description, ''), published_at, COALESCE(category, ''), status, created_at
		FROM articles
		WHERE status = $1 AND published_at >= date_trunc('day', now())
		ORDER BY published_at DESC
	`, string(domain.StatusProcessed))
	if err != nil {
		return nil, fmt.Errorf("list today articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article

	for rows.Next() {
		var a domain.Article

		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Description, &a.PublishedAt, &a.Category, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}

		articles = append(articles, a)
	}

	return articles, rows.Err()
}

// GetArticleDetail returns one PROCESSED article with its enrichment.
// Non-processed articles are invisible and reported as not found.
func (db *DB) GetArticleDetail(ctx context.Context, articleID int64) (*ArticleDetail, error) {
	var (
		detail         ArticleDetail
		imagesJSON     []byte
		backgroundJSON []byte
		keywordsJSON   []byte
		relatedJSON    []byte
		seriesJSON     []byte
	)

	err := db.Pool.QueryRow(ctx, `
		SELECT a.id, a.title, a.url, COALESCE(a.description, ''), a.published_at,
		       COALESCE(a.category, ''), a.status, a.created_at,
		       COALESCE(c.images, '[]'::jsonb),
		       COALESCE(e.background, '[]'::jsonb),
		       COALESCE(e.keywords, '[]'::jsonb),
		       COALESCE(e.related_statistics, '[]'::jsonb),
		       COALESCE(e.statistics_data, '[]'::jsonb)
		FROM articles a
		LEFT JOIN article_contents c ON c.article_id = a.id
		LEFT JOIN enriched_articles e ON e.article_id = a.id
		WHERE a.id = $1 AND a.status = $2
	`, articleID, string(domain.StatusProcessed)).Scan(
		&detail.Article.ID, &detail.Article.Title, &detail.Article.URL, &detail.Article.Description,
		&detail.Article.PublishedAt, &detail.Article.Category, &detail.Article.Status, &detail.Article.CreatedAt,
		&imagesJSON, &backgroundJSON, &keywordsJSON, &relatedJSON, &seriesJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: article %d", apperrors.ErrNotFound, articleID)
		}

		return nil, fmt.Errorf("get article detail: %w", err)
	}

	for _, unmarshal := range []struct {
		raw  []byte
		dest any
	}{
		{imagesJSON, &detail.Images},
		{backgroundJSON, &detail.Background},
		{keywordsJSON, &detail.Keywords},
		{relatedJSON, &detail.RelatedIndicators},
		{seriesJSON, &detail.TimeSeries},
	} {
		if err := json.Unmarshal(unmarshal.raw, unmarshal.dest); err != nil {
			return nil, fmt.Errorf("unmarshal enrichment payload: %w", err)
		}
	}

	return &detail, nil
}
