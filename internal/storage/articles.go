package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/econbrief/news-enricher/internal/core/domain"
	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
)

const pgUniqueViolation = "23505"

// ArticleExistsByURL reports whether an article with the exact URL exists.
func (db *DB) ArticleExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool

	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM articles WHERE url = $1)`, url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article url: %w", err)
	}

	return exists, nil
}

// InsertArticle stores an article and its content as one atomic unit.
// A concurrent insert of the same URL surfaces as ErrDuplicateURL.
func (db *DB) InsertArticle(ctx context.Context, article *domain.Article, content *domain.ArticleContent) (*domain.Article, error) {
	imagesJSON, err := json.Marshal(content.Images)
	if err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin insert article: %w", apperrors.ErrPersistence, err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO articles (title, url, description, published_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, article.Title, article.URL, article.Description, article.PublishedAt, string(article.Status),
	).Scan(&article.ID, &article.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateURL, article.URL)
		}

		return nil, fmt.Errorf("%w: insert article: %w", apperrors.ErrPersistence, err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO article_contents (article_id, content, images)
		VALUES ($1, $2, $3)
	`, article.ID, content.Content, imagesJSON); err != nil {
		return nil, fmt.Errorf("%w: insert article content: %w", apperrors.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit insert article: %w", apperrors.ErrPersistence, err)
	}

	content.ArticleID = article.ID

	return article, nil
}

// GetProcessableArticles selects articles eligible for the lifecycle:
// PENDING plus FAILED retries. No ordering is guaranteed.
func (db *DB) GetProcessableArticles(ctx context.Context) ([]domain.Article, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, title, url, COALESCE(description, ''), published_at, COALESCE(category, ''), status, created_at
		FROM articles
		WHERE status = ANY($1)
	`, []string{string(domain.StatusPending), string(domain.StatusFailed)})
	if err != nil {
		return nil, fmt.Errorf("select processable articles: %w", err)
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

// ClaimArticle conditionally moves an article to PROCESSING. It returns
// false when the row was not in a claimable state, meaning another run
// already owns it.
func (db *DB) ClaimArticle(ctx context.Context, articleID int64) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE articles
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)
	`, articleID, string(domain.StatusProcessing),
		[]string{string(domain.StatusPending), string(domain.StatusFailed)})
	if err != nil {
		return false, fmt.Errorf("%w: claim article %d: %w", apperrors.ErrPersistence, articleID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkArticleFailed flips an article to FAILED by a fresh lookup of the
// row; the caller's in-memory handle may be stale after a rollback.
func (db *DB) MarkArticleFailed(ctx context.Context, articleID int64) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE articles SET status = $2, updated_at = now() WHERE id = $1
	`, articleID, string(domain.StatusFailed))
	if err != nil {
		return fmt.Errorf("%w: mark article %d failed: %w", apperrors.ErrPersistence, articleID, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: article %d", apperrors.ErrNotFound, articleID)
	}

	return nil
}

// GetArticleContent returns the stored full text and images for an article.
func (db *DB) GetArticleContent(ctx context.Context, articleID int64) (*domain.ArticleContent, error) {
	var (
		content    domain.ArticleContent
		imagesJSON []byte
	)

	err := db.Pool.QueryRow(ctx, `
		SELECT article_id, content, COALESCE(images, '[]'::jsonb)
		FROM article_contents
		WHERE article_id = $1
	`, articleID).Scan(&content.ArticleID, &content.Content, &imagesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: content for article %d", apperrors.ErrNotFound, articleID)
		}

		return nil, fmt.Errorf("get article content: %w", err)
	}

	if err := json.Unmarshal(imagesJSON, &content.Images); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}

	return &content, nil
}

// SaveEnrichment stores the enrichment result and flips the article to
// PROCESSED in one transaction. The unique constraint on article_id
// guarantees at most one enrichment row per article.
func (db *DB) SaveEnrichment(ctx context.Context, enriched *domain.EnrichedArticle) error {
	backgroundJSON, err := json.Marshal(enriched.Background)
	if err != nil {
		return fmt.Errorf("marshal background: %w", err)
	}

	keywordsJSON, err := json.Marshal(enriched.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	relatedJSON, err := json.Marshal(enriched.RelatedIndicators)
	if err != nil {
		return fmt.Errorf("marshal related indicators: %w", err)
	}

	seriesJSON, err := json.Marshal(enriched.TimeSeries)
	if err != nil {
		return fmt.Errorf("marshal time series: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin save enrichment: %w", apperrors.ErrPersistence, err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `
		INSERT INTO enriched_articles (article_id, background, keywords, category, related_statistics, statistics_data)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, enriched.ArticleID, backgroundJSON, keywordsJSON, enriched.Category, relatedJSON, seriesJSON); err != nil {
		return fmt.Errorf("%w: insert enrichment for article %d: %w", apperrors.ErrPersistence, enriched.ArticleID, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE articles SET status = $2, category = $3, updated_at = now() WHERE id = $1
	`, enriched.ArticleID, string(domain.StatusProcessed), enriched.Category); err != nil {
		return fmt.Errorf("%w: update article %d status: %w", apperrors.ErrPersistence, enriched.ArticleID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit enrichment for article %d: %w", apperrors.ErrPersistence, enriched.ArticleID, err)
	}

	return nil
}
