package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/econbrief/news-enricher/internal/core/domain"
	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
	"github.com/econbrief/news-enricher/internal/platform/htmlutils"
	"github.com/econbrief/news-enricher/internal/platform/observability"
)

// minPersistedBodyLength is the ingestion content floor; shorter bodies
// are silently rejected without an error.
const minPersistedBodyLength = 50

// ArticleStore is the persistence capability ingestion depends on.
type ArticleStore interface {
	ArticleExistsByURL(ctx context.Context, url string) (bool, error)
	InsertArticle(ctx context.Context, article *domain.Article, content *domain.ArticleContent) (*domain.Article, error)
}

// Persister validates raw candidates and atomically inserts the article
// with its content, deduplicating by exact URL.
type Persister struct {
	store  ArticleStore
	logger *zerolog.Logger
}

// NewPersister creates the ingestion persister.
func NewPersister(store ArticleStore, logger *zerolog.Logger) *Persister {
	return &Persister{store: store, logger: logger}
}

// CreateArticle validates and stores one article in PENDING state.
// It returns (nil, nil) for the two silent non-error outcomes: a body
// under the content floor and a duplicate URL.
func (p *Persister) CreateArticle(
	ctx context.Context,
	title, rawURL, description, publishedAt, body string,
	images []string,
) (*domain.Article, error) {
	if title == "" || rawURL == "" || body == "" {
		return nil, fmt.Errorf("%w: title, url and body are required", apperrors.ErrValidation)
	}

	trimmedBody := strings.TrimSpace(body)
	if len([]rune(trimmedBody)) < minPersistedBodyLength {
		p.logger.Debug().Str("url", rawURL).Int("len", len([]rune(trimmedBody))).Msg("body under content floor, skipping")
		observability.CountIngested("rejected")

		return nil, nil
	}

	parsedDate, err := dateparse.ParseAny(publishedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: unparsable publish date %q: %w", apperrors.ErrValidation, publishedAt, err)
	}

	exists, err := p.store.ArticleExistsByURL(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("check duplicate url: %w", err)
	}

	if exists {
		p.logger.Debug().Str("url", rawURL).Msg("duplicate url, skipping")
		observability.CountIngested("duplicate")

		return nil, nil
	}

	if len(images) > domain.MaxImagesPerArticle {
		images = images[:domain.MaxImagesPerArticle]
	}

	article := &domain.Article{
		Title:       strings.TrimSpace(title),
		URL:         strings.TrimSpace(rawURL),
		Description: htmlutils.StripTags(description),
		PublishedAt: parsedDate,
		Status:      domain.StatusPending,
	}

	content := &domain.ArticleContent{
		Content: trimmedBody,
		Images:  images,
	}

	created, err := p.store.InsertArticle(ctx, article, content)
	if err != nil {
		return nil, err
	}

	p.logger.Info().Int64("article_id", created.ID).Str("title", created.Title).Msg("new article stored")
	observability.CountIngested("created")

	return created, nil
}
