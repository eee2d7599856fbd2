// Package pipeline drives articles through the enrichment lifecycle:
// PENDING → PROCESSING → PROCESSED or FAILED. FAILED articles re-enter
// the selection set on the next run; PROCESSED is terminal.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/econbrief/news-enricher/internal/core/domain"
	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
	"github.com/econbrief/news-enricher/internal/platform/config"
	"github.com/econbrief/news-enricher/internal/platform/observability"
)

// Repository is the persistence capability the lifecycle depends on.
type Repository interface {
	GetProcessableArticles(ctx context.Context) ([]domain.Article, error)
	ClaimArticle(ctx context.Context, articleID int64) (bool, error)
	MarkArticleFailed(ctx context.Context, articleID int64) error
	GetArticleContent(ctx context.Context, articleID int64) (*domain.ArticleContent, error)
	SaveEnrichment(ctx context.Context, enriched *domain.EnrichedArticle) error
}

// Analyzer produces the structured analysis for an article body.
type Analyzer interface {
	Analyze(ctx context.Context, body string) (*domain.Analysis, error)
}

// TermMatcher finds the nearest domain terms for an article body.
type TermMatcher interface {
	Match(ctx context.Context, text string) ([]domain.TermMatch, error)
}

// SeriesProvider retrieves windowed time series for indicator IDs.
type SeriesProvider interface {
	GetTimeSeries(ctx context.Context, indicatorIDs []string, referenceDate time.Time) ([]domain.IndicatorSeries, error)
}

// Lifecycle owns status transitions and runs each eligible article to a
// terminal state with per-article failure isolation.
type Lifecycle struct {
	repo     Repository
	enricher Analyzer
	matcher  TermMatcher
	stats    SeriesProvider
	mode     string
	logger   *zerolog.Logger
}

// NewLifecycle creates the article lifecycle. The matcher is only
// consulted in terms mode.
func NewLifecycle(repo Repository, enricher Analyzer, matcher TermMatcher, stats SeriesProvider, mode string, logger *zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		repo:     repo,
		enricher: enricher,
		matcher:  matcher,
		stats:    stats,
		mode:     mode,
		logger:   logger,
	}
}

// Run processes every claimable article once. Stage failures are
// isolated per article: the article is marked FAILED via a fresh row
// and the run continues. Only persistence failures abort the run.
func (l *Lifecycle) Run(ctx context.Context) error {
	articles, err := l.repo.GetProcessableArticles(ctx)
	if err != nil {
		return fmt.Errorf("select work: %w", err)
	}

	runLogger := l.logger.With().Str("run_id", uuid.New().String()).Logger()
	runLogger.Info().Int("articles", len(articles)).Msg("processing run started")

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}

		claimed, err := l.repo.ClaimArticle(ctx, article.ID)
		if err != nil {
			return fmt.Errorf("claim article %d: %w", article.ID, err)
		}

		if !claimed {
			runLogger.Debug().Int64("article_id", article.ID).Msg("article claimed elsewhere, skipping")
			continue
		}

		if err := l.handleOutcome(ctx, &runLogger, article, l.processArticle(ctx, &runLogger, article)); err != nil {
			return err
		}
	}

	runLogger.Info().Msg("processing run finished")

	return nil
}

// handleOutcome classifies a stage error, marks the article FAILED via
// a freshly addressed row, and decides whether the run continues.
// Persistence errors are integrity-critical and re-raised.
func (l *Lifecycle) handleOutcome(ctx context.Context, logger *zerolog.Logger, article domain.Article, procErr error) error {
	if procErr == nil {
		observability.CountProcessed("processed")
		logger.Info().Int64("article_id", article.ID).Msg("article processed")

		return nil
	}

	if apperrors.Is(procErr, apperrors.ErrPersistence) {
		return fmt.Errorf("article %d: %w", article.ID, procErr)
	}

	switch {
	case apperrors.Is(procErr, apperrors.ErrExternalService):
		logger.Error().Err(procErr).Int64("article_id", article.ID).Msg("external service failure, article will be retried")
	case apperrors.Is(procErr, apperrors.ErrMalformedResponse):
		logger.Error().Err(procErr).Int64("article_id", article.ID).Msg("malformed model output, article will be retried")
	case apperrors.Is(procErr, apperrors.ErrNoValidSentences),
		apperrors.Is(procErr, apperrors.ErrNoTermMatches),
		apperrors.Is(procErr, apperrors.ErrNoIndicators):
		logger.Warn().Err(procErr).Int64("article_id", article.ID).Msg("article not enrichable")
	default:
		logger.Error().Err(procErr).Int64("article_id", article.ID).Msg("unexpected processing failure")
	}

	observability.CountProcessed("failed")

	if err := l.repo.MarkArticleFailed(ctx, article.ID); err != nil {
		return fmt.Errorf("mark article %d failed: %w", article.ID, err)
	}

	return nil
}

// processArticle runs the stage sequence for one claimed article.
// Panics are converted to errors so a single pathological article
// cannot take down the run.
func (l *Lifecycle) processArticle(ctx context.Context, logger *zerolog.Logger, article domain.Article) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing article %d: %v", article.ID, r)
		}
	}()

	start := time.Now()
	defer observability.ObserveStage("process_article", start)

	content, err := l.repo.GetArticleContent(ctx, article.ID)
	if err != nil {
		return err
	}

	var matches []domain.TermMatch

	if l.mode == config.EnrichmentModeTerms {
		matches, err = l.matcher.Match(ctx, content.Content)
		if err != nil {
			return err
		}
	}

	analysis, err := l.enricher.Analyze(ctx, content.Content)
	if err != nil {
		return err
	}

	if len(matches) > 0 {
		analysis.Keywords = keywordsFromMatches(matches)
	}

	series, err := l.fetchSeries(ctx, logger, article, analysis)
	if err != nil {
		return err
	}

	return l.repo.SaveEnrichment(ctx, &domain.EnrichedArticle{
		ArticleID:         article.ID,
		Background:        analysis.Background,
		Keywords:          analysis.Keywords,
		Category:          analysis.Category,
		RelatedIndicators: analysis.RelatedIndicators,
		TimeSeries:        series,
	})
}

func (l *Lifecycle) fetchSeries(ctx context.Context, logger *zerolog.Logger, article domain.Article, analysis *domain.Analysis) ([]domain.IndicatorSeries, error) {
	ids := make([]string, 0, len(analysis.RelatedIndicators))
	for _, related := range analysis.RelatedIndicators {
		ids = append(ids, related.IndicatorID)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	referenceDate := article.PublishedAt
	if referenceDate.IsZero() {
		referenceDate = time.Now()
	}

	logger.Info().Int64("article_id", article.ID).Strs("indicator_ids", ids).Msg("retrieving indicator time series")

	return l.stats.GetTimeSeries(ctx, ids, referenceDate)
}

// keywordsFromMatches converts term matches into the keyword shape,
// using the stored term summaries as descriptions.
func keywordsFromMatches(matches []domain.TermMatch) []domain.Keyword {
	keywords := make([]domain.Keyword, 0, len(matches))
	for _, match := range matches {
		keywords = append(keywords, domain.Keyword{Term: match.Term, Description: match.Summary})
	}

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	return keywords
}
