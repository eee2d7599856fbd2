package ingest

import (
	"context"

	"github.com/rs/zerolog"
)

// Service runs one ingestion pass: search per keyword, extract each
// candidate, validate and persist. Failures on one keyword or candidate
// never abort the pass.
type Service struct {
	collector *Collector
	persister *Persister
	keywords  []string
	perQuery  int
	logger    *zerolog.Logger
}

// NewService creates the ingestion service.
func NewService(collector *Collector, persister *Persister, keywords []string, perQuery int, logger *zerolog.Logger) *Service {
	return &Service{
		collector: collector,
		persister: persister,
		keywords:  keywords,
		perQuery:  perQuery,
		logger:    logger,
	}
}

// Run executes one full ingestion pass over the configured keywords.
func (s *Service) Run(ctx context.Context) error {
	for _, keyword := range s.keywords {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.runKeyword(ctx, keyword)
	}

	return nil
}

func (s *Service) runKeyword(ctx context.Context, keyword string) {
	items := s.collector.FetchCandidates(ctx, keyword, s.perQuery)

	for _, item := range items {
		candidate, ok := s.collector.ExtractArticle(ctx, item.Link)
		if !ok {
			s.logger.Warn().Str("url", item.Link).Msg("skipping candidate without extractable content")
			continue
		}

		_, err := s.persister.CreateArticle(
			ctx,
			candidate.Title,
			item.Link,
			item.Description,
			item.PublishedAt,
			candidate.Body,
			candidate.Images,
		)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", item.Link).Msg("article rejected at ingestion")
		}
	}
}
