package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
)

const rssDefaultTimeout = 10 * time.Second

// RSSProvider implements Provider over a fixed set of news feeds.
// It is a keyless fallback for environments without Naver credentials:
// feed items are matched against the keyword in title or description.
type RSSProvider struct {
	feedURLs []string
	parser   *gofeed.Parser
	timeout  time.Duration
	logger   *zerolog.Logger
}

// NewRSSProvider creates an RSS-backed search provider.
func NewRSSProvider(feedURLs []string, timeout time.Duration, logger *zerolog.Logger) *RSSProvider {
	if timeout <= 0 {
		timeout = rssDefaultTimeout
	}

	return &RSSProvider{
		feedURLs: feedURLs,
		parser:   gofeed.NewParser(),
		timeout:  timeout,
		logger:   logger,
	}
}

func (p *RSSProvider) Name() string {
	return "rss"
}

// Search scans the configured feeds and returns up to count items
// mentioning the keyword. A failing feed is skipped, not fatal.
func (p *RSSProvider) Search(ctx context.Context, keyword string, count int) ([]NewsItem, error) {
	if len(p.feedURLs) == 0 {
		return nil, fmt.Errorf("%w: no rss feeds configured", apperrors.ErrExternalService)
	}

	items := make([]NewsItem, 0, count)

	for _, feedURL := range p.feedURLs {
		if len(items) >= count {
			break
		}

		feedCtx, cancel := context.WithTimeout(ctx, p.timeout)
		feed, err := p.parser.ParseURLWithContext(feedURL, feedCtx)

		cancel()

		if err != nil {
			p.logger.Warn().Err(err).Str("feed", feedURL).Msg("skipping unreachable feed")
			continue
		}

		for _, item := range feed.Items {
			if len(items) >= count {
				break
			}

			converted, err := p.validateItem(item, keyword)
			if err != nil {
				continue
			}

			items = append(items, converted)
		}
	}

	p.logger.Info().Str("keyword", keyword).Int("items", len(items)).Msg("rss search completed")

	return items, nil
}

func (p *RSSProvider) validateItem(item *gofeed.Item, keyword string) (NewsItem, error) {
	if item.Title == "" || item.Link == "" {
		return NewsItem{}, fmt.Errorf("%w: missing title or link", apperrors.ErrValidation)
	}

	if !strings.Contains(item.Title, keyword) && !strings.Contains(item.Description, keyword) {
		return NewsItem{}, fmt.Errorf("%w: keyword not mentioned", apperrors.ErrValidation)
	}

	published := item.Published
	if published == "" && item.PublishedParsed != nil {
		published = item.PublishedParsed.Format(time.RFC1123Z)
	}

	if published == "" {
		return NewsItem{}, fmt.Errorf("%w: missing publish date", apperrors.ErrValidation)
	}

	return NewsItem{
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
		PublishedAt: published,
	}, nil
}
