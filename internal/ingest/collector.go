// Package ingest collects raw article candidates and persists validated
// articles in PENDING state for the enrichment lifecycle.
package ingest

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/econbrief/news-enricher/internal/core/domain"
	"github.com/econbrief/news-enricher/internal/ingest/fetch"
	"github.com/econbrief/news-enricher/internal/ingest/search"
	"github.com/econbrief/news-enricher/internal/platform/observability"
)

const (
	maxAuxiliaryImages = domain.MaxImagesPerArticle - 1
	maxProbedImages    = 3
)

// PageFetcher downloads one page body.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// ImageFilter decides whether an image URL is article body content.
type ImageFilter interface {
	IsContentImage(rawURL string) bool
	Probe(ctx context.Context, rawURL string) bool
}

// Candidate is a fully extracted raw article ready for validation.
type Candidate struct {
	Title  string
	Body   string
	Images []string
}

// Collector wraps a search provider and a page fetcher to produce raw
// article candidates.
type Collector struct {
	provider search.Provider
	fetcher  PageFetcher
	filter   ImageFilter
	logger   *zerolog.Logger
}

// NewCollector creates a collector over the given capability handles.
func NewCollector(provider search.Provider, fetcher PageFetcher, filter ImageFilter, logger *zerolog.Logger) *Collector {
	return &Collector{
		provider: provider,
		fetcher:  fetcher,
		filter:   filter,
		logger:   logger,
	}
}

// FetchCandidates queries the search provider for a keyword. All
// provider failures degrade to an empty result, never fatal.
func (c *Collector) FetchCandidates(ctx context.Context, keyword string, count int) []search.NewsItem {
	var items []search.NewsItem

	err := observability.TrackCall("search", func() error {
		var err error

		items, err = c.provider.Search(ctx, keyword, count)

		return err
	})
	if err != nil {
		c.logger.Error().Err(err).
			Str("provider", c.provider.Name()).
			Str("keyword", keyword).
			Msg("search provider failed, continuing with empty result")

		return nil
	}

	return items
}

// ExtractArticle downloads and extracts one article. Any failure or a
// body under the boilerplate floor yields ok=false. Selected images are
// capped at five with the main image first.
func (c *Collector) ExtractArticle(ctx context.Context, rawURL string) (*Candidate, bool) {
	var body []byte

	err := observability.TrackCall("fetch", func() error {
		var err error

		body, err = c.fetcher.Fetch(ctx, rawURL)

		return err
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("url", rawURL).Msg("page fetch failed")
		return nil, false
	}

	extracted, ok := fetch.ExtractArticle(body, rawURL)
	if !ok {
		c.logger.Debug().Str("url", rawURL).Msg("no usable title or body extracted")
		return nil, false
	}

	return &Candidate{
		Title:  extracted.Title,
		Body:   extracted.Body,
		Images: c.selectImages(ctx, extracted),
	}, true
}

// selectImages keeps the main image first when it passes the filter,
// then up to four auxiliary images in encounter order. The network
// probe runs only on the first three auxiliary candidates.
func (c *Collector) selectImages(ctx context.Context, extracted *fetch.ExtractedArticle) []string {
	var images []string

	if extracted.TopImage != "" && c.filter.IsContentImage(extracted.TopImage) {
		images = append(images, extracted.TopImage)
	}

	probed := 0

	for _, candidate := range extracted.CandidateImages {
		if len(images) >= domain.MaxImagesPerArticle || auxiliaryCount(images, extracted.TopImage) >= maxAuxiliaryImages {
			break
		}

		if candidate == extracted.TopImage || contains(images, candidate) {
			continue
		}

		if !c.filter.IsContentImage(candidate) {
			continue
		}

		if probed < maxProbedImages {
			probed++

			if !c.filter.Probe(ctx, candidate) {
				continue
			}
		}

		images = append(images, candidate)
	}

	return images
}

func auxiliaryCount(images []string, topImage string) int {
	if len(images) > 0 && images[0] == topImage {
		return len(images) - 1
	}

	return len(images)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}

	return false
}
