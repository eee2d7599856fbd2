package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econbrief/news-enricher/internal/core/domain"
	"github.com/econbrief/news-enricher/internal/ingest/fetch"
	"github.com/econbrief/news-enricher/internal/ingest/search"
)

type fakeProvider struct {
	items []search.NewsItem
	err   error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Search(context.Context, string, int) ([]search.NewsItem, error) {
	return p.items, p.err
}

type fakeFetcher struct {
	body []byte
	err  error
}

func (f *fakeFetcher) Fetch(context.Context, string) ([]byte, error) {
	return f.body, f.err
}

// passAllFilter accepts every URL and records probe calls.
type passAllFilter struct {
	probeCalls []string
	probeFail  map[string]bool
	reject     map[string]bool
}

func (f *passAllFilter) IsContentImage(rawURL string) bool {
	return !f.reject[rawURL]
}

func (f *passAllFilter) Probe(_ context.Context, rawURL string) bool {
	f.probeCalls = append(f.probeCalls, rawURL)

	return !f.probeFail[rawURL]
}

func TestFetchCandidatesSwallowsProviderErrors(t *testing.T) {
	logger := zerolog.Nop()
	c := NewCollector(&fakeProvider{err: errors.New("api quota exceeded")}, &fakeFetcher{}, &passAllFilter{}, &logger)

	items := c.FetchCandidates(context.Background(), "금리", 5)
	assert.Empty(t, items)
}

func TestFetchCandidatesReturnsItems(t *testing.T) {
	logger := zerolog.Nop()
	provider := &fakeProvider{items: []search.NewsItem{
		{Title: "기사", Link: "https://news.example.com/1", PublishedAt: "2025-06-15"},
	}}
	c := NewCollector(provider, &fakeFetcher{}, &passAllFilter{}, &logger)

	items := c.FetchCandidates(context.Background(), "금리", 5)
	require.Len(t, items, 1)
	assert.Equal(t, "https://news.example.com/1", items[0].Link)
}

func TestExtractArticleFetchFailure(t *testing.T) {
	logger := zerolog.Nop()
	c := NewCollector(&fakeProvider{}, &fakeFetcher{err: errors.New("timeout")}, &passAllFilter{}, &logger)

	_, ok := c.ExtractArticle(context.Background(), "https://news.example.com/1")
	assert.False(t, ok)
}

func TestSelectImagesMainImageFirst(t *testing.T) {
	logger := zerolog.Nop()
	filter := &passAllFilter{reject: map[string]bool{}, probeFail: map[string]bool{}}
	c := NewCollector(&fakeProvider{}, &fakeFetcher{}, filter, &logger)

	extracted := &fetch.ExtractedArticle{
		TopImage: "https://img.example.com/main.jpg",
		CandidateImages: []string{
			"https://img.example.com/a.jpg",
			"https://img.example.com/b.jpg",
		},
	}

	images := c.selectImages(context.Background(), extracted)
	require.NotEmpty(t, images)
	assert.Equal(t, "https://img.example.com/main.jpg", images[0])
	assert.Equal(t, []string{
		"https://img.example.com/main.jpg",
		"https://img.example.com/a.jpg",
		"https://img.example.com/b.jpg",
	}, images)
}

func TestSelectImagesCapsAtFive(t *testing.T) {
	logger := zerolog.Nop()
	filter := &passAllFilter{reject: map[string]bool{}, probeFail: map[string]bool{}}
	c := NewCollector(&fakeProvider{}, &fakeFetcher{}, filter, &logger)

	extracted := &fetch.ExtractedArticle{
		TopImage: "https://img.example.com/main.jpg",
		CandidateImages: []string{
			"https://img.example.com/1.jpg",
			"https://img.example.com/2.jpg",
			"https://img.example.com/3.jpg",
			"https://img.example.com/4.jpg",
			"https://img.example.com/5.jpg",
			"https://img.example.com/6.jpg",
		},
	}

	images := c.selectImages(context.Background(), extracted)
	assert.Len(t, images, domain.MaxImagesPerArticle)
	assert.Equal(t, "https://img.example.com/main.jpg", images[0])
}

func TestSelectImagesProbesOnlyFirstThreeAuxiliary(t *testing.T) {
	logger := zerolog.Nop()
	filter := &passAllFilter{reject: map[string]bool{}, probeFail: map[string]bool{}}
	c := NewCollector(&fakeProvider{}, &fakeFetcher{}, filter, &logger)

	extracted := &fetch.ExtractedArticle{
		CandidateImages: []string{
			"https://img.example.com/1.jpg",
			"https://img.example.com/2.jpg",
			"https://img.example.com/3.jpg",
			"https://img.example.com/4.jpg",
		},
	}

	images := c.selectImages(context.Background(), extracted)
	assert.Len(t, images, 4)
	assert.Len(t, filter.probeCalls, 3, "only the first three auxiliary candidates get the network probe")
}

func TestSelectImagesDropsFilteredMainImage(t *testing.T) {
	logger := zerolog.Nop()
	filter := &passAllFilter{
		reject:    map[string]bool{"https://img.example.com/banner-ad-300x50.png": true},
		probeFail: map[string]bool{},
	}
	c := NewCollector(&fakeProvider{}, &fakeFetcher{}, filter, &logger)

	extracted := &fetch.ExtractedArticle{
		TopImage:        "https://img.example.com/banner-ad-300x50.png",
		CandidateImages: []string{"https://img.example.com/photo.jpg"},
	}

	images := c.selectImages(context.Background(), extracted)
	assert.Equal(t, []string{"https://img.example.com/photo.jpg"}, images)
}

func TestSelectImagesSkipsProbeFailures(t *testing.T) {
	logger := zerolog.Nop()
	filter := &passAllFilter{
		reject:    map[string]bool{},
		probeFail: map[string]bool{"https://img.example.com/tiny.jpg": true},
	}
	c := NewCollector(&fakeProvider{}, &fakeFetcher{}, filter, &logger)

	extracted := &fetch.ExtractedArticle{
		CandidateImages: []string{
			"https://img.example.com/tiny.jpg",
			"https://img.example.com/photo.jpg",
		},
	}

	images := c.selectImages(context.Background(), extracted)
	assert.Equal(t, []string{"https://img.example.com/photo.jpg"}, images)
}

func TestSelectImagesDeduplicatesTopImage(t *testing.T) {
	logger := zerolog.Nop()
	filter := &passAllFilter{reject: map[string]bool{}, probeFail: map[string]bool{}}
	c := NewCollector(&fakeProvider{}, &fakeFetcher{}, filter, &logger)

	extracted := &fetch.ExtractedArticle{
		TopImage: "https://img.example.com/main.jpg",
		CandidateImages: []string{
			"https://img.example.com/main.jpg",
			"https://img.example.com/a.jpg",
		},
	}

	images := c.selectImages(context.Background(), extracted)
	assert.Equal(t, []string{
		"https://img.example.com/main.jpg",
		"https://img.example.com/a.jpg",
	}, images)
}
