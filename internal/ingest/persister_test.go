package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econbrief/news-enricher/internal/core/domain"
	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
)

type fakeArticleStore struct {
	existing map[string]bool
	inserted []*domain.Article
	contents []*domain.ArticleContent
	nextID   int64
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{existing: map[string]bool{}, nextID: 1}
}

func (s *fakeArticleStore) ArticleExistsByURL(_ context.Context, url string) (bool, error) {
	return s.existing[url], nil
}

func (s *fakeArticleStore) InsertArticle(_ context.Context, article *domain.Article, content *domain.ArticleContent) (*domain.Article, error) {
	if s.existing[article.URL] {
		return nil, apperrors.ErrDuplicateURL
	}

	article.ID = s.nextID
	s.nextID++
	s.existing[article.URL] = true
	s.inserted = append(s.inserted, article)
	s.contents = append(s.contents, content)

	return article, nil
}

const validBody = "한국은행 금융통화위원회는 오늘 기준금리를 연 2.75%로 동결하기로 결정했다. 시장에서는 하반기 인하 가능성이 거론된다."

func TestCreateArticleStoresPendingArticle(t *testing.T) {
	logger := zerolog.Nop()
	store := newFakeArticleStore()
	p := NewPersister(store, &logger)

	created, err := p.CreateArticle(
		context.Background(),
		"한은, 기준금리 동결",
		"https://news.example.com/1",
		"<b>한은</b>이 금리를 동결했다",
		"2025-06-15T09:00:00Z",
		validBody,
		[]string{"https://img.example.com/main.jpg"},
	)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, "한은이 금리를 동결했다", created.Description, "description must be stripped of markup")
	assert.Equal(t, 2025, created.PublishedAt.Year())

	require.Len(t, store.contents, 1)
	assert.Equal(t, []string{"https://img.example.com/main.jpg"}, store.contents[0].Images)
}

func TestCreateArticleRejectsMissingFields(t *testing.T) {
	logger := zerolog.Nop()
	p := NewPersister(newFakeArticleStore(), &logger)

	tests := []struct {
		name  string
		title string
		url   string
		body  string
	}{
		{name: "empty title", title: "", url: "https://news.example.com/1", body: validBody},
		{name: "empty url", title: "제목", url: "", body: validBody},
		{name: "empty body", title: "제목", url: "https://news.example.com/1", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.CreateArticle(context.Background(), tt.title, tt.url, "", "2025-06-15", tt.body, nil)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
		})
	}
}

func TestCreateArticleSkipsShortBody(t *testing.T) {
	logger := zerolog.Nop()
	store := newFakeArticleStore()
	p := NewPersister(store, &logger)

	created, err := p.CreateArticle(
		context.Background(),
		"제목",
		"https://news.example.com/short",
		"",
		"2025-06-15",
		"마흔아홉 자에 못 미치는 짧은 본문",
		nil,
	)
	require.NoError(t, err, "short bodies are a silent skip, not an error")
	assert.Nil(t, created)
	assert.Empty(t, store.inserted)
}

func TestCreateArticleSkipsDuplicateURL(t *testing.T) {
	logger := zerolog.Nop()
	store := newFakeArticleStore()
	store.existing["https://news.example.com/dup"] = true
	p := NewPersister(store, &logger)

	created, err := p.CreateArticle(
		context.Background(),
		"제목",
		"https://news.example.com/dup",
		"",
		"2025-06-15",
		validBody,
		nil,
	)
	require.NoError(t, err, "duplicates are a silent skip, not an error")
	assert.Nil(t, created)
	assert.Empty(t, store.inserted)
}

func TestCreateArticleIsIdempotent(t *testing.T) {
	logger := zerolog.Nop()
	store := newFakeArticleStore()
	p := NewPersister(store, &logger)

	first, err := p.CreateArticle(context.Background(), "제목", "https://news.example.com/1", "", "2025-06-15", validBody, nil)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := p.CreateArticle(context.Background(), "제목", "https://news.example.com/1", "", "2025-06-15", validBody, nil)
	require.NoError(t, err)
	assert.Nil(t, second)

	assert.Len(t, store.inserted, 1, "re-ingesting the same URL must not create a second row")
}

func TestCreateArticleRejectsUnparsableDate(t *testing.T) {
	logger := zerolog.Nop()
	p := NewPersister(newFakeArticleStore(), &logger)

	_, err := p.CreateArticle(context.Background(), "제목", "https://news.example.com/1", "", "어제쯤", validBody, nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCreateArticleCapsImages(t *testing.T) {
	logger := zerolog.Nop()
	store := newFakeArticleStore()
	p := NewPersister(store, &logger)

	images := []string{
		"https://img.example.com/1.jpg",
		"https://img.example.com/2.jpg",
		"https://img.example.com/3.jpg",
		"https://img.example.com/4.jpg",
		"https://img.example.com/5.jpg",
		"https://img.example.com/6.jpg",
	}

	created, err := p.CreateArticle(context.Background(), "제목", "https://news.example.com/1", "", "2025-06-15", validBody, images)
	require.NoError(t, err)
	require.NotNil(t, created)

	require.Len(t, store.contents, 1)
	assert.Len(t, store.contents[0].Images, domain.MaxImagesPerArticle)
	assert.Equal(t, "https://img.example.com/1.jpg", store.contents[0].Images[0])
}

func TestCreateArticleTrimsWhitespace(t *testing.T) {
	logger := zerolog.Nop()
	store := newFakeArticleStore()
	p := NewPersister(store, &logger)

	created, err := p.CreateArticle(
		context.Background(),
		"  제목  ",
		"https://news.example.com/1",
		"",
		"2025-06-15",
		"  "+validBody+"  ",
		nil,
	)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "제목", created.Title)
	assert.False(t, strings.HasPrefix(store.contents[0].Content, " "))
}
