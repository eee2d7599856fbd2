package readapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econbrief/news-enricher/internal/core/domain"
	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
	"github.com/econbrief/news-enricher/internal/storage"
)

type fakeStore struct {
	today   []domain.Article
	listed  []domain.Article
	details map[int64]*storage.ArticleDetail

	lastCategory string
	lastOffset   int
	lastLimit    int
}

func (s *fakeStore) ListProcessedArticles(_ context.Context, category string, offset, limit int) ([]domain.Article, error) {
	s.lastCategory = category
	s.lastOffset = offset
	s.lastLimit = limit

	return s.listed, nil
}

func (s *fakeStore) ListTodayArticles(context.Context) ([]domain.Article, error) {
	return s.today, nil
}

func (s *fakeStore) GetArticleDetail(_ context.Context, articleID int64) (*storage.ArticleDetail, error) {
	detail, ok := s.details[articleID]
	if !ok {
		return nil, fmt.Errorf("%w: article %d", apperrors.ErrNotFound, articleID)
	}

	return detail, nil
}

func processedArticle(id int64) domain.Article {
	return domain.Article{
		ID:          id,
		Title:       fmt.Sprintf("기사 %d", id),
		URL:         fmt.Sprintf("https://news.example.com/%d", id),
		PublishedAt: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
		Category:    "금융",
		Status:      domain.StatusProcessed,
	}
}

func newTestHandler(store *fakeStore) *Handler {
	logger := zerolog.Nop()

	return NewHandler(store, &logger)
}

func TestHandleToday(t *testing.T) {
	store := &fakeStore{today: []domain.Article{processedArticle(1), processedArticle(2)}}
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/today", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []articleSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "기사 1", got[0].Title)
}

func TestHandleByCategory(t *testing.T) {
	store := &fakeStore{listed: []domain.Article{processedArticle(3)}}
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/category/%EA%B8%88%EC%9C%B5?limit=5&offset=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "금융", store.lastCategory)
	assert.Equal(t, 10, store.lastOffset)
	assert.Equal(t, 5, store.lastLimit)
}

func TestHandleByCategoryDefaultPagination(t *testing.T) {
	store := &fakeStore{}
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/category/finance", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, store.lastOffset)
	assert.Equal(t, defaultPageSize, store.lastLimit)
}

func TestHandleByCategoryClampsLimit(t *testing.T) {
	store := &fakeStore{}
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/category/finance?limit=5000", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxPageSize, store.lastLimit)
}

func TestHandleDetail(t *testing.T) {
	store := &fakeStore{details: map[int64]*storage.ArticleDetail{
		7: {
			Article: processedArticle(7),
			Images:  []string{"https://img.example.com/main.jpg"},
			Background: []domain.BackgroundItem{
				{Label: "기준금리란?", Content: "중앙은행의 정책 금리입니다."},
				{Label: "금통위", Content: "금리를 결정하는 위원회입니다."},
			},
			Keywords: []domain.Keyword{{Term: "기준금리", Description: "정책 금리"}},
			RelatedIndicators: []domain.RelatedIndicator{
				{IndicatorID: "base_rate", Reason: "핵심 주제"},
			},
			TimeSeries: []domain.IndicatorSeries{{IndicatorID: "base_rate", Name: "기준금리"}},
		},
	}}
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/7", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got, "background_knowledge")
	assert.Contains(t, got, "keywords")
	assert.Contains(t, got, "related_statistics")
	assert.Contains(t, got, "statistics_data")
	assert.Contains(t, got, "images")
}

func TestHandleDetailNotFound(t *testing.T) {
	h := newTestHandler(&fakeStore{details: map[int64]*storage.ArticleDetail{}})

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/404", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDetailInvalidID(t *testing.T) {
	h := newTestHandler(&fakeStore{})

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/not-a-number", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDetailEmptyEnrichmentArrays(t *testing.T) {
	store := &fakeStore{details: map[int64]*storage.ArticleDetail{
		8: {Article: processedArticle(8)},
	}}
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/8", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "null", "enrichment arrays serialize as [] rather than null")
}
