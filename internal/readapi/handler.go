// Package readapi exposes processed articles over HTTP. Articles in any
// other lifecycle state are invisible to this surface.
package readapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/econbrief/news-enricher/internal/core/domain"
	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
	"github.com/econbrief/news-enricher/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Store is the read-model capability the API depends on.
type Store interface {
	ListProcessedArticles(ctx context.Context, category string, offset, limit int) ([]domain.Article, error)
	ListTodayArticles(ctx context.Context) ([]domain.Article, error)
	GetArticleDetail(ctx context.Context, articleID int64) (*storage.ArticleDetail, error)
}

// Handler serves the article read endpoints.
type Handler struct {
	store  Store
	logger *zerolog.Logger
}

// NewHandler creates the read API handler.
func NewHandler(store Store, logger *zerolog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Router returns the HTTP mux for the read API.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/articles/today", h.handleToday)
	mux.HandleFunc("GET /api/articles/category/{category}", h.handleByCategory)
	mux.HandleFunc("GET /api/articles/{id}", h.handleDetail)

	return mux
}

type articleSummary struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category,omitempty"`
}

type articleDetail struct {
	articleSummary
	Images            []string                  `json:"images"`
	Background        []domain.BackgroundItem   `json:"background_knowledge"`
	Keywords          []domain.Keyword          `json:"keywords"`
	RelatedIndicators []domain.RelatedIndicator `json:"related_statistics"`
	TimeSeries        []domain.IndicatorSeries  `json:"statistics_data"`
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	articles, err := h.store.ListTodayArticles(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, summarize(articles))
}

func (h *Handler) handleByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	offset, limit := pagination(r)

	articles, err := h.store.ListProcessedArticles(r.Context(), category, offset, limit)
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, summarize(articles))
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid article id", http.StatusBadRequest)
		return
	}

	detail, err := h.store.GetArticleDetail(r.Context(), id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			http.Error(w, "article not found", http.StatusNotFound)
			return
		}

		h.serverError(w, err)

		return
	}

	h.writeJSON(w, http.StatusOK, articleDetail{
		articleSummary:    toSummary(detail.Article),
		Images:            emptyIfNil(detail.Images),
		Background:        emptyIfNil(detail.Background),
		Keywords:          emptyIfNil(detail.Keywords),
		RelatedIndicators: emptyIfNil(detail.RelatedIndicators),
		TimeSeries:        emptyIfNil(detail.TimeSeries),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("write response")
	}
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.logger.Error().Err(err).Msg("read api request failed")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func pagination(r *http.Request) (offset, limit int) {
	limit = defaultPageSize

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = min(parsed, maxPageSize)
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	return offset, limit
}

func summarize(articles []domain.Article) []articleSummary {
	out := make([]articleSummary, 0, len(articles))
	for _, a := range articles {
		out = append(out, toSummary(a))
	}

	return out
}

func toSummary(a domain.Article) articleSummary {
	return articleSummary{
		ID:          a.ID,
		Title:       a.Title,
		URL:         a.URL,
		Description: a.Description,
		PublishedAt: a.PublishedAt,
		Category:    a.Category,
	}
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
