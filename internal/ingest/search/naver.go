package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
)

const (
	naverBaseURL        = "https://openapi.naver.com/v1/search/news.json"
	naverDefaultTimeout = 10 * time.Second
	naverClientIDHeader = "X-Naver-Client-Id"
	naverSecretHeader   = "X-Naver-Client-Secret"
	naverSortByDate     = "date"
	naverLimiterBurst   = 2
)

var errNaverBadStatus = errors.New("naver api bad status")

// NaverProvider implements Provider over the Naver News open API.
type NaverProvider struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	logger       *zerolog.Logger
}

// NaverConfig holds configuration for the Naver provider.
type NaverConfig struct {
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	RPS          float64
}

// NewNaverProvider creates a Naver News search provider.
func NewNaverProvider(cfg NaverConfig, logger *zerolog.Logger) *NaverProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = naverDefaultTimeout
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}

	return &NaverProvider{
		baseURL:      naverBaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		rateLimiter:  rate.NewLimiter(rate.Limit(rps), naverLimiterBurst),
		logger:       logger,
	}
}

func (p *NaverProvider) Name() string {
	return "naver"
}

// naverItem mirrors one entry of the Naver News API response.
type naverItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

type naverResponse struct {
	Items []naverItem `json:"items"`
}

// Search queries the Naver News API sorted by date. Items failing
// schema validation are dropped and logged, never fatal.
func (p *NaverProvider) Search(ctx context.Context, keyword string, count int) ([]NewsItem, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("naver rate limiter wait: %w", err)
	}

	reqURL := p.baseURL + "?" + url.Values{
		"query":   {keyword},
		"display": {strconv.Itoa(count)},
		"sort":    {naverSortByDate},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create naver request: %w", err)
	}

	req.Header.Set(naverClientIDHeader, p.clientID)
	req.Header.Set(naverSecretHeader, p.clientSecret)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: naver request: %w", apperrors.ErrExternalService, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read naver response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w: %d", apperrors.ErrExternalService, errNaverBadStatus, resp.StatusCode)
	}

	var parsed naverResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse naver response: %w", apperrors.ErrExternalService, err)
	}

	items := make([]NewsItem, 0, len(parsed.Items))

	for _, item := range parsed.Items {
		validated, err := p.validateItem(item)
		if err != nil {
			p.logger.Warn().Err(err).Str("title", item.Title).Msg("dropping invalid naver item")
			continue
		}

		items = append(items, validated)
	}

	p.logger.Info().Str("keyword", keyword).Int("items", len(items)).Msg("naver search completed")

	return items, nil
}

// validateItem enforces the strict item schema: non-empty title, an
// absolute http(s) original link, and a parseable publish date.
func (p *NaverProvider) validateItem(item naverItem) (NewsItem, error) {
	if item.Title == "" {
		return NewsItem{}, fmt.Errorf("%w: empty title", apperrors.ErrValidation)
	}

	link := item.OriginalLink
	if link == "" {
		link = item.Link
	}

	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewsItem{}, fmt.Errorf("%w: invalid link %q", apperrors.ErrValidation, link)
	}

	if _, err := dateparse.ParseAny(item.PubDate); err != nil {
		return NewsItem{}, fmt.Errorf("%w: invalid pubDate %q", apperrors.ErrValidation, item.PubDate)
	}

	return NewsItem{
		Title:       item.Title,
		Link:        link,
		Description: item.Description,
		PublishedAt: item.PubDate,
	}, nil
}
