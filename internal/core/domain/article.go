// Package domain contains the core entities of the enrichment pipeline.
package domain

import "time"

// ArticleStatus tracks an article through the enrichment lifecycle.
// Transitions are monotonic except FAILED, which re-enters the work
// queue on the next run.
type ArticleStatus string

const (
	StatusPending    ArticleStatus = "PENDING"
	StatusProcessing ArticleStatus = "PROCESSING"
	StatusProcessed  ArticleStatus = "PROCESSED"
	StatusFailed     ArticleStatus = "FAILED"
)

// Article is a crawled news article. The URL is globally unique;
// rows are created by ingestion and mutated only by the lifecycle.
type Article struct {
	ID          int64
	Title       string
	URL         string
	Description string
	PublishedAt time.Time
	Category    string
	Status      ArticleStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ArticleContent holds the full extracted text and selected images,
// 1:1 with Article and immutable after creation. Images are ordered
// with the main image first and are capped at MaxImagesPerArticle.
type ArticleContent struct {
	ArticleID int64
	Content   string
	Images    []string
}

// MaxImagesPerArticle caps stored images per article, main image included.
const MaxImagesPerArticle = 5

// BackgroundItem is one unit of background knowledge produced by the
// language model.
type BackgroundItem struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// Keyword is an extracted key term with a reader-friendly description.
type Keyword struct {
	Term        string `json:"term"`
	Description string `json:"description"`
}

// RelatedIndicator links an article to an economic indicator with the
// model's stated reason for the relevance.
type RelatedIndicator struct {
	IndicatorID string `json:"indicator_id"`
	Reason      string `json:"reason"`
}

// Analysis is the validated structured output of the language model
// for a single article.
type Analysis struct {
	Background        []BackgroundItem   `json:"background_knowledge"`
	Keywords          []Keyword          `json:"keywords"`
	Category          string             `json:"category"`
	RelatedIndicators []RelatedIndicator `json:"related_statistics"`
}

// EnrichedArticle is created exactly once when an article transitions
// to PROCESSED. FAILED articles never have one.
type EnrichedArticle struct {
	ArticleID         int64
	Background        []BackgroundItem
	Keywords          []Keyword
	Category          string
	RelatedIndicators []RelatedIndicator
	TimeSeries        []IndicatorSeries
	CreatedAt         time.Time
}
