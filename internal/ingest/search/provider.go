// Package search provides news search providers for article discovery.
package search

import "context"

// NewsItem is one raw search result. PublishedAt is kept as the
// provider's raw date string; ingestion parses and validates it.
type NewsItem struct {
	Title       string
	Link        string
	Description string
	PublishedAt string
}

// Provider finds recent news items for a keyword. Implementations
// validate each item against a strict schema and drop invalid ones.
type Provider interface {
	Name() string
	Search(ctx context.Context, keyword string, count int) ([]NewsItem, error)
}
