package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/econbrief/news-enricher/internal/core/domain"
	"github.com/econbrief/news-enricher/internal/core/embeddings"
	apperrors "github.com/econbrief/news-enricher/internal/core/errors"
	"github.com/econbrief/news-enricher/internal/platform/observability"
)

// minSentenceLength discards fragments too short to carry meaning,
// in runes.
const minSentenceLength = 10

// DefaultTermTopK is the default number of domain terms matched per article.
const DefaultTermTopK = 4

// TermStore performs nearest-neighbor lookups over domain-term embeddings.
type TermStore interface {
	FindNearestTerms(ctx context.Context, centroid []float32, limit int) ([]domain.TermMatch, error)
}

// Matcher maps an article to its nearest domain terms: sentences are
// embedded, averaged into a centroid, and matched against the term store.
type Matcher struct {
	embedder embeddings.Provider
	store    TermStore
	topK     int
	logger   *zerolog.Logger
}

// NewMatcher creates a domain-knowledge matcher.
func NewMatcher(embedder embeddings.Provider, store TermStore, topK int, logger *zerolog.Logger) *Matcher {
	if topK <= 0 {
		topK = DefaultTermTopK
	}

	return &Matcher{embedder: embedder, store: store, topK: topK, logger: logger}
}

// Match returns the top-K domain terms for the text. Zero valid
// sentences or zero matches fail the article.
func (m *Matcher) Match(ctx context.Context, text string) ([]domain.TermMatch, error) {
	sentences := validSentences(text)
	if len(sentences) == 0 {
		return nil, apperrors.ErrNoValidSentences
	}

	var vectors [][]float32

	err := observability.TrackCall("embedding", func() error {
		var err error

		vectors, err = m.embedder.EmbedBatch(ctx, sentences)

		return err
	})
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(sentences) {
		return nil, fmt.Errorf("%w: got %d vectors for %d sentences",
			apperrors.ErrMalformedResponse, len(vectors), len(sentences))
	}

	centroid := embeddings.Centroid(vectors)

	var matches []domain.TermMatch

	err = observability.TrackCall("vector", func() error {
		var err error

		matches, err = m.store.FindNearestTerms(ctx, centroid, m.topK)

		return err
	})
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return nil, apperrors.ErrNoTermMatches
	}

	m.logger.Debug().Int("sentences", len(sentences)).Int("matches", len(matches)).Msg("domain terms matched")

	return matches, nil
}

// validSentences splits text into sentences and keeps those at or above
// the minimum length.
func validSentences(text string) []string {
	var out []string

	for _, sentence := range splitSentences(text) {
		trimmed := strings.TrimSpace(sentence)
		if len([]rune(trimmed)) >= minSentenceLength {
			out = append(out, trimmed)
		}
	}

	return out
}

// splitSentences breaks text on sentence terminators and newlines.
func splitSentences(text string) []string {
	var (
		sentences []string
		sb        strings.Builder
	)

	for _, r := range text {
		sb.WriteRune(r)

		switch r {
		case '.', '!', '?', '…', '\n':
			sentences = append(sentences, sb.String())
			sb.Reset()
		}
	}

	if sb.Len() > 0 {
		sentences = append(sentences, sb.String())
	}

	return sentences
}
