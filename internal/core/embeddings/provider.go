// Package embeddings provides sentence embedding clients for the
// domain-term matching path.
package embeddings

import "context"

// DefaultDimensions matches the domain_terms vector column width.
const DefaultDimensions = 1536

// Provider turns text into fixed-dimension embedding vectors.
type Provider interface {
	// EmbedBatch embeds all inputs in one request, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector width this provider produces.
	Dimensions() int
}

// Centroid computes the element-wise mean of a set of equal-length
// vectors, representing an article as one point in embedding space.
func Centroid(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	dims := len(vectors[0])
	out := make([]float32, dims)

	for _, v := range vectors {
		for i := 0; i < dims && i < len(v); i++ {
			out[i] += v[i]
		}
	}

	n := float32(len(vectors))
	for i := range out {
		out[i] /= n
	}

	return out
}
