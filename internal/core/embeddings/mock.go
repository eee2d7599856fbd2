package embeddings

import (
	"context"
	"hash/fnv"
)

// MockProvider generates deterministic embeddings from an FNV hash of
// the input text. Useful for tests and offline runs.
type MockProvider struct {
	dimensions int
}

// NewMockProvider creates a mock provider with default dimensions.
func NewMockProvider() *MockProvider {
	return &MockProvider{dimensions: DefaultDimensions}
}

// NewMockProviderWithDimensions creates a mock provider with custom dimensions.
func NewMockProviderWithDimensions(dims int) *MockProvider {
	return &MockProvider{dimensions: dims}
}

func (p *MockProvider) Dimensions() int {
	return p.dimensions
}

func (p *MockProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = p.embed(text)
	}

	return out, nil
}

// LCG constants for deterministic pseudo-random vector generation.
const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
	seedShift     = 33
	floatScale    = 0x40000000
)

func (p *MockProvider) embed(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	state := h.Sum64()

	vec := make([]float32, p.dimensions)
	for i := range vec {
		state = state*lcgMultiplier + lcgIncrement
		// Map the high bits to [-1, 1).
		vec[i] = float32(int32(state>>seedShift)) / float32(floatScale)
	}

	return vec
}
