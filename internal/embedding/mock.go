package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// MockProvider is a deterministic embedder for tests. It derives a
// fixed-dimension vector from the text hash so that the same text always gets
// the same embedding.
type MockProvider struct {
	dimensions int
	// Fail makes every Embed call return an error, simulating an
	// unreachable provider.
	Fail error
}

// NewMockProvider returns a provider producing deterministic embeddings of the
// given dimensionality.
func NewMockProvider(dimensions int) *MockProvider {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockProvider{dimensions: dimensions}
}

// Embed returns a deterministic unit-length embedding based on the text hash.
func (m *MockProvider) Embed(_ context.Context, text string) ([]float64, error) {
	if m.Fail != nil {
		return nil, m.Fail
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()
	vec := make([]float64, m.dimensions)
	for i := range vec {
		vec[i] = math.Sin(float64(seed)*float64(i+1))*0.1 + 0.01
	}
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum > 0 {
		norm := 1 / math.Sqrt(sum)
		for i := range vec {
			vec[i] *= norm
		}
	}
	return vec, nil
}

// Dimensions returns the embedding dimension.
func (m *MockProvider) Dimensions() int {
	return m.dimensions
}

// ModelName identifies the mock model.
func (m *MockProvider) ModelName() string {
	return "mock"
}
