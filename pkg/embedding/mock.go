package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// MockProvider produces deterministic, hash-derived embeddings. It is
// used in tests and is selected by the "mock" provider setting (the
// default provider is LocalProvider), so the rest of the system can be
// exercised without network access.
type MockProvider struct {
	dims  int
	model string
}

// NewMockProvider returns a MockProvider with the given dimensionality.
func NewMockProvider(dims int) *MockProvider {
	if dims <= 0 {
		dims = 64
	}
	return &MockProvider{dims: dims, model: "mock-hash-v1"}
}

// Embed implements Provider. The same text always yields the same
// vector, and vectors are L2-normalized so Similarity behaves sensibly.
func (p *MockProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dims)
	h := fnv.New64a()
	seed := []byte(text)
	for i := range vec {
		h.Reset()
		h.Write(seed)
		h.Write([]byte{byte(i), byte(i >> 8)})
		sum := h.Sum64()
		// Map the hash into [-1, 1].
		vec[i] = float32(int64(sum%2000001)-1000000) / 1000000.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

// EmbedBatch implements Provider.
func (p *MockProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return BaseEmbedBatch(ctx, p, texts)
}

// ModelName implements Provider.
func (p *MockProvider) ModelName() string { return p.model }

// Dimensions implements Provider.
func (p *MockProvider) Dimensions() int { return p.dims }
