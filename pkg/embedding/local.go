package embedding

import (
	"context"
	"math"

	"github.com/agentmemory/core/internal/textutil"
)

// LocalProvider is a small in-process bag-of-words embedder: it hashes
// each normalized token into a fixed-width vector (the hashing trick),
// giving texts that share vocabulary a nonzero cosine similarity unlike
// MockProvider's pure-hash vectors. It stands in for an embedded local
// model (e.g. a quantized sentence encoder) without requiring one to be
// vendored; swapping in a real local model means implementing Provider
// with the same signature.
type LocalProvider struct {
	dims int
}

// NewLocalProvider returns a LocalProvider with the given dimensionality.
func NewLocalProvider(dims int) *LocalProvider {
	if dims <= 0 {
		dims = 256
	}
	return &LocalProvider{dims: dims}
}

// Embed implements Provider.
func (p *LocalProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dims)
	tokens := textutil.Tokenize(text)
	for _, tok := range tokens {
		idx := hashToken(tok) % uint32(p.dims)
		vec[idx] += 1.0
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
func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return BaseEmbedBatch(ctx, p, texts)
}

// ModelName implements Provider.
func (p *LocalProvider) ModelName() string { return "local-bow-hash-v1" }

// Dimensions implements Provider.
func (p *LocalProvider) Dimensions() int { return p.dims }

func hashToken(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
