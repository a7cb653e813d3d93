// Package embedding defines the embedding provider abstraction and its
// three concrete implementations (mock, remote OpenAI-compatible, local
// stub), plus decorators that add retrying, circuit breaking, bounded
// concurrency and caching on top of any Provider. Grounded on the
// teacher's pkg/sqvect/embedder.go for the interface shape and on
// hieuntg81-alfred-ai's internal/domain/embedding.go and
// internal/adapter/embedding/*.go for the provider/decorator split.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Provider is implemented by every embedding backend.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
	Dimensions() int
}

// Error is the error kind returned for embedding failures. Transient is
// true for retryable conditions (timeouts, 429, connection resets) and
// false for fatal ones (4xx other than 429, bad config).
type Error struct {
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	if e.Transient {
		return fmt.Sprintf("embedding: transient error: %v", e.Err)
	}
	return fmt.Sprintf("embedding: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err as an embedding Error with the given transience.
func NewError(transient bool, err error) *Error {
	return &Error{Transient: transient, Err: err}
}

// IsTransient reports whether err is an embedding Error marked transient.
func IsTransient(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Transient
	}
	return false
}

// Similarity returns the cosine similarity of a and b. It returns 0 if
// either vector has zero magnitude or the vectors differ in length.
func Similarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// BaseEmbedBatch is the default EmbedBatch used by providers that have no
// native batch endpoint: it calls Embed sequentially. Remote providers
// that support a real batch call should not use this helper.
func BaseEmbedBatch(ctx context.Context, p Provider, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
