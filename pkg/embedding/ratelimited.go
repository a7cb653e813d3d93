package embedding

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a Provider with a token-bucket rate limiter
// and bounds EmbedBatch fan-out concurrency, mirroring the
// rate.NewLimiter pattern used for HTTP request throttling in
// hieuntg81-alfred-ai's internal/infra/middleware/security.go.
type RateLimitedProvider struct {
	inner       Provider
	limiter     *rate.Limiter
	concurrency int
}

// NewRateLimitedProvider wraps inner, allowing at most requestsPerMinute
// calls/minute (with the given burst) and at most concurrency in-flight
// EmbedBatch sub-calls at once.
func NewRateLimitedProvider(inner Provider, requestsPerMinute, burst, concurrency int) *RateLimitedProvider {
	if concurrency <= 0 {
		concurrency = 4
	}
	limit := rate.Limit(float64(requestsPerMinute) / 60.0)
	return &RateLimitedProvider{
		inner:       inner,
		limiter:     rate.NewLimiter(limit, burst),
		concurrency: concurrency,
	}
}

// Embed implements Provider.
func (p *RateLimitedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.Embed(ctx, text)
}

// EmbedBatch implements Provider, fanning out one Embed per text under a
// bounded worker pool so a large batch cannot monopolize the limiter.
func (p *RateLimitedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, t := range texts {
		i, t := i, t
		g.Go(func() error {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
			vec, err := p.inner.Embed(ctx, t)
			if err != nil {
				return err
			}
			out[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ModelName implements Provider.
func (p *RateLimitedProvider) ModelName() string { return p.inner.ModelName() }

// Dimensions implements Provider.
func (p *RateLimitedProvider) Dimensions() int { return p.inner.Dimensions() }
