package embedding

import (
	"context"
	"time"

	"github.com/agentmemory/core/internal/logging"
)

// RetryConfig controls RetryProvider's exponential backoff.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig is a small, capped backoff: enough to ride out a
// rate limit blip without turning a Recall into a multi-second stall.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 4,
	BaseDelay:   100 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

// RetryProvider wraps a Provider and retries calls that fail with a
// transient *Error, using exponential backoff capped at cfg.MaxDelay.
// Fatal errors (including non-embedding errors) are returned immediately.
type RetryProvider struct {
	inner  Provider
	cfg    RetryConfig
	logger logging.Logger
}

// NewRetryProvider wraps inner with retry behavior per cfg.
func NewRetryProvider(inner Provider, cfg RetryConfig, logger logging.Logger) *RetryProvider {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultRetryConfig
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &RetryProvider{inner: inner, cfg: cfg, logger: logger}
}

// Embed implements Provider.
func (p *RetryProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	delay := p.cfg.BaseDelay
	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		vec, err := p.inner.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
		p.logger.Warn("embedding retry", "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > p.cfg.MaxDelay {
			delay = p.cfg.MaxDelay
		}
	}
	return nil, lastErr
}

// EmbedBatch implements Provider with the same retry policy as Embed.
func (p *RetryProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	delay := p.cfg.BaseDelay
	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		vecs, err := p.inner.EmbedBatch(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
		p.logger.Warn("embedding batch retry", "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > p.cfg.MaxDelay {
			delay = p.cfg.MaxDelay
		}
	}
	return nil, lastErr
}

// ModelName implements Provider.
func (p *RetryProvider) ModelName() string { return p.inner.ModelName() }

// Dimensions implements Provider.
func (p *RetryProvider) Dimensions() int { return p.inner.Dimensions() }
