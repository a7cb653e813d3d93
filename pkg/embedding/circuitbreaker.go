package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/agentmemory/core/internal/logging"
)

// CircuitBreakerConfig mirrors hieuntg81-alfred-ai's
// internal/adapter/llm/circuitbreaker.go CircuitBreakerConfig.
type CircuitBreakerConfig struct {
	MaxFailures uint32
	Timeout     time.Duration
	Interval    time.Duration
}

var defaultCBConfig = CircuitBreakerConfig{
	MaxFailures: 5,
	Timeout:     30 * time.Second,
	Interval:    60 * time.Second,
}

// CircuitBreakerProvider wraps a Provider so that repeated failures open
// the circuit, failing fast instead of piling up retries against a
// downed embedding backend. Composed on top of RetryProvider: retries
// handle individual blips, the breaker handles sustained outages.
type CircuitBreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[[]float32]
	logger  logging.Logger
}

// NewCircuitBreakerProvider wraps inner with a circuit breaker. A
// zero-valued cfg uses defaultCBConfig.
func NewCircuitBreakerProvider(inner Provider, cfg CircuitBreakerConfig, logger logging.Logger) *CircuitBreakerProvider {
	if cfg.MaxFailures == 0 {
		cfg = defaultCBConfig
	}
	if logger == nil {
		logger = logging.Nop()
	}
	cb := gobreaker.NewCircuitBreaker[[]float32](gobreaker.Settings{
		Name:        "embedding:" + inner.ModelName(),
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("embedding circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &CircuitBreakerProvider{inner: inner, breaker: cb, logger: logger}
}

// Embed implements Provider.
func (p *CircuitBreakerProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.breaker.Execute(func() ([]float32, error) {
		return p.inner.Embed(ctx, text)
	})
	if err != nil {
		return nil, translateBreakerErr(err)
	}
	return vec, nil
}

// EmbedBatch implements Provider. The breaker guards the whole batch
// call as a single unit of work.
func (p *CircuitBreakerProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	_, err := p.breaker.Execute(func() ([]float32, error) {
		vecs, err := p.inner.EmbedBatch(ctx, texts)
		out = vecs
		return nil, err
	})
	if err != nil {
		return nil, translateBreakerErr(err)
	}
	return out, nil
}

func translateBreakerErr(err error) error {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return NewError(true, fmt.Errorf("circuit open: %w", err))
	}
	return err
}

// ModelName implements Provider.
func (p *CircuitBreakerProvider) ModelName() string { return p.inner.ModelName() }

// Dimensions implements Provider.
func (p *CircuitBreakerProvider) Dimensions() int { return p.inner.Dimensions() }
