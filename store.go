package core

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/agentmemory/core/internal/logging"
	embeddingpkg "github.com/agentmemory/core/pkg/embedding"
	"github.com/agentmemory/core/pkg/entity"
	"github.com/agentmemory/core/pkg/graphstore"
	"github.com/agentmemory/core/pkg/keywordstore"
	memorypkg "github.com/agentmemory/core/pkg/memory"
	"github.com/agentmemory/core/pkg/vectorstore"
)

// Service is the facade over the Memory Service orchestrator: the
// single type application code constructs via Open. It re-exports the
// orchestrator's request/response types so callers only need to import
// this package.
type Service struct {
	*memorypkg.Service
}

// RememberInput, RecallOptions, BatchSummary, BatchResult are
// re-exported so callers never need to import pkg/memory directly.
type (
	RememberInput = memorypkg.RememberInput
	RecallOptions = memorypkg.RecallOptions
	BatchSummary  = memorypkg.BatchSummary
	BatchResult   = memorypkg.BatchResult
)

// Option configures an Open call beyond what Config expresses,
// primarily for tests and embedders that need to substitute a concrete
// provider or logger.
type Option func(*options)

type options struct {
	embedder embeddingpkg.Provider
	logger   logging.Logger
}

// WithEmbeddingProvider overrides the provider Open would otherwise
// build from Config.Embedding.
func WithEmbeddingProvider(p embeddingpkg.Provider) Option {
	return func(o *options) { o.embedder = p }
}

// WithLogger overrides the default stderr logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open wires one concrete implementation per capability — embedding
// provider, vector store, keyword store, graph store, entity
// extractor — into a ready-to-use Service, per the dependency
// container shape: provider creation happens here in dependency order
// (embedder first, since the stores don't need it; stores next, since
// the Memory Service needs all of them constructed), and Close tears
// them down in reverse.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, apply := range opts {
		apply(o)
	}
	if o.logger == nil {
		o.logger = logging.NewStd(logging.LevelInfo)
	}

	embedder := o.embedder
	if embedder == nil {
		var err error
		embedder, err = buildEmbeddingProvider(cfg.Embedding, o.logger)
		if err != nil {
			return nil, wrapError("build embedding provider", err)
		}
	}

	if err := os.MkdirAll(cfg.DBPath, 0o755); err != nil {
		return nil, wrapError("create db directory", err)
	}
	vectors, err := vectorstore.Open(ctx, filepath.Join(cfg.DBPath, "vectors.db"), o.logger)
	if err != nil {
		return nil, wrapError("open vector store", err)
	}
	keywords, err := keywordstore.Open(ctx, filepath.Join(cfg.DBPath, "keywords.db"), o.logger)
	if err != nil {
		vectors.Close()
		return nil, wrapError("open keyword store", err)
	}
	graph, err := graphstore.Open(ctx, filepath.Join(cfg.DBPath, "graph.db"), o.logger)
	if err != nil {
		keywords.Close()
		vectors.Close()
		return nil, wrapError("open graph store", err)
	}

	extractor := entity.NewLazyExtractor(nil, nil)

	lazySpacy := cfg.Search.LazySpacy
	memCfg := memorypkg.Config{
		InstanceID:           cfg.InstanceID,
		Hybrid:               cfg.Search.Hybrid,
		VectorWeight:         cfg.Search.VectorWeight,
		TextWeight:           cfg.Search.TextWeight,
		DefaultMinRelevance:  cfg.Search.MinRelevance,
		GraphEnabled:         cfg.Search.GraphEnabled,
		AutoRejectDuplicates: cfg.Search.AutoRejectDuplicates,
		DefaultLimit:         10,
		GraphRelevanceFloor:  0.15,
		DupThreshold:         cfg.Search.DupThreshold,
		LazySpacy:            &lazySpacy,
	}

	svc := memorypkg.New(memCfg, embedder, vectors, keywords, graph, extractor, o.logger)
	return &Service{Service: svc}, nil
}

// buildEmbeddingProvider constructs the configured provider. A remote
// provider is wrapped with the retry/circuit-breaker/rate-limit
// decorators; every provider, local and mock included, is wrapped with
// the cache. Decorators apply in the order a request passes through them: cache
// first (cheapest), then rate limiting, then circuit breaking, then
// retry closest to the transport, matching the teacher pack's
// provider/decorator split.
func buildEmbeddingProvider(cfg EmbeddingConfig, logger logging.Logger) (embeddingpkg.Provider, error) {
	var base embeddingpkg.Provider
	switch cfg.Provider {
	case "", "local":
		base = embeddingpkg.NewLocalProvider(cfg.Dimensions)
	case "mock":
		base = embeddingpkg.NewMockProvider(cfg.Dimensions)
	case "remote":
		remote, err := embeddingpkg.NewRemoteProvider(embeddingpkg.Config{
			APIBase:    cfg.APIBase,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}, &http.Client{Transport: embeddingpkg.NewPooledTransport()})
		if err != nil {
			return nil, err
		}
		base = embeddingpkg.NewRetryProvider(remote, embeddingpkg.DefaultRetryConfig, logger)
		base = embeddingpkg.NewCircuitBreakerProvider(base, embeddingpkg.CircuitBreakerConfig{}, logger)
		base = embeddingpkg.NewRateLimitedProvider(base, 600, 20, 8)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	return embeddingpkg.NewCachedProvider(base, 1024), nil
}
