package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/agentmemory/core/pkg/dedup"
)

// EmbeddingConfig selects and configures the embedding provider.
// Provider is one of "mock", "local", "remote".
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIBase    string `yaml:"api_base"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
}

// SearchConfig tunes Recall's default behavior.
type SearchConfig struct {
	Hybrid               bool    `yaml:"hybrid"`
	VectorWeight         float64 `yaml:"vector_weight"`
	TextWeight           float64 `yaml:"text_weight"`
	LazySpacy            bool    `yaml:"lazy_spacy"`
	GraphEnabled         bool    `yaml:"graph_enabled"`
	DupThreshold         float64 `yaml:"dup_threshold"`
	AutoRejectDuplicates bool    `yaml:"auto_reject_duplicates"`
	MinRelevance         float64 `yaml:"min_relevance"`
}

// Config is the top-level configuration recognized by Open and
// LoadConfig, matching the environment/config surface described for
// this system: instance_id, db_path, embedding.*, search.*.
type Config struct {
	InstanceID string          `yaml:"instance_id"`
	DBPath     string          `yaml:"db_path"`
	Embedding  EmbeddingConfig `yaml:"embedding"`
	Search     SearchConfig    `yaml:"search"`
}

// DefaultConfig returns a Config with sensible defaults for a single
// on-disk directory at dbPath, using the local bag-of-words provider
// (no network dependency) and hybrid search enabled.
func DefaultConfig(dbPath string) Config {
	return Config{
		DBPath: dbPath,
		Embedding: EmbeddingConfig{
			Provider:   "local",
			Model:      "local-bow-hash-v1",
			Dimensions: 256,
		},
		Search: SearchConfig{
			Hybrid:               true,
			VectorWeight:         0.7,
			TextWeight:           0.3,
			LazySpacy:            true,
			GraphEnabled:         true,
			DupThreshold:         dedup.DefaultConfig.SimilarityThreshold,
			AutoRejectDuplicates: true,
			MinRelevance:         0.3,
		},
	}
}

// Validate checks Config for the preconditions Open relies on.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidContent)
	}
	switch c.Embedding.Provider {
	case "mock", "local", "remote", "":
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidContent, c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("%w: embedding.dimensions must be non-negative", ErrInvalidContent)
	}
	return nil
}

// LoadConfig reads and parses a YAML configuration file, overlaying it
// onto DefaultConfig("") so unset fields keep sensible defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, wrapError("load config", err)
	}
	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, wrapError("parse config", err)
	}
	return cfg, nil
}
