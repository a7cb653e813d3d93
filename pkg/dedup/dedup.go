// Package dedup implements C7: nearest-neighbor duplicate detection
// combining cosine similarity with trigram-Jaccard content overlap.
// Grounded on spec.md §4.7 and on internal/textutil for the trigram
// machinery; the nearest-neighbor lookup itself is delegated to
// whatever vectorstore.Store the caller wires in, since C7 is a pure
// policy layer over C2's Search.
package dedup

import (
	"context"

	"github.com/agentmemory/core/internal/textutil"
	"github.com/agentmemory/core/pkg/embedding"
	"github.com/agentmemory/core/pkg/vectorstore"
)

// Config controls the duplicate-detection thresholds and policy.
type Config struct {
	// SimilarityThreshold is the minimum cosine similarity to the
	// nearest neighbor for a candidate to be considered a possible
	// duplicate. Default 0.94.
	SimilarityThreshold float64
	// TrigramThreshold is the minimum Jaccard-on-trigrams similarity
	// required (when content isn't an exact normalized match) to
	// confirm the duplicate. Default 0.85.
	TrigramThreshold float64
	// AutoReject, when true, makes Check return a Duplicate verdict
	// that Remember must fail on; when false, Remember stores anyway
	// and reports duplicate_of as advisory.
	AutoReject bool
}

// DefaultConfig matches spec.md §4.7's stated defaults.
var DefaultConfig = Config{
	SimilarityThreshold: 0.94,
	TrigramThreshold:    0.85,
	AutoReject:          true,
}

// Verdict is the outcome of a Check call.
type Verdict struct {
	IsDuplicate bool
	OriginalID  string
}

// Checker detects near-duplicate content against a vector store.
type Checker struct {
	store *vectorstore.Store
	cfg   Config
}

// NewChecker returns a Checker backed by store using cfg.
func NewChecker(store *vectorstore.Store, cfg Config) *Checker {
	if cfg.SimilarityThreshold == 0 && cfg.TrigramThreshold == 0 {
		cfg = DefaultConfig
	}
	return &Checker{store: store, cfg: cfg}
}

// Check looks up the single nearest neighbor of (content, vec) in the
// store and reports whether it counts as a duplicate per spec.md §4.7:
// cosine similarity at or above the threshold AND (exact normalized
// content match OR trigram-Jaccard at or above the trigram threshold).
func (c *Checker) Check(ctx context.Context, content string, vec []float32) (Verdict, error) {
	matches, err := c.store.Search(ctx, vec, 1, vectorstore.Filters{})
	if err != nil {
		return Verdict{}, err
	}
	if len(matches) == 0 {
		return Verdict{}, nil
	}

	best := matches[0]
	if embedding.Similarity(vec, best.Record.Vector) < c.cfg.SimilarityThreshold {
		return Verdict{}, nil
	}

	normA := textutil.Normalize(content)
	normB := textutil.Normalize(best.Record.Content)
	exactMatch := normA == normB
	trigramMatch := textutil.JaccardTrigram(content, best.Record.Content) >= c.cfg.TrigramThreshold

	if !exactMatch && !trigramMatch {
		return Verdict{}, nil
	}
	return Verdict{IsDuplicate: true, OriginalID: best.Record.ID}, nil
}
