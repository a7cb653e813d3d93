package entity

import "github.com/agentmemory/core/pkg/model"

// HybridExtractor composes FastExtractor and AccurateExtractor, running
// both and deduplicating their combined output case-insensitively by
// (name, type).
type HybridExtractor struct {
	fast     Extractor
	accurate Extractor
}

// NewHybridExtractor returns a HybridExtractor over the given fast and
// accurate extractors.
func NewHybridExtractor(fast, accurate Extractor) *HybridExtractor {
	return &HybridExtractor{fast: fast, accurate: accurate}
}

// Extract implements Extractor.
func (h *HybridExtractor) Extract(text string) ([]model.Entity, []model.Relationship) {
	fastEntities, fastRels := h.fast.Extract(text)
	accEntities, accRels := h.accurate.Extract(text)
	entities := dedupeEntities(append(fastEntities, accEntities...))
	rels := dedupeRelationships(append(fastRels, accRels...))
	return entities, rels
}

// LazyExtractor uses the fast strategy for ingest-time extraction and
// the accurate strategy for (small) query-time extraction, per
// spec.md §4.5: lazy is the default, keeping ingest cheap while recall
// stays precise. Setting Lazy to false switches to eager mode, running
// the accurate strategy at ingest too (search.lazy_spacy=false).
type LazyExtractor struct {
	Fast     Extractor
	Accurate Extractor
	Lazy     bool
}

// NewLazyExtractor returns a LazyExtractor in lazy mode. fast and
// accurate default to FastExtractor/AccurateExtractor when nil.
func NewLazyExtractor(fast, accurate Extractor) *LazyExtractor {
	if fast == nil {
		fast = NewFastExtractor()
	}
	if accurate == nil {
		accurate = NewAccurateExtractor()
	}
	return &LazyExtractor{Fast: fast, Accurate: accurate, Lazy: true}
}

// ExtractIngest runs the fast strategy in lazy mode, or the accurate
// strategy in eager mode, used when indexing a new memory.
func (l *LazyExtractor) ExtractIngest(text string) ([]model.Entity, []model.Relationship) {
	if !l.Lazy {
		return l.Accurate.Extract(text)
	}
	return l.Fast.Extract(text)
}

// ExtractQuery runs the accurate strategy, used for graph expansion
// during Recall.
func (l *LazyExtractor) ExtractQuery(text string) ([]model.Entity, []model.Relationship) {
	return l.Accurate.Extract(text)
}
