// Package model holds the data types shared across every component of the
// memory core: the persisted MemoryEntry, its TemporalFact annotations, the
// Entity/Relationship graph primitives, and the request/response shapes of
// the Memory Service. Keeping these in a single leaf package (mirroring how
// the teacher keeps GraphNode/GraphEdge in pkg/graph and Embedding in
// pkg/core) lets every other package depend on the data model without
// depending on each other.
package model

import "time"

// SourceType classifies how a memory entry entered the store.
type SourceType string

const (
	SourceUserExplicit SourceType = "user_explicit"
	SourceAutoCapture  SourceType = "auto_capture"
	SourceCorrection   SourceType = "correction"
	SourceImport       SourceType = "import"
)

// Precision is the coarsest time unit a TemporalFact is known to.
type Precision string

const (
	PrecisionDay   Precision = "day"
	PrecisionWeek  Precision = "week"
	PrecisionMonth Precision = "month"
	PrecisionYear  Precision = "year"
)

// TemporalFact is a single resolved date reference extracted from text.
type TemporalFact struct {
	Instant   time.Time `json:"instant"`
	Precision Precision `json:"precision"`
	SpanEnd   time.Time `json:"span_end,omitempty"`
}

// Span returns the [start, end] window this fact covers, derived from
// Instant and Precision. An explicit SpanEnd, when set, overrides the
// precision-derived end; the temporal extractor never sets it.
func (f TemporalFact) Span() (start, end time.Time) {
	start = truncateToPrecision(f.Instant, f.Precision)
	if !f.SpanEnd.IsZero() {
		return start, f.SpanEnd
	}
	switch f.Precision {
	case PrecisionWeek:
		end = start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	case PrecisionMonth:
		end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case PrecisionYear:
		end = start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	default: // day
		end = start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end
}

func truncateToPrecision(t time.Time, p Precision) time.Time {
	t = t.UTC()
	switch p {
	case PrecisionWeek:
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7 // ISO: Monday=1..Sunday=7
		}
		start := t.AddDate(0, 0, -(wd - 1))
		return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	case PrecisionMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PrecisionYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// Intersects reports whether this fact's span intersects [after, before].
// A zero after/before means "unbounded" on that side.
func (f TemporalFact) Intersects(after, before time.Time) bool {
	start, end := f.Span()
	if !before.IsZero() && start.After(before) {
		return false
	}
	if !after.IsZero() && end.Before(after) {
		return false
	}
	return true
}

// MemoryEntry is the canonical persisted unit described in spec.md §3.
type MemoryEntry struct {
	ID              string         `json:"id"`
	Content         string         `json:"content"`
	Embedding       []float32      `json:"embedding"`
	SourceInstance  string         `json:"source_instance"`
	SourceType      SourceType     `json:"source_type"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Tags            []string       `json:"tags"`
	Context         string         `json:"context,omitempty"`
	Confidence      float64        `json:"confidence"`
	Supersedes      string         `json:"supersedes,omitempty"`
	SupersededBy    string         `json:"superseded_by,omitempty"`
	TemporalFacts   []TemporalFact `json:"temporal_facts,omitempty"`
}

// EntityType classifies a graph entity.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityPlace        EntityType = "place"
	EntityOrganization EntityType = "organization"
	EntityService      EntityType = "service"
	EntityTechnology   EntityType = "technology"
	EntityDate         EntityType = "date"
	EntityConcept      EntityType = "concept"
)

// Entity is a node in the graph store. Name is stored canonical-lowercase;
// DisplayName preserves the original case the extractor observed.
type Entity struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Type        EntityType `json:"entity_type"`
}

// Relationship is a directed, typed edge between two entities, recorded
// against the memory id in which it was observed.
type Relationship struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	RelationType string `json:"relation_type"`
}

// EmbeddingManifest describes the embedding model that produced a store's
// (or a bundle's) vectors, per spec.md §3/§4.9.
type EmbeddingManifest struct {
	SchemaVersion string    `json:"schema_version"`
	ModelName     string    `json:"model_name"`
	Dimensions    int       `json:"dimensions"`
	Provider      string    `json:"provider"`
	CreatedAt     time.Time `json:"created_at"`
	MemoryCount   int       `json:"memory_count"`
}

// IsCompatibleWith reports whether two manifests describe the same
// embedding space (model name and dimensions match).
func (m EmbeddingManifest) IsCompatibleWith(other EmbeddingManifest) bool {
	return m.ModelName == other.ModelName && m.Dimensions == other.Dimensions
}

// RetrievalMethod records which recall channel contributed a result.
type RetrievalMethod string

const (
	RetrievalVector RetrievalMethod = "vector"
	RetrievalHybrid RetrievalMethod = "hybrid"
	RetrievalGraph  RetrievalMethod = "graph"
)

// RecallResult is one ranked item returned by Recall.
type RecallResult struct {
	Memory          MemoryEntry     `json:"memory"`
	FinalScore      float64         `json:"final_score"`
	VectorScore     float64         `json:"vector_score"`
	TextScore       float64         `json:"text_score"`
	RetrievalMethod RetrievalMethod `json:"retrieval_method"`
}

// StoreResult is returned by Remember and Correct.
type StoreResult struct {
	Success      bool   `json:"success"`
	MemoryID     string `json:"memory_id,omitempty"`
	DuplicateOf  string `json:"duplicate_of,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ImportSummary reports the outcome of Import.
type ImportSummary struct {
	Inserted    int `json:"inserted"`
	Skipped     int `json:"skipped"`
	Overwritten int `json:"overwritten"`
	Reembedded  int `json:"reembedded"`
}

// Stats is the Stats() response.
type Stats struct {
	InstanceID    string                 `json:"instance_id"`
	Total         int                    `json:"total"`
	BySourceType  map[SourceType]int     `json:"by_source_type"`
	ByTag         map[string]int         `json:"by_tag"`
}

// PortableBundle is the JSON export/import format from spec.md §6.
type PortableBundle struct {
	SchemaVersion string            `json:"schema_version"`
	Embedding     EmbeddingManifest `json:"embedding"`
	MemoryCount   int               `json:"memory_count"`
	Entries       []MemoryEntry     `json:"entries"`
}

// BundleSchemaVersion is bumped on any breaking change to PortableBundle.
const BundleSchemaVersion = "1.0"
