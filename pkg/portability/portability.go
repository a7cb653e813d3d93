// Package portability implements C9: exporting a store's memories to a
// self-describing JSON bundle and importing one back, with configurable
// re-embedding and conflict-resolution strategies. Grounded on
// spec.md §4.9 and on original_source's
// tests/test_embedding_portability.py for the manifest compatibility
// semantics (IsCompatibleWith is a method on model.EmbeddingManifest;
// NeedsReembedding is a function in this package built on it).
package portability

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentmemory/core/pkg/model"
)

// ReembeddingStrategy controls what Import does with a bundle entry's
// embedding vector.
type ReembeddingStrategy string

const (
	// ReembedKeep copies embeddings as-is.
	ReembedKeep ReembeddingStrategy = "keep"
	// ReembedDrop clears embeddings; the caller re-embeds asynchronously.
	ReembedDrop ReembeddingStrategy = "drop"
	// ReembedAuto keeps the embedding iff the source and target
	// manifests describe the same model and dimensionality, else drops.
	ReembedAuto ReembeddingStrategy = "auto"
)

// ConflictResolution controls how Import handles a memory id that
// already exists in the target store.
type ConflictResolution string

const (
	// ConflictSkip leaves the existing memory untouched (default).
	ConflictSkip ConflictResolution = "skip"
	// ConflictOverwrite replaces the existing memory with the imported one.
	ConflictOverwrite ConflictResolution = "overwrite"
	// ConflictMerge keeps whichever of the two has the newer UpdatedAt,
	// and unions their tag sets onto the kept record.
	ConflictMerge ConflictResolution = "merge"
)

// ExportFilter narrows which memories Export includes.
type ExportFilter struct {
	Tags   []string
	After  time.Time
	Before time.Time
}

// NeedsReembedding reports whether Plan with strategy ReembedAuto
// would drop the embedding for a memory sourced from source and bound
// for target.
func NeedsReembedding(source, target model.EmbeddingManifest) bool {
	return !source.IsCompatibleWith(target)
}

// BuildBundle assembles a PortableBundle from entries and a manifest,
// applying f. Filtering is the caller's pre-selection concern in this
// package's design (Export in the memory orchestrator calls this after
// fetching candidates from storage); BuildBundle itself only applies
// the tag/date predicate so it stays independently testable.
func BuildBundle(entries []model.MemoryEntry, manifest model.EmbeddingManifest, f ExportFilter) model.PortableBundle {
	var filtered []model.MemoryEntry
	for _, e := range entries {
		if matchesFilter(e, f) {
			filtered = append(filtered, e)
		}
	}
	manifest.MemoryCount = len(filtered)
	manifest.SchemaVersion = model.BundleSchemaVersion
	return model.PortableBundle{
		SchemaVersion: model.BundleSchemaVersion,
		Embedding:     manifest,
		MemoryCount:   len(filtered),
		Entries:       filtered,
	}
}

func matchesFilter(e model.MemoryEntry, f ExportFilter) bool {
	if len(f.Tags) > 0 {
		set := make(map[string]struct{}, len(e.Tags))
		for _, t := range e.Tags {
			set[t] = struct{}{}
		}
		for _, want := range f.Tags {
			if _, ok := set[want]; !ok {
				return false
			}
		}
	}
	if !f.After.IsZero() && e.CreatedAt.Before(f.After) {
		return false
	}
	if !f.Before.IsZero() && e.CreatedAt.After(f.Before) {
		return false
	}
	return true
}

// Marshal serializes a bundle to indented JSON.
func Marshal(bundle model.PortableBundle) ([]byte, error) {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("portability: marshal bundle: %w", err)
	}
	return data, nil
}

// Unmarshal parses a bundle from JSON.
func Unmarshal(data []byte) (model.PortableBundle, error) {
	var bundle model.PortableBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return model.PortableBundle{}, fmt.Errorf("portability: unmarshal bundle: %w", err)
	}
	return bundle, nil
}

// PlanEntry is one resolved decision for a single incoming bundle entry,
// produced by Plan and consumed by the memory orchestrator's Import.
type PlanEntry struct {
	Entry     model.MemoryEntry
	Action    string // "insert", "overwrite", "skip", "merge"
	ReembedOK bool   // false means clear the embedding before writing
}

// Plan resolves, for each incoming entry, what Import should do against
// existing (the set of memories already present, by id), given strategy
// and conflict resolution. It does not touch storage: the memory
// orchestrator executes the plan against C2/C3/C6.
func Plan(incoming []model.MemoryEntry, existing map[string]model.MemoryEntry, source, target model.EmbeddingManifest, strategy ReembeddingStrategy, conflict ConflictResolution) []PlanEntry {
	plans := make([]PlanEntry, 0, len(incoming))
	for _, e := range incoming {
		keepEmbedding := true
		switch strategy {
		case ReembedDrop:
			keepEmbedding = false
		case ReembedAuto:
			keepEmbedding = source.IsCompatibleWith(target)
		case ReembedKeep:
			keepEmbedding = true
		}

		cur, exists := existing[e.ID]
		if !exists {
			plans = append(plans, PlanEntry{Entry: e, Action: "insert", ReembedOK: keepEmbedding})
			continue
		}

		switch conflict {
		case ConflictOverwrite:
			plans = append(plans, PlanEntry{Entry: e, Action: "overwrite", ReembedOK: keepEmbedding})
		case ConflictMerge:
			merged := mergeEntries(cur, e)
			plans = append(plans, PlanEntry{Entry: merged, Action: "merge", ReembedOK: keepEmbedding})
		default: // ConflictSkip
			plans = append(plans, PlanEntry{Entry: cur, Action: "skip", ReembedOK: true})
		}
	}
	return plans
}

// mergeEntries keeps whichever of cur/incoming has the newer UpdatedAt
// as the base record, and unions both records' tags onto it.
func mergeEntries(cur, incoming model.MemoryEntry) model.MemoryEntry {
	base := cur
	if incoming.UpdatedAt.After(cur.UpdatedAt) {
		base = incoming
	}
	base.Tags = unionTags(cur.Tags, incoming.Tags)
	return base
}

func unionTags(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, t := range append(append([]string{}, a...), b...) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
