package portability

import (
	"testing"
	"time"

	"github.com/agentmemory/core/pkg/model"
)

func manifest(modelName, provider string, dims int) model.EmbeddingManifest {
	return model.EmbeddingManifest{ModelName: modelName, Provider: provider, Dimensions: dims}
}

func TestBuildBundleFiltersByTag(t *testing.T) {
	entries := []model.MemoryEntry{
		{ID: "1", Tags: []string{"work"}, CreatedAt: time.Now()},
		{ID: "2", Tags: []string{"personal"}, CreatedAt: time.Now()},
	}
	bundle := BuildBundle(entries, manifest("m", "p", 32), ExportFilter{Tags: []string{"work"}})
	if bundle.MemoryCount != 1 || bundle.Entries[0].ID != "1" {
		t.Fatalf("expected only entry 1, got %+v", bundle)
	}
}

func TestBuildBundleFiltersByDateRange(t *testing.T) {
	now := time.Now()
	entries := []model.MemoryEntry{
		{ID: "old", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "new", CreatedAt: now},
	}
	bundle := BuildBundle(entries, manifest("m", "p", 32), ExportFilter{After: now.Add(-time.Hour)})
	if bundle.MemoryCount != 1 || bundle.Entries[0].ID != "new" {
		t.Fatalf("expected only 'new' entry, got %+v", bundle)
	}
}

func TestMarshalUnmarshalRoundTrips(t *testing.T) {
	bundle := BuildBundle([]model.MemoryEntry{{ID: "1", Content: "hello"}}, manifest("m", "p", 32), ExportFilter{})
	data, err := Marshal(bundle)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.MemoryCount != 1 || got.Entries[0].Content != "hello" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestNeedsReembeddingTrueForDifferentModel(t *testing.T) {
	src := manifest("model-a", "openai", 32)
	dst := manifest("model-b", "openai", 32)
	if !NeedsReembedding(src, dst) {
		t.Fatal("expected reembedding needed for different model")
	}
}

func TestNeedsReembeddingFalseForSameModel(t *testing.T) {
	src := manifest("model-a", "openai", 32)
	dst := manifest("model-a", "openai", 32)
	if NeedsReembedding(src, dst) {
		t.Fatal("expected no reembedding needed for identical manifest")
	}
}

func TestPlanInsertsNewEntries(t *testing.T) {
	incoming := []model.MemoryEntry{{ID: "1", Content: "x"}}
	plans := Plan(incoming, map[string]model.MemoryEntry{}, manifest("m", "p", 32), manifest("m", "p", 32), ReembedKeep, ConflictSkip)
	if len(plans) != 1 || plans[0].Action != "insert" || !plans[0].ReembedOK {
		t.Fatalf("expected single insert plan with embedding kept, got %+v", plans)
	}
}

func TestPlanReembedAutoDropsOnIncompatibleManifest(t *testing.T) {
	incoming := []model.MemoryEntry{{ID: "1", Content: "x"}}
	src := manifest("model-a", "openai", 32)
	dst := manifest("model-b", "openai", 64)
	plans := Plan(incoming, map[string]model.MemoryEntry{}, src, dst, ReembedAuto, ConflictSkip)
	if plans[0].ReembedOK {
		t.Fatalf("expected embedding dropped for incompatible manifests, got %+v", plans[0])
	}
}

func TestPlanConflictSkipKeepsExisting(t *testing.T) {
	existing := map[string]model.MemoryEntry{"1": {ID: "1", Content: "old"}}
	incoming := []model.MemoryEntry{{ID: "1", Content: "new"}}
	plans := Plan(incoming, existing, manifest("m", "p", 32), manifest("m", "p", 32), ReembedKeep, ConflictSkip)
	if plans[0].Action != "skip" || plans[0].Entry.Content != "old" {
		t.Fatalf("expected skip keeping old content, got %+v", plans[0])
	}
}

func TestPlanConflictOverwriteUsesIncoming(t *testing.T) {
	existing := map[string]model.MemoryEntry{"1": {ID: "1", Content: "old"}}
	incoming := []model.MemoryEntry{{ID: "1", Content: "new"}}
	plans := Plan(incoming, existing, manifest("m", "p", 32), manifest("m", "p", 32), ReembedKeep, ConflictOverwrite)
	if plans[0].Action != "overwrite" || plans[0].Entry.Content != "new" {
		t.Fatalf("expected overwrite with new content, got %+v", plans[0])
	}
}

func TestPlanConflictMergeKeepsNewerAndUnionsTags(t *testing.T) {
	now := time.Now()
	existing := map[string]model.MemoryEntry{
		"1": {ID: "1", Content: "old", Tags: []string{"a"}, UpdatedAt: now.Add(-time.Hour)},
	}
	incoming := []model.MemoryEntry{
		{ID: "1", Content: "new", Tags: []string{"b"}, UpdatedAt: now},
	}
	plans := Plan(incoming, existing, manifest("m", "p", 32), manifest("m", "p", 32), ReembedKeep, ConflictMerge)
	if plans[0].Action != "merge" || plans[0].Entry.Content != "new" {
		t.Fatalf("expected merge keeping newer content, got %+v", plans[0])
	}
	tags := map[string]bool{}
	for _, tag := range plans[0].Entry.Tags {
		tags[tag] = true
	}
	if !tags["a"] || !tags["b"] {
		t.Fatalf("expected union of tags a and b, got %+v", plans[0].Entry.Tags)
	}
}
