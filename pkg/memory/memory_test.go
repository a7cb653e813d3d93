package memory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentmemory/core/pkg/embedding"
	"github.com/agentmemory/core/pkg/entity"
	"github.com/agentmemory/core/pkg/graphstore"
	"github.com/agentmemory/core/pkg/keywordstore"
	"github.com/agentmemory/core/pkg/model"
	"github.com/agentmemory/core/pkg/vectorstore"
)

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	vectors, err := vectorstore.Open(ctx, filepath.Join(dir, "vectors.db"), nil)
	if err != nil {
		t.Fatalf("vectorstore.Open: %v", err)
	}
	keywords, err := keywordstore.Open(ctx, filepath.Join(dir, "keywords.db"), nil)
	if err != nil {
		t.Fatalf("keywordstore.Open: %v", err)
	}
	graph, err := graphstore.Open(ctx, filepath.Join(dir, "graph.db"), nil)
	if err != nil {
		t.Fatalf("graphstore.Open: %v", err)
	}
	t.Cleanup(func() {
		vectors.Close()
		keywords.Close()
		graph.Close()
	})

	if cfg.InstanceID == "" {
		cfg.InstanceID = "test-instance"
	}
	if cfg.VectorWeight == 0 && cfg.TextWeight == 0 {
		cfg.VectorWeight, cfg.TextWeight = 0.7, 0.3
	}
	cfg.Hybrid = true
	cfg.GraphEnabled = true

	provider := embedding.NewLocalProvider(128)
	extractor := entity.NewLazyExtractor(nil, nil)
	return New(cfg, provider, vectors, keywords, graph, extractor, nil)
}

func TestBasicRememberAndRecallRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})

	res, err := svc.Remember(ctx, RememberInput{Content: "Joe likes Python programming"})
	if err != nil || !res.Success {
		t.Fatalf("Remember failed: %+v err=%v", res, err)
	}

	results, err := svc.Recall(ctx, "What does Joe like?", RecallOptions{Limit: 5, MinRelevance: 0})
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(results) == 0 || results[0].Memory.ID != res.MemoryID {
		t.Fatalf("expected first result to be %s, got %+v", res.MemoryID, results)
	}
}

func TestForgetRemovesFromRecall(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})

	res, err := svc.Remember(ctx, RememberInput{Content: "Joe likes Python programming"})
	if err != nil || !res.Success {
		t.Fatalf("Remember failed: %+v err=%v", res, err)
	}
	existed, err := svc.Forget(ctx, res.MemoryID)
	if err != nil || !existed {
		t.Fatalf("Forget: existed=%v err=%v", existed, err)
	}

	results, err := svc.Recall(ctx, "Python", RecallOptions{MinRelevance: 0})
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	for _, r := range results {
		if r.Memory.ID == res.MemoryID {
			t.Fatalf("forgotten memory still present in recall: %+v", r)
		}
	}
}

func TestDedupRejectsOnAutoReject(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{AutoRejectDuplicates: true})

	first, err := svc.Remember(ctx, RememberInput{Content: "Duplicate test"})
	if err != nil || !first.Success {
		t.Fatalf("first Remember failed: %+v err=%v", first, err)
	}
	second, err := svc.Remember(ctx, RememberInput{Content: "Duplicate test"})
	if err != nil {
		t.Fatalf("second Remember errored: %v", err)
	}
	if second.Success || second.DuplicateOf != first.MemoryID {
		t.Fatalf("expected duplicate pointing at %s, got %+v", first.MemoryID, second)
	}
}

func TestDupThresholdOverridesDefaultSimilarity(t *testing.T) {
	ctx := context.Background()
	// Cosine similarity never exceeds 1.0, so a threshold of 2.0 makes
	// the similarity gate unreachable regardless of content, unlike the
	// default 0.94 threshold that would reject an exact repeat (see
	// TestDedupRejectsOnAutoReject).
	unreachable := 2.0
	svc := newTestService(t, Config{AutoRejectDuplicates: true, DupThreshold: unreachable})

	first, err := svc.Remember(ctx, RememberInput{Content: "Duplicate test"})
	if err != nil || !first.Success {
		t.Fatalf("first Remember failed: %+v err=%v", first, err)
	}
	second, err := svc.Remember(ctx, RememberInput{Content: "Duplicate test"})
	if err != nil {
		t.Fatalf("second Remember errored: %v", err)
	}
	if !second.Success {
		t.Fatalf("expected an unreachable dup_threshold override to let an exact repeat through, got %+v", second)
	}
}

func TestLazySpacyThreadsIntoExtractor(t *testing.T) {
	svcLazyDefault := newTestService(t, Config{})
	if !svcLazyDefault.extractor.Lazy {
		t.Fatalf("expected lazy mode by default (cfg.LazySpacy left nil)")
	}

	eager := false
	svcEager := newTestService(t, Config{LazySpacy: &eager})
	if svcEager.extractor.Lazy {
		t.Fatalf("expected cfg.LazySpacy=false to switch the extractor to eager mode")
	}

	lazy := true
	svcExplicitLazy := newTestService(t, Config{LazySpacy: &lazy})
	if !svcExplicitLazy.extractor.Lazy {
		t.Fatalf("expected cfg.LazySpacy=true to keep the extractor in lazy mode")
	}
}

func TestEntityRecallSurfacesGraphLinkedMemory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})

	res, err := svc.Remember(ctx, RememberInput{Content: "The auth-service uses PostgreSQL"})
	if err != nil || !res.Success {
		t.Fatalf("Remember failed: %+v err=%v", res, err)
	}

	results, err := svc.Recall(ctx, "PostgreSQL", RecallOptions{GraphExpansion: true, MinRelevance: 0})
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	found := false
	for _, r := range results {
		if r.Memory.ID == res.MemoryID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected memory linked via auth-service to be present, got %+v", results)
	}
}

func TestCorrectionChainLinksLineage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})

	orig, err := svc.Remember(ctx, RememberInput{Content: "Original"})
	if err != nil || !orig.Success {
		t.Fatalf("Remember failed: %+v err=%v", orig, err)
	}
	corrected, err := svc.Correct(ctx, orig.MemoryID, "Corrected")
	if err != nil || !corrected.Success {
		t.Fatalf("Correct failed: %+v err=%v", corrected, err)
	}

	origEntry, ok, err := svc.GetMemory(ctx, orig.MemoryID)
	if err != nil || !ok {
		t.Fatalf("GetMemory(original): ok=%v err=%v", ok, err)
	}
	if origEntry.SupersededBy != corrected.MemoryID {
		t.Fatalf("expected original.superseded_by = %s, got %s", corrected.MemoryID, origEntry.SupersededBy)
	}

	newEntry, ok, err := svc.GetMemory(ctx, corrected.MemoryID)
	if err != nil || !ok {
		t.Fatalf("GetMemory(corrected): ok=%v err=%v", ok, err)
	}
	if newEntry.Supersedes != orig.MemoryID {
		t.Fatalf("expected corrected.supersedes = %s, got %s", orig.MemoryID, newEntry.Supersedes)
	}
}

func TestBatchRememberIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{AutoRejectDuplicates: true})

	if _, err := svc.Remember(ctx, RememberInput{Content: "X"}); err != nil {
		t.Fatalf("seed Remember: %v", err)
	}

	summary := svc.RememberBatch(ctx, []RememberInput{
		{Content: "X"},
		{Content: "X"},
		{Content: "Y"},
	})
	if summary.Total != 3 || summary.Successful != 1 || summary.Failed != 2 {
		t.Fatalf("unexpected batch summary: %+v", summary)
	}
}

func TestRecallAfterFilterPassesFactlessMemory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	res, err := svc.Remember(ctx, RememberInput{Content: "hello there", CreatedAt: old})
	if err != nil || !res.Success {
		t.Fatalf("Remember: %+v err=%v", res, err)
	}

	results, err := svc.Recall(ctx, "hello", RecallOptions{
		MinRelevance: 0,
		After:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	found := false
	for _, r := range results {
		if r.Memory.ID == res.MemoryID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a fact-less memory with created_at before 'after' to pass through unfiltered, got %+v", results)
	}
}

func TestBatchRememberRejectsOutOfRangeSize(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})

	summary := svc.RememberBatch(ctx, nil)
	if summary.Total != 0 || summary.Failed != 0 || len(summary.Results) != 1 || summary.Results[0].Err == nil {
		t.Fatalf("expected a single rejection for an empty batch, got %+v", summary)
	}

	oversized := make([]RememberInput, maxBatchSize+1)
	for i := range oversized {
		oversized[i] = RememberInput{Content: "filler"}
	}
	summary = svc.RememberBatch(ctx, oversized)
	if summary.Failed != len(oversized) || len(summary.Results) != 1 || summary.Results[0].Err == nil {
		t.Fatalf("expected a single rejection for an oversized batch, got total=%d failed=%d results=%d",
			summary.Total, summary.Failed, len(summary.Results))
	}
}

func TestRecallLimitIsClamped(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	for i := 0; i < 5; i++ {
		content := "memory number " + string(rune('A'+i))
		if _, err := svc.Remember(ctx, RememberInput{Content: content}); err != nil {
			t.Fatalf("Remember: %v", err)
		}
	}
	results, err := svc.Recall(ctx, "memory", RecallOptions{Limit: 1000, MinRelevance: 0})
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(results) > 50 {
		t.Fatalf("expected recall results clamped to at most 50, got %d", len(results))
	}
}

func TestHybridMonotonicityWithZeroTextWeight(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{VectorWeight: 1, TextWeight: 0})

	if _, err := svc.Remember(ctx, RememberInput{Content: "Joe likes Python programming"}); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	falseVal := false
	hybridOff, err := svc.Recall(ctx, "Python", RecallOptions{MinRelevance: 0, Hybrid: &falseVal})
	if err != nil {
		t.Fatalf("Recall (vector-only): %v", err)
	}
	trueVal := true
	hybridOn, err := svc.Recall(ctx, "Python", RecallOptions{MinRelevance: 0, Hybrid: &trueVal})
	if err != nil {
		t.Fatalf("Recall (hybrid, text_weight=0): %v", err)
	}
	if len(hybridOff) != len(hybridOn) {
		t.Fatalf("expected same result count, got %d vs %d", len(hybridOff), len(hybridOn))
	}
	for i := range hybridOff {
		if hybridOff[i].Memory.ID != hybridOn[i].Memory.ID {
			t.Fatalf("expected identical ordering at index %d: %s vs %s", i, hybridOff[i].Memory.ID, hybridOn[i].Memory.ID)
		}
		if hybridOff[i].FinalScore != hybridOn[i].FinalScore {
			t.Fatalf("expected identical score at index %d with text_weight=0: %v vs %v", i, hybridOff[i].FinalScore, hybridOn[i].FinalScore)
		}
	}
}

func TestForgetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	res, err := svc.Remember(ctx, RememberInput{Content: "Something to forget"})
	if err != nil || !res.Success {
		t.Fatalf("Remember: %+v err=%v", res, err)
	}
	first, err := svc.Forget(ctx, res.MemoryID)
	if err != nil || !first {
		t.Fatalf("first Forget: existed=%v err=%v", first, err)
	}
	second, err := svc.Forget(ctx, res.MemoryID)
	if err != nil || second {
		t.Fatalf("second Forget: expected existed=false, got %v err=%v", second, err)
	}
}

func TestStatsReportsTotal(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	if _, err := svc.Remember(ctx, RememberInput{Content: "one"}); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if _, err := svc.Remember(ctx, RememberInput{Content: "two entirely distinct content"}); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 {
		t.Fatalf("expected 2 total memories, got %d", stats.Total)
	}
}

func TestStatsAggregatesBySourceTypeAndTag(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	if _, err := svc.Remember(ctx, RememberInput{Content: "one", Tags: []string{"work", "urgent"}}); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if _, err := svc.Remember(ctx, RememberInput{Content: "two entirely distinct content", Tags: []string{"work"}}); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.BySourceType[model.SourceUserExplicit] != 2 {
		t.Fatalf("expected 2 user_explicit memories, got %+v", stats.BySourceType)
	}
	if stats.ByTag["work"] != 2 || stats.ByTag["urgent"] != 1 {
		t.Fatalf("unexpected tag counts: %+v", stats.ByTag)
	}
}

func TestRememberPreservesConfidenceContextAndUpdatedAt(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	when := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	res, err := svc.Remember(ctx, RememberInput{
		Content:    "remember this carefully",
		Context:    "conversation-42",
		Confidence: 0.42,
		CreatedAt:  when,
	})
	if err != nil || !res.Success {
		t.Fatalf("Remember: %+v err=%v", res, err)
	}

	entry, ok, err := svc.GetMemory(ctx, res.MemoryID)
	if err != nil || !ok {
		t.Fatalf("GetMemory: ok=%v err=%v", ok, err)
	}
	if entry.Confidence != 0.42 {
		t.Fatalf("expected confidence 0.42, got %v", entry.Confidence)
	}
	if entry.Context != "conversation-42" {
		t.Fatalf("expected context to round-trip, got %q", entry.Context)
	}
	if !entry.UpdatedAt.Equal(when) {
		t.Fatalf("expected updated_at %v, got %v", when, entry.UpdatedAt)
	}
}

func TestRememberDefaultsConfidenceToOne(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	res, err := svc.Remember(ctx, RememberInput{Content: "no explicit confidence"})
	if err != nil || !res.Success {
		t.Fatalf("Remember: %+v err=%v", res, err)
	}
	entry, ok, err := svc.GetMemory(ctx, res.MemoryID)
	if err != nil || !ok {
		t.Fatalf("GetMemory: ok=%v err=%v", ok, err)
	}
	if entry.Confidence != 1.0 {
		t.Fatalf("expected default confidence 1.0, got %v", entry.Confidence)
	}
}

func TestHealthReportsOK(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	status, instanceID, count, err := svc.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if status != "ok" || instanceID != "test-instance" || count != 0 {
		t.Fatalf("unexpected health: status=%s instance=%s count=%d", status, instanceID, count)
	}
}

func TestEmptyContentIsRejected(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	res, err := svc.Remember(ctx, RememberInput{Content: "   "})
	if err != nil {
		t.Fatalf("Remember errored rather than returning Invalid: %v", err)
	}
	if res.Success {
		t.Fatalf("expected blank content to be rejected, got %+v", res)
	}
}
