// Package memory implements C8, the Memory Service orchestrator that
// composes the embedding provider, vector store, keyword store, graph
// store, deduplicator and entity extractor into Remember/Recall/
// Correct/Forget/Stats/Export/Import/Health. Grounded on the teacher's
// pkg/core/store.go for the "dependency container wiring one concrete
// choice per capability, with teardown in reverse construction order"
// shape, generalized from the teacher's single-index memory model to
// the multi-store best-effort-transaction design of spec.md §4.8/§5.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentmemory/core/internal/logging"
	"github.com/agentmemory/core/pkg/dedup"
	"github.com/agentmemory/core/pkg/embedding"
	"github.com/agentmemory/core/pkg/entity"
	"github.com/agentmemory/core/pkg/graphstore"
	"github.com/agentmemory/core/pkg/keywordstore"
	"github.com/agentmemory/core/pkg/model"
	"github.com/agentmemory/core/pkg/portability"
	"github.com/agentmemory/core/pkg/temporal"
	"github.com/agentmemory/core/pkg/vectorstore"
)

// Config tunes the orchestrator's default policy. Per-call Recall
// options override these where stated.
type Config struct {
	InstanceID           string
	Hybrid               bool
	VectorWeight         float64
	TextWeight           float64
	DefaultLimit         int
	DefaultMinRelevance  float64
	GraphEnabled         bool
	AutoRejectDuplicates bool
	GraphRelevanceFloor  float64
	// DupThreshold overrides dedup.DefaultConfig.SimilarityThreshold
	// when nonzero (search.dup_threshold).
	DupThreshold float64
	// LazySpacy selects lazy (fast-ingest/accurate-query, the default)
	// vs. eager (accurate at both stages) entity extraction. nil keeps
	// the default lazy mode; non-nil is an explicit override
	// (search.lazy_spacy).
	LazySpacy *bool
}

// DefaultConfig matches spec.md §4.8's stated defaults.
var DefaultConfig = Config{
	Hybrid:               true,
	VectorWeight:         0.7,
	TextWeight:           0.3,
	DefaultLimit:         10,
	DefaultMinRelevance:  0.3,
	GraphEnabled:         false,
	AutoRejectDuplicates: true,
	GraphRelevanceFloor:  0.15,
}

// Service is the Memory Service: a value composed of one instance of
// each capability, per spec.md §9's dependency-container note. There is
// no package-level mutable state; every Service is independently owned.
type Service struct {
	instanceID string
	cfg        Config
	embedder   embedding.Provider
	vectors    *vectorstore.Store
	keywords   *keywordstore.Store
	graph      *graphstore.Store
	dedupe     *dedup.Checker
	extractor  *entity.LazyExtractor
	logger     logging.Logger

	// ingestMu serializes C7-then-C2 insertion per spec.md §5's
	// "per-store ingest lock" so two concurrent Remembers of identical
	// content cannot both pass the duplicate check.
	ingestMu sync.Mutex

	// lineage tracks supersedes/superseded_by links. C2 (vectorstore)
	// is a pure embedding index with no room for a lineage column, so
	// Correct's bookkeeping lives here instead of reaching into C2's
	// schema for a concern it doesn't own.
	lineageMu    sync.Mutex
	supersededBy map[string]string // original id -> new id
	supersedes   map[string]string // new id -> original id
}

// New builds a Service from already-open stores. Service.Close tears
// them down in reverse construction order.
func New(cfg Config, embedder embedding.Provider, vectors *vectorstore.Store, keywords *keywordstore.Store, graph *graphstore.Store, extractor *entity.LazyExtractor, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.VectorWeight == 0 && cfg.TextWeight == 0 {
		cfg = mergeDefaults(cfg)
	}
	if extractor == nil {
		extractor = entity.NewLazyExtractor(nil, nil)
	}
	if cfg.LazySpacy != nil {
		extractor.Lazy = *cfg.LazySpacy
	}

	dedupCfg := dedup.DefaultConfig
	if cfg.DupThreshold > 0 {
		dedupCfg.SimilarityThreshold = cfg.DupThreshold
	}

	return &Service{
		instanceID: cfg.InstanceID,
		cfg:        cfg,
		embedder:   embedder,
		vectors:    vectors,
		keywords:   keywords,
		graph:      graph,
		dedupe:     dedup.NewChecker(vectors, dedupCfg),
		extractor:  extractor,
		logger:     logger,
	}
}

func mergeDefaults(cfg Config) Config {
	d := DefaultConfig
	if cfg.InstanceID != "" {
		d.InstanceID = cfg.InstanceID
	}
	d.AutoRejectDuplicates = cfg.AutoRejectDuplicates
	d.GraphEnabled = cfg.GraphEnabled
	d.DupThreshold = cfg.DupThreshold
	d.LazySpacy = cfg.LazySpacy
	return d
}

// Close tears every store down. Order does not matter for correctness
// (each store owns an independent handle) but reverse-construction
// order is kept for symmetry with how the stores were opened.
func (s *Service) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.graph != nil {
		record(s.graph.Close())
	}
	if s.keywords != nil {
		record(s.keywords.Close())
	}
	if s.vectors != nil {
		record(s.vectors.Close())
	}
	return firstErr
}

// RememberInput is Remember's request shape per spec.md §4.8.
type RememberInput struct {
	Content    string
	SourceType model.SourceType
	Context    string
	Tags       []string
	Confidence float64
	CreatedAt  time.Time
}

// Remember validates, embeds, dedup-checks, extracts temporal facts,
// and persists a new memory across C2/C3/C6 as a best-effort
// transaction: failure after the C2 write triggers compensating
// deletes on the steps already applied.
func (s *Service) Remember(ctx context.Context, in RememberInput) (model.StoreResult, error) {
	content := trimContent(in.Content)
	if content == "" {
		return model.StoreResult{Success: false, Error: "invalid: content must not be blank"}, nil
	}

	vec, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return model.StoreResult{Success: false, Error: err.Error()}, err
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	verdict, err := s.dedupe.Check(ctx, content, vec)
	if err != nil {
		return model.StoreResult{Success: false, Error: err.Error()}, err
	}
	if verdict.IsDuplicate && s.cfg.AutoRejectDuplicates {
		return model.StoreResult{Success: false, DuplicateOf: verdict.OriginalID}, nil
	}

	now := in.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	sourceType := in.SourceType
	if sourceType == "" {
		sourceType = model.SourceUserExplicit
	}
	confidence := in.Confidence
	if confidence == 0 {
		confidence = 1.0
	}

	entry := model.MemoryEntry{
		ID:             uuid.NewString(),
		Content:        content,
		Embedding:      vec,
		SourceInstance: s.instanceID,
		SourceType:     sourceType,
		CreatedAt:      now,
		UpdatedAt:      now,
		Tags:           in.Tags,
		Context:        in.Context,
		Confidence:     confidence,
		TemporalFacts:  temporal.Extract(content, now),
	}

	if err := s.persist(ctx, entry); err != nil {
		return model.StoreResult{Success: false, Error: err.Error()}, err
	}

	result := model.StoreResult{Success: true, MemoryID: entry.ID}
	if verdict.IsDuplicate {
		result.DuplicateOf = verdict.OriginalID
	}
	return result, nil
}

// persist writes entry to C2, then C3, then C6, compensating with
// deletes on the stores already written if a later step fails.
func (s *Service) persist(ctx context.Context, entry model.MemoryEntry) error {
	if err := s.vectors.Store(ctx, vectorstore.Record{
		ID:             entry.ID,
		Content:        entry.Content,
		Vector:         entry.Embedding,
		Tags:           entry.Tags,
		SourceInstance: entry.SourceInstance,
		SourceType:     string(entry.SourceType),
		CreatedAt:      entry.CreatedAt,
		UpdatedAt:      entry.UpdatedAt,
		Context:        entry.Context,
		Confidence:     entry.Confidence,
	}); err != nil {
		return fmt.Errorf("memory: vector store: %w", err)
	}

	if s.keywords != nil {
		if err := s.keywords.Index(ctx, entry.ID, entry.Content, entry.Tags); err != nil {
			s.compensate(ctx, entry.ID, false, false)
			return fmt.Errorf("memory: keyword index: %w", err)
		}
	}

	if s.graph != nil && s.cfg.GraphEnabled {
		entities, rels := s.extractor.ExtractIngest(entry.Content)
		for _, e := range entities {
			if err := s.graph.AddEntity(ctx, e, entry.ID); err != nil {
				s.compensate(ctx, entry.ID, true, true)
				return fmt.Errorf("memory: graph add entity: %w", err)
			}
		}
		for _, r := range rels {
			if err := s.graph.AddRelationship(ctx, r, entry.ID); err != nil {
				s.compensate(ctx, entry.ID, true, true)
				return fmt.Errorf("memory: graph add relationship: %w", err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		s.compensate(ctx, entry.ID, true, true)
		return fmt.Errorf("memory: cancelled: %w", err)
	}
	return nil
}

// compensate undoes the C2 (and, if keywordDone, C3; if graphDone, any
// C6 association rows) writes for id after a later persistence step
// failed. Compensation errors are
// logged, never returned, so they don't mask the original failure.
func (s *Service) compensate(ctx context.Context, id string, keywordDone, graphDone bool) {
	if keywordDone && s.keywords != nil {
		if err := s.keywords.Delete(ctx, id); err != nil {
			s.logger.Error("compensation: keyword delete failed", "id", id, "error", err)
		}
	}
	if graphDone && s.graph != nil {
		if err := s.graph.DeleteMemory(ctx, id); err != nil {
			s.logger.Error("compensation: graph delete failed", "id", id, "error", err)
		}
	}
	if err := s.vectors.Delete(ctx, id); err != nil {
		s.logger.Error("compensation: vector delete failed", "id", id, "error", err)
	}
}

func trimContent(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// BatchResult is one item's outcome within RememberBatch.
type BatchResult struct {
	Result model.StoreResult
	Err    error
}

// BatchSummary is RememberBatch's return shape per spec.md §6.
type BatchSummary struct {
	Total      int
	Successful int
	Failed     int
	Results    []BatchResult
}

const (
	minBatchSize = 1
	maxBatchSize = 1000
)

// RememberBatch processes each input independently: one item's failure
// never fails the batch. A batch outside [minBatchSize, maxBatchSize]
// is rejected wholesale rather than partially processed.
func (s *Service) RememberBatch(ctx context.Context, inputs []RememberInput) BatchSummary {
	if len(inputs) < minBatchSize || len(inputs) > maxBatchSize {
		err := fmt.Errorf("batch size %d out of range [%d, %d]", len(inputs), minBatchSize, maxBatchSize)
		return BatchSummary{
			Total:   len(inputs),
			Failed:  len(inputs),
			Results: []BatchResult{{Err: err}},
		}
	}
	summary := BatchSummary{Total: len(inputs), Results: make([]BatchResult, len(inputs))}
	for i, in := range inputs {
		res, err := s.Remember(ctx, in)
		summary.Results[i] = BatchResult{Result: res, Err: err}
		if res.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	return summary
}

// GetMemory fetches a single memory by id.
func (s *Service) GetMemory(ctx context.Context, id string) (model.MemoryEntry, bool, error) {
	rec, ok, err := s.vectors.Get(ctx, id)
	if err != nil || !ok {
		return model.MemoryEntry{}, ok, err
	}
	entry := recordToEntry(rec)
	if next, ok := s.SupersededBy(id); ok {
		entry.SupersededBy = next
	}
	if prev, ok := s.Supersedes(id); ok {
		entry.Supersedes = prev
	}
	return entry, true, nil
}

// Forget deletes id from every store. Idempotent: forgetting an id
// that doesn't exist returns existed=false and a nil error.
func (s *Service) Forget(ctx context.Context, id string) (existed bool, err error) {
	_, existed, err = s.vectors.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if err := s.vectors.Delete(ctx, id); err != nil {
		return existed, fmt.Errorf("memory: forget vector: %w", err)
	}
	if s.keywords != nil {
		if err := s.keywords.Delete(ctx, id); err != nil {
			return existed, fmt.Errorf("memory: forget keyword: %w", err)
		}
	}
	if s.graph != nil {
		if err := s.graph.DeleteMemory(ctx, id); err != nil {
			return existed, fmt.Errorf("memory: forget graph: %w", err)
		}
	}
	return existed, nil
}

// Correct stores corrected content as a new memory and atomically
// links the supersession chain.
func (s *Service) Correct(ctx context.Context, originalID, correctedContent string) (model.StoreResult, error) {
	original, ok, err := s.GetMemory(ctx, originalID)
	if err != nil {
		return model.StoreResult{Success: false, Error: err.Error()}, err
	}
	if !ok {
		return model.StoreResult{Success: false, Error: fmt.Sprintf("not found: %s", originalID)}, nil
	}

	result, err := s.Remember(ctx, RememberInput{
		Content:    correctedContent,
		SourceType: model.SourceCorrection,
		Tags:       original.Tags,
	})
	if err != nil || !result.Success {
		return result, err
	}

	if err := s.setLineage(ctx, originalID, result.MemoryID); err != nil {
		return result, err
	}
	return result, nil
}

// setLineage records new.supersedes = original and
// original.superseded_by = new.
func (s *Service) setLineage(ctx context.Context, originalID, newID string) error {
	s.lineageMu.Lock()
	defer s.lineageMu.Unlock()
	if s.supersededBy == nil {
		s.supersededBy = make(map[string]string)
		s.supersedes = make(map[string]string)
	}
	s.supersededBy[originalID] = newID
	s.supersedes[newID] = originalID
	return nil
}

// SupersededBy returns the id that superseded id, if any.
func (s *Service) SupersededBy(id string) (string, bool) {
	s.lineageMu.Lock()
	defer s.lineageMu.Unlock()
	next, ok := s.supersededBy[id]
	return next, ok
}

// Supersedes returns the id that id corrected, if any.
func (s *Service) Supersedes(id string) (string, bool) {
	s.lineageMu.Lock()
	defer s.lineageMu.Unlock()
	prev, ok := s.supersedes[id]
	return prev, ok
}

// Stats reports totals by source_type, per-tag counts, and instance id.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	entries, err := s.allEntries(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	stats := model.Stats{
		InstanceID:   s.instanceID,
		Total:        len(entries),
		BySourceType: map[model.SourceType]int{},
		ByTag:        map[string]int{},
	}
	for _, e := range entries {
		stats.BySourceType[e.SourceType]++
		for _, tag := range e.Tags {
			stats.ByTag[tag]++
		}
	}
	return stats, nil
}

// Health reports service liveness and memory count.
func (s *Service) Health(ctx context.Context) (status string, instanceID string, memoryCount int, err error) {
	count, err := s.vectors.Count(ctx)
	if err != nil {
		return "unhealthy", s.instanceID, 0, err
	}
	return "ok", s.instanceID, count, nil
}

// RecallOptions narrows and weights a Recall call; zero values take
// Service defaults.
type RecallOptions struct {
	Limit          int
	MinRelevance   float64
	Tags           []string
	SourceType     string
	After          time.Time
	Before         time.Time
	GraphExpansion bool
	Hybrid         *bool
	VectorWeight   float64
	TextWeight     float64
}

// Recall runs the vector/keyword/graph merge algorithm of spec.md
// §4.8.
func (s *Service) Recall(ctx context.Context, query string, opts RecallOptions) ([]model.RecallResult, error) {
	limit := clampInt(opts.Limit, 1, 50, s.cfg.DefaultLimit)
	minRelevance := opts.MinRelevance
	if minRelevance == 0 {
		minRelevance = s.cfg.DefaultMinRelevance
	}
	vectorWeight, textWeight := s.resolveWeights(opts)

	after, before := opts.After, opts.Before
	if after.IsZero() && before.IsZero() {
		if a, b, ok := temporal.ExtractRange(query, time.Now().UTC()); ok {
			after, before = a, b
		}
	}
	if !after.IsZero() && !before.IsZero() && after.After(before) {
		return nil, nil
	}

	n := limit * 3
	if n < limit {
		n = limit
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("memory: recall embed: %w", err)
	}

	vecFilters := vectorstore.Filters{Tags: opts.Tags, SourceType: opts.SourceType}
	vecMatches, err := s.vectors.Search(ctx, queryVec, n, vecFilters)
	if err != nil {
		return nil, fmt.Errorf("memory: recall vector search: %w", err)
	}

	useHybrid := s.cfg.Hybrid
	if opts.Hybrid != nil {
		useHybrid = *opts.Hybrid
	}

	pool := make(map[string]*candidate, len(vecMatches))
	order := make([]string, 0, len(vecMatches))
	for _, m := range vecMatches {
		pool[m.Record.ID] = &candidate{entry: recordToEntry(m.Record), vectorSim: m.Score, method: model.RetrievalVector}
		order = append(order, m.Record.ID)
	}

	if useHybrid && s.keywords != nil && s.keywords.Available() {
		hits, err := s.keywords.Search(ctx, query, n)
		if err != nil {
			return nil, fmt.Errorf("memory: recall keyword search: %w", err)
		}
		bm25 := keywordstore.NormalizeRanks(hits)
		for _, h := range hits {
			norm := bm25[h.ID]
			if c, ok := pool[h.ID]; ok {
				c.textScore = norm
				c.method = model.RetrievalHybrid
				continue
			}
			rec, found, err := s.vectors.Get(ctx, h.ID)
			if err != nil {
				return nil, fmt.Errorf("memory: recall keyword hydrate: %w", err)
			}
			if !found {
				continue
			}
			pool[h.ID] = &candidate{entry: recordToEntry(rec), textScore: norm, method: model.RetrievalHybrid}
			order = append(order, h.ID)
		}
	}

	if opts.GraphExpansion && s.graph != nil {
		entities, _ := s.extractor.ExtractQuery(query)
		linked := map[string]struct{}{}
		for _, e := range entities {
			ids, err := s.graph.GetMemoriesForEntity(ctx, e.Name)
			if err != nil {
				return nil, fmt.Errorf("memory: recall graph expand: %w", err)
			}
			for _, id := range ids {
				linked[id] = struct{}{}
			}
		}
		poolCap := limit * 4
		if poolCap > 200 {
			poolCap = 200
		}
		for id := range linked {
			if len(pool) >= poolCap {
				break
			}
			if _, ok := pool[id]; ok {
				continue
			}
			rec, found, err := s.vectors.Get(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("memory: recall graph hydrate: %w", err)
			}
			if !found {
				continue
			}
			pool[id] = &candidate{entry: recordToEntry(rec), method: model.RetrievalGraph, graphFloor: s.cfg.GraphRelevanceFloor}
			order = append(order, id)
		}
	}

	results := make([]model.RecallResult, 0, len(pool))
	for _, id := range order {
		c := pool[id]
		if !temporal.MatchesRange(c.entry.TemporalFacts, after, before) {
			continue
		}
		final := vectorWeight*c.vectorSim + textWeight*c.textScore
		if c.method == model.RetrievalGraph && final < c.graphFloor {
			final = c.graphFloor
		}
		if final < minRelevance {
			continue
		}
		results = append(results, model.RecallResult{
			Memory:          c.entry,
			FinalScore:      final,
			VectorScore:     c.vectorSim,
			TextScore:       c.textScore,
			RetrievalMethod: c.method,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].Memory.CreatedAt.After(results[j].Memory.CreatedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

type candidate struct {
	entry      model.MemoryEntry
	vectorSim  float64
	textScore  float64
	method     model.RetrievalMethod
	graphFloor float64
}

func recordToEntry(r vectorstore.Record) model.MemoryEntry {
	return model.MemoryEntry{
		ID:             r.ID,
		Content:        r.Content,
		Embedding:      r.Vector,
		SourceInstance: r.SourceInstance,
		SourceType:     model.SourceType(r.SourceType),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Tags:           r.Tags,
		Context:        r.Context,
		Confidence:     r.Confidence,
		TemporalFacts:  temporal.Extract(r.Content, r.CreatedAt),
	}
}

func (s *Service) resolveWeights(opts RecallOptions) (vector, text float64) {
	vector, text = s.cfg.VectorWeight, s.cfg.TextWeight
	if opts.VectorWeight != 0 || opts.TextWeight != 0 {
		vector, text = opts.VectorWeight, opts.TextWeight
	}
	sum := vector + text
	if sum == 0 {
		return 1, 0
	}
	return vector / sum, text / sum
}

func clampInt(v, min, max, fallback int) int {
	if v == 0 {
		v = fallback
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// allEntries walks every stored memory. The vector store has no
// list-all method, so this reuses Search's existing scan path with an
// empty query vector (Similarity returns 0 for vectors of different
// length, so it never discriminates) and k = Count(), rather than adding a second
// query path. Shared by Export and Stats.
func (s *Service) allEntries(ctx context.Context) ([]model.MemoryEntry, error) {
	total, err := s.vectors.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}
	zero := make([]float32, 0)
	matches, err := s.vectors.Search(ctx, zero, total, vectorstore.Filters{})
	if err != nil {
		return nil, err
	}
	entries := make([]model.MemoryEntry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, recordToEntry(m.Record))
	}
	return entries, nil
}

// Export builds a portable bundle of every memory matching f.
func (s *Service) Export(ctx context.Context, f portability.ExportFilter, manifest model.EmbeddingManifest) (model.PortableBundle, error) {
	entries, err := s.allEntries(ctx)
	if err != nil {
		return model.PortableBundle{}, err
	}
	return portability.BuildBundle(entries, manifest, f), nil
}

// Import applies bundle to the store per strategy/conflict.
func (s *Service) Import(ctx context.Context, bundle model.PortableBundle, target model.EmbeddingManifest, strategy portability.ReembeddingStrategy, conflict portability.ConflictResolution) (model.ImportSummary, error) {
	existing := make(map[string]model.MemoryEntry, len(bundle.Entries))
	for _, e := range bundle.Entries {
		if rec, ok, err := s.vectors.Get(ctx, e.ID); err == nil && ok {
			existing[e.ID] = recordToEntry(rec)
		}
	}

	plans := portability.Plan(bundle.Entries, existing, bundle.Embedding, target, strategy, conflict)
	summary := model.ImportSummary{}
	for _, p := range plans {
		switch p.Action {
		case "skip":
			summary.Skipped++
			continue
		case "overwrite":
			summary.Overwritten++
		case "merge":
			summary.Overwritten++
		default:
			summary.Inserted++
		}

		vec := p.Entry.Embedding
		if !p.ReembedOK {
			vec = make([]float32, target.Dimensions)
			summary.Reembedded++
		}
		if err := s.vectors.Store(ctx, vectorstore.Record{
			ID:             p.Entry.ID,
			Content:        p.Entry.Content,
			Vector:         vec,
			Tags:           p.Entry.Tags,
			SourceInstance: p.Entry.SourceInstance,
			SourceType:     string(p.Entry.SourceType),
			CreatedAt:      p.Entry.CreatedAt,
			UpdatedAt:      p.Entry.UpdatedAt,
			Context:        p.Entry.Context,
			Confidence:     p.Entry.Confidence,
		}); err != nil {
			return summary, fmt.Errorf("memory: import vector store: %w", err)
		}
		if s.keywords != nil {
			if err := s.keywords.Index(ctx, p.Entry.ID, p.Entry.Content, p.Entry.Tags); err != nil {
				return summary, fmt.Errorf("memory: import keyword index: %w", err)
			}
		}
	}
	return summary, nil
}
