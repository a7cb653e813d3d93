// Package vectorstore implements C2, the dense embedding index: a
// SQLite-backed table of (id, vector, content, tags, timestamps) with a
// brute-force cosine nearest-neighbor scan. Grounded on the teacher's
// pkg/core/store_init.go for the WAL pragma/connection-pool setup and on
// pkg/core/reranker.go for the over-fetch-then-filter search pattern. A
// flat scan (no HNSW/IVF) is deliberate: SPEC_FULL.md's target scale does
// not call for an approximate index, and the teacher's own quantization
// machinery is dropped accordingly (see DESIGN.md).
package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agentmemory/core/internal/encoding"
	"github.com/agentmemory/core/internal/logging"
	"github.com/agentmemory/core/pkg/embedding"
)

// Filters narrows a Search call before the similarity scan runs.
//
// There is deliberately no After/Before here: the server-side temporal
// filter operates on each memory's parsed temporal facts (see
// pkg/temporal.MatchesRange), not on created_at, and a fact-less memory
// must pass through unfiltered. Recall applies that filter itself over
// the over-fetched candidate pool.
type Filters struct {
	Tags           []string
	SourceInstance string
	SourceType     string
}

// Record is one stored vector entry.
type Record struct {
	ID             string
	Content        string
	Vector         []float32
	Tags           []string
	SourceInstance string
	SourceType     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Context        string
	Confidence     float64
}

// Match is a search hit.
type Match struct {
	Record Record
	Score  float64
}

// overFetchMultiplier and minCandidates mirror the teacher's reranker.go
// over-fetch pattern: pull more rows than requested so post-scan filters
// don't starve the final top-k.
const (
	overFetchMultiplier = 5
	minCandidates        = 50
)

// Store is the SQLite-backed vector index.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if necessary) the SQLite database at path and
// initializes its schema. dsn pragmas match the teacher's WAL tuning.
func Open(ctx context.Context, path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-2000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(2 * time.Hour)

	s := &Store{db: db, logger: logger}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS vectors (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		vector BLOB NOT NULL,
		tags TEXT,
		source_instance TEXT,
		source_type TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		context TEXT,
		confidence REAL NOT NULL DEFAULT 1.0
	);
	CREATE INDEX IF NOT EXISTS idx_vectors_created_at ON vectors(created_at);
	CREATE INDEX IF NOT EXISTS idx_vectors_source_instance ON vectors(source_instance);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("vectorstore: init schema: %w", err)
	}
	s.logger.Info("vectorstore initialized")
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Store upserts r. Re-storing an existing id replaces its row (Remember
// is idempotent by id).
func (s *Store) Store(ctx context.Context, r Record) error {
	if err := encoding.ValidateVector(r.Vector); err != nil {
		return fmt.Errorf("vectorstore: %w", err)
	}
	vecBytes, err := encoding.EncodeVector(r.Vector)
	if err != nil {
		return fmt.Errorf("vectorstore: encode vector: %w", err)
	}
	tagsJSON, err := encoding.EncodeStrings(r.Tags)
	if err != nil {
		return fmt.Errorf("vectorstore: encode tags: %w", err)
	}
	updatedAt := r.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.CreatedAt
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vectors (id, content, vector, tags, source_instance, source_type, created_at, updated_at, context, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			vector = excluded.vector,
			tags = excluded.tags,
			source_instance = excluded.source_instance,
			source_type = excluded.source_type,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			context = excluded.context,
			confidence = excluded.confidence
	`, r.ID, r.Content, vecBytes, tagsJSON, r.SourceInstance, r.SourceType, r.CreatedAt.UTC(), updatedAt.UTC(), r.Context, r.Confidence)
	if err != nil {
		return fmt.Errorf("vectorstore: store: %w", err)
	}
	return nil
}

// Delete removes the vector for id. Deleting a nonexistent id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM vectors WHERE id = ?`, id); err != nil {
		return fmt.Errorf("vectorstore: delete: %w", err)
	}
	return nil
}

// Get fetches a single record by id.
func (s *Store) Get(ctx context.Context, id string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, content, vector, tags, source_instance, source_type, created_at, updated_at, context, confidence FROM vectors WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("vectorstore: get: %w", err)
	}
	return rec, true, nil
}

// Count returns the number of stored vectors.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vectors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("vectorstore: count: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var vecBytes []byte
	var tagsJSON sql.NullString
	var createdAt, updatedAt time.Time
	var context sql.NullString
	var confidence float64
	if err := row.Scan(&rec.ID, &rec.Content, &vecBytes, &tagsJSON, &rec.SourceInstance, &rec.SourceType, &createdAt, &updatedAt, &context, &confidence); err != nil {
		return Record{}, err
	}
	vec, err := encoding.DecodeVector(vecBytes)
	if err != nil {
		return Record{}, err
	}
	rec.Vector = vec
	rec.CreatedAt = createdAt
	rec.UpdatedAt = updatedAt
	rec.Context = context.String
	rec.Confidence = confidence
	if tagsJSON.Valid {
		tags, err := encoding.DecodeStrings(tagsJSON.String)
		if err != nil {
			return Record{}, err
		}
		rec.Tags = tags
	}
	return rec, nil
}

// Search returns the top-k matches to query by cosine similarity,
// scanning candidates filtered per f. Ties break by created_at
// descending then id ascending, for a stable ordering across runs.
func (s *Store) Search(ctx context.Context, query []float32, k int, f Filters) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, content, vector, tags, source_instance, source_type, created_at, updated_at, context, confidence FROM vectors ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search query: %w", err)
	}
	defer rows.Close()

	candidateCap := k * overFetchMultiplier
	if candidateCap < minCandidates {
		candidateCap = minCandidates
	}

	var matches []Match
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("vectorstore: scan row: %w", err)
		}
		if !matchesFilters(rec, f) {
			continue
		}
		score := embedding.Similarity(query, rec.Vector)
		matches = append(matches, Match{Record: rec, Score: score})
		if len(matches) >= candidateCap*4 {
			// Bound memory on pathologically large stores; the sort below
			// still finds the true top-k among everything scanned so far.
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorstore: iterate rows: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if !matches[i].Record.CreatedAt.Equal(matches[j].Record.CreatedAt) {
			return matches[i].Record.CreatedAt.After(matches[j].Record.CreatedAt)
		}
		return matches[i].Record.ID < matches[j].Record.ID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func matchesFilters(rec Record, f Filters) bool {
	if f.SourceInstance != "" && rec.SourceInstance != f.SourceInstance {
		return false
	}
	if f.SourceType != "" && rec.SourceType != f.SourceType {
		return false
	}
	if len(f.Tags) > 0 {
		set := make(map[string]struct{}, len(rec.Tags))
		for _, t := range rec.Tags {
			set[t] = struct{}{}
		}
		for _, want := range f.Tags {
			if _, ok := set[want]; !ok {
				return false
			}
		}
	}
	return true
}
