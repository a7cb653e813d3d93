// Package keywordstore implements C3, the SQLite FTS5-backed BM25
// keyword index. Grounded directly on original_source's
// src/tribalmemory/services/fts_store.py: the memories_fts/fts_ids
// schema, the availability probe, and the index/search/delete/count
// operations are a line-for-line port of that module's behavior into
// Go, using the teacher's WAL connection setup
// (pkg/core/store_init.go) for the underlying *sql.DB.
package keywordstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agentmemory/core/internal/logging"
)

// Hit is one keyword search result: the matched id and its raw FTS5
// bm25() rank (negative; more negative is a better match).
type Hit struct {
	ID   string
	Rank float64
}

// Store wraps a SQLite FTS5 virtual table for keyword search over
// memory content and tags.
type Store struct {
	db        *sql.DB
	logger    logging.Logger
	available bool
}

// Open opens (creating if necessary) the SQLite database at path,
// probes for FTS5 support, and creates the virtual table if available.
// If FTS5 is unsupported, Store degrades to a permanent no-op rather
// than failing Open, matching fts_store.py's is_available() caching.
func Open(ctx context.Context, path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-2000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("keywordstore: open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(2 * time.Hour)

	s := &Store{db: db, logger: logger}
	s.available = s.probeFTS5(ctx)
	if !s.available {
		s.logger.Warn("FTS5 not available in this SQLite build; keyword search disabled")
		return s, nil
	}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) probeFTS5(ctx context.Context) bool {
	if _, err := s.db.ExecContext(ctx, `CREATE VIRTUAL TABLE IF NOT EXISTS _fts5_probe USING fts5(test_col)`); err != nil {
		return false
	}
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS _fts5_probe`); err != nil {
		return false
	}
	return true
}

func (s *Store) init(ctx context.Context) error {
	const schema = `
	CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(id, content, tags, tokenize='porter');
	CREATE TABLE IF NOT EXISTS fts_ids (id TEXT PRIMARY KEY);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("keywordstore: init schema: %w", err)
	}
	return nil
}

// Available reports whether FTS5 support was detected at Open time.
func (s *Store) Available() bool { return s.available }

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Index indexes (or re-indexes, on conflict) a memory for keyword
// search. A no-op if FTS5 is unavailable.
func (s *Store) Index(ctx context.Context, id, content string, tags []string) error {
	if !s.available {
		return nil
	}
	tagsText := strings.Join(tags, " ")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("keywordstore: index begin: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM fts_ids WHERE id = ?`, id).Scan(&existing)
	if err == nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM memories_fts WHERE id = ?`, id); err != nil {
			return fmt.Errorf("keywordstore: index delete stale: %w", err)
		}
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("keywordstore: index lookup: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO memories_fts (id, content, tags) VALUES (?, ?, ?)`, id, content, tagsText); err != nil {
		return fmt.Errorf("keywordstore: index insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO fts_ids (id) VALUES (?)`, id); err != nil {
		return fmt.Errorf("keywordstore: index track id: %w", err)
	}
	return tx.Commit()
}

// Search runs a BM25 keyword search for query, returning up to limit
// hits ordered by rank (best first). A malformed FTS5 query (unbalanced
// quotes, bad operators) is logged and yields an empty result rather
// than an error, matching fts_store.py's behavior.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if !s.available {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rank FROM memories_fts WHERE memories_fts MATCH ? ORDER BY rank LIMIT ?
	`, query, limit)
	if err != nil {
		s.logger.Warn("FTS5 search error", "error", err, "query", query)
		return nil, nil
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ID, &h.Rank); err != nil {
			return nil, fmt.Errorf("keywordstore: scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("FTS5 search error", "error", err, "query", query)
		return nil, nil
	}
	return hits, nil
}

// Delete removes id from the keyword index. A no-op if FTS5 is
// unavailable or id was never indexed.
func (s *Store) Delete(ctx context.Context, id string) error {
	if !s.available {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM memories_fts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("keywordstore: delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fts_ids WHERE id = ?`, id); err != nil {
		return fmt.Errorf("keywordstore: delete id: %w", err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	if !s.available {
		return 0, nil
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fts_ids`).Scan(&n); err != nil {
		return 0, fmt.Errorf("keywordstore: count: %w", err)
	}
	return n, nil
}

// RankToScore maps a raw BM25 rank (negative; more negative is better)
// into (0, 1], per bm25_rank_to_score in fts_store.py.
func RankToScore(rank float64) float64 {
	abs := rank
	if abs < 0 {
		abs = -abs
	}
	return 1.0 / (1.0 + abs)
}

// NormalizeRanks min-max normalizes a batch of hits' absolute ranks into
// [0, 1], id -> score, with the best (most negative) rank mapping to
// 1.0. An empty batch returns an empty map (no BM25 contribution); a
// batch where every rank is equal maps every id to 1.0. Grounded on
// hybrid_merge's BM25 normalization block in fts_store.py.
func NormalizeRanks(hits []Hit) map[string]float64 {
	out := make(map[string]float64, len(hits))
	if len(hits) == 0 {
		return out
	}
	minRank, maxRank := absRank(hits[0].Rank), absRank(hits[0].Rank)
	for _, h := range hits[1:] {
		a := absRank(h.Rank)
		if a < minRank {
			minRank = a
		}
		if a > maxRank {
			maxRank = a
		}
	}
	rankRange := maxRank - minRank
	for _, h := range hits {
		if rankRange > 0 {
			out[h.ID] = (absRank(h.Rank) - minRank) / rankRange
		} else {
			// Every hit has the same rank (most commonly a single-hit
			// batch): min-max degenerates, so every hit maps to 1.0.
			out[h.ID] = 1.0
		}
	}
	return out
}

func absRank(r float64) float64 {
	if r < 0 {
		return -r
	}
	return r
}
