// Package graphstore implements C6, the persistent entity/relationship
// graph. Grounded on the teacher's pkg/graph/graph.go for the
// CASCADE-foreign-key table layout and WAL-backed single *sql.DB
// pattern, generalized from the teacher's generic node/edge model to
// the spec's (entity, relationship, memory-association) join-table
// shape from spec.md §3/§4.6/§9 ("model as a pair of join tables keyed
// by memory id, with entity uniqueness on (name, type)").
package graphstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agentmemory/core/internal/logging"
	"github.com/agentmemory/core/pkg/model"
)

// Store is the SQLite-backed entity/relationship graph.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if necessary) the SQLite database at path and
// initializes the graph schema.
func Open(ctx context.Context, path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-2000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("graphstore: open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(2 * time.Hour)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("graphstore: enable foreign keys: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS entities (
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		display_name TEXT NOT NULL,
		PRIMARY KEY (name, type)
	);

	CREATE TABLE IF NOT EXISTS relationships (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		relation_type TEXT NOT NULL,
		UNIQUE (source, target, relation_type)
	);

	CREATE TABLE IF NOT EXISTS entity_memory (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_name TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		memory_id TEXT NOT NULL,
		UNIQUE (entity_name, entity_type, memory_id),
		FOREIGN KEY (entity_name, entity_type) REFERENCES entities(name, type) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS relationship_memory (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		relationship_id INTEGER NOT NULL,
		memory_id TEXT NOT NULL,
		UNIQUE (relationship_id, memory_id),
		FOREIGN KEY (relationship_id) REFERENCES relationships(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_entity_memory_memory ON entity_memory(memory_id);
	CREATE INDEX IF NOT EXISTS idx_relationship_memory_memory ON relationship_memory(memory_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source);
	CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("graphstore: init schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// AddEntity records entity and an association to memoryID. Idempotent
// on (name, type): re-adding the same entity for a different memory id
// only adds the association row.
func (s *Store) AddEntity(ctx context.Context, e model.Entity, memoryID string) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO entities (name, type, display_name) VALUES (?, ?, ?)
		ON CONFLICT(name, type) DO NOTHING
	`, e.Name, string(e.Type), e.DisplayName); err != nil {
		return fmt.Errorf("graphstore: add entity: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO entity_memory (entity_name, entity_type, memory_id) VALUES (?, ?, ?)
	`, e.Name, string(e.Type), memoryID); err != nil {
		return fmt.Errorf("graphstore: link entity to memory: %w", err)
	}
	return nil
}

// AddRelationship records rel and an association to memoryID.
func (s *Store) AddRelationship(ctx context.Context, rel model.Relationship, memoryID string) error {
	var relID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO relationships (source, target, relation_type) VALUES (?, ?, ?)
		ON CONFLICT(source, target, relation_type) DO UPDATE SET source = excluded.source
		RETURNING id
	`, rel.Source, rel.Target, rel.RelationType).Scan(&relID)
	if err != nil {
		return fmt.Errorf("graphstore: add relationship: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO relationship_memory (relationship_id, memory_id) VALUES (?, ?)
	`, relID, memoryID); err != nil {
		return fmt.Errorf("graphstore: link relationship to memory: %w", err)
	}
	return nil
}

// GetEntitiesForMemory returns every entity associated with memoryID.
func (s *Store) GetEntitiesForMemory(ctx context.Context, memoryID string) ([]model.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.name, e.type, e.display_name
		FROM entities e JOIN entity_memory em ON em.entity_name = e.name AND em.entity_type = e.type
		WHERE em.memory_id = ?
		ORDER BY em.seq
	`, memoryID)
	if err != nil {
		return nil, fmt.Errorf("graphstore: get entities for memory: %w", err)
	}
	defer rows.Close()
	return scanEntities(rows)
}

// GetRelationshipsForEntity returns every relationship where name
// appears as source or target.
func (s *Store) GetRelationshipsForEntity(ctx context.Context, name string) ([]model.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, target, relation_type FROM relationships WHERE source = ? OR target = ?
	`, name, name)
	if err != nil {
		return nil, fmt.Errorf("graphstore: get relationships for entity: %w", err)
	}
	defer rows.Close()

	var rels []model.Relationship
	for rows.Next() {
		var r model.Relationship
		if err := rows.Scan(&r.Source, &r.Target, &r.RelationType); err != nil {
			return nil, fmt.Errorf("graphstore: scan relationship: %w", err)
		}
		rels = append(rels, r)
	}
	return rels, rows.Err()
}

// GetMemoriesForEntity returns memory ids linked to name, in insertion
// order.
func (s *Store) GetMemoriesForEntity(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT memory_id FROM entity_memory WHERE entity_name = ? ORDER BY seq
	`, name)
	if err != nil {
		return nil, fmt.Errorf("graphstore: get memories for entity: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("graphstore: scan memory id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindConnected runs a breadth-first search from name over the
// relationship graph, returning every entity name reachable within
// hops edges (excluding the seed). hops is capped at 3.
func (s *Store) FindConnected(ctx context.Context, name string, hops int) ([]string, error) {
	if hops > 3 {
		hops = 3
	}
	if hops < 0 {
		hops = 0
	}

	visited := map[string]struct{}{name: {}}
	frontier := []string{name}
	var result []string

	for depth := 0; depth < hops && len(frontier) > 0; depth++ {
		var next []string
		for _, n := range frontier {
			rows, err := s.db.QueryContext(ctx, `
				SELECT target FROM relationships WHERE source = ?
				UNION
				SELECT source FROM relationships WHERE target = ?
			`, n, n)
			if err != nil {
				return nil, fmt.Errorf("graphstore: find connected: %w", err)
			}
			var neighbors []string
			for rows.Next() {
				var neighbor string
				if err := rows.Scan(&neighbor); err != nil {
					rows.Close()
					return nil, fmt.Errorf("graphstore: scan neighbor: %w", err)
				}
				neighbors = append(neighbors, neighbor)
			}
			rows.Close()
			for _, neighbor := range neighbors {
				if _, seen := visited[neighbor]; seen {
					continue
				}
				visited[neighbor] = struct{}{}
				result = append(result, neighbor)
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return result, nil
}

// DeleteMemory removes every association row for id, then garbage
// collects entities and relationships left with no remaining
// association.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("graphstore: delete memory begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entity_memory WHERE memory_id = ?`, id); err != nil {
		return fmt.Errorf("graphstore: delete entity_memory: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM relationship_memory WHERE memory_id = ?`, id); err != nil {
		return fmt.Errorf("graphstore: delete relationship_memory: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM entities WHERE (name, type) NOT IN (SELECT entity_name, entity_type FROM entity_memory)
	`); err != nil {
		return fmt.Errorf("graphstore: gc entities: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM relationships WHERE id NOT IN (SELECT relationship_id FROM relationship_memory)
	`); err != nil {
		return fmt.Errorf("graphstore: gc relationships: %w", err)
	}
	return tx.Commit()
}

func scanEntities(rows *sql.Rows) ([]model.Entity, error) {
	var entities []model.Entity
	for rows.Next() {
		var e model.Entity
		var t string
		if err := rows.Scan(&e.Name, &t, &e.DisplayName); err != nil {
			return nil, fmt.Errorf("graphstore: scan entity: %w", err)
		}
		e.Type = model.EntityType(t)
		entities = append(entities, e)
	}
	return entities, rows.Err()
}
