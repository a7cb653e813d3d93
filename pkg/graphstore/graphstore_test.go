package graphstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/agentmemory/core/pkg/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(context.Background(), filepath.Join(dir, "graph.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddEntityIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	e := model.Entity{Name: "redis", DisplayName: "Redis", Type: model.EntityTechnology}

	if err := s.AddEntity(ctx, e, "mem1"); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	if err := s.AddEntity(ctx, e, "mem1"); err != nil {
		t.Fatalf("AddEntity (repeat): %v", err)
	}
	if err := s.AddEntity(ctx, e, "mem2"); err != nil {
		t.Fatalf("AddEntity (second memory): %v", err)
	}

	ids, err := s.GetMemoriesForEntity(ctx, "redis")
	if err != nil {
		t.Fatalf("GetMemoriesForEntity: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 distinct memory links, got %v", ids)
	}
}

func TestAddRelationshipAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rel := model.Relationship{Source: "auth-service", Target: "postgresql", RelationType: "uses"}
	if err := s.AddRelationship(ctx, rel, "mem1"); err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}
	rels, err := s.GetRelationshipsForEntity(ctx, "auth-service")
	if err != nil {
		t.Fatalf("GetRelationshipsForEntity: %v", err)
	}
	if len(rels) != 1 || rels[0].Target != "postgresql" {
		t.Fatalf("expected 1 relationship to postgresql, got %+v", rels)
	}
}

func TestFindConnectedBFS(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_ = s.AddRelationship(ctx, model.Relationship{Source: "a", Target: "b", RelationType: "connects_to"}, "mem1")
	_ = s.AddRelationship(ctx, model.Relationship{Source: "b", Target: "c", RelationType: "connects_to"}, "mem1")
	_ = s.AddRelationship(ctx, model.Relationship{Source: "c", Target: "d", RelationType: "connects_to"}, "mem1")

	within2, err := s.FindConnected(ctx, "a", 2)
	if err != nil {
		t.Fatalf("FindConnected: %v", err)
	}
	found := map[string]bool{}
	for _, n := range within2 {
		found[n] = true
	}
	if !found["b"] || !found["c"] {
		t.Fatalf("expected b and c reachable within 2 hops, got %v", within2)
	}
	if found["d"] {
		t.Fatalf("did not expect d reachable within 2 hops, got %v", within2)
	}
	if found["a"] {
		t.Fatalf("seed should be excluded from result, got %v", within2)
	}
}

func TestDeleteMemoryCascadesAndGarbageCollects(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	e := model.Entity{Name: "redis", DisplayName: "Redis", Type: model.EntityTechnology}
	_ = s.AddEntity(ctx, e, "mem1")
	_ = s.AddRelationship(ctx, model.Relationship{Source: "redis", Target: "cache", RelationType: "uses"}, "mem1")

	if err := s.DeleteMemory(ctx, "mem1"); err != nil {
		t.Fatalf("DeleteMemory: %v", err)
	}

	entities, err := s.GetEntitiesForMemory(ctx, "mem1")
	if err != nil {
		t.Fatalf("GetEntitiesForMemory: %v", err)
	}
	if len(entities) != 0 {
		t.Fatalf("expected no entities linked to deleted memory, got %+v", entities)
	}

	rels, err := s.GetRelationshipsForEntity(ctx, "redis")
	if err != nil {
		t.Fatalf("GetRelationshipsForEntity: %v", err)
	}
	if len(rels) != 0 {
		t.Fatalf("expected relationship garbage-collected, got %+v", rels)
	}
}

func TestDeleteMemoryIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_ = s.AddEntity(ctx, model.Entity{Name: "x", DisplayName: "X", Type: model.EntityConcept}, "mem1")
	if err := s.DeleteMemory(ctx, "mem1"); err != nil {
		t.Fatalf("DeleteMemory: %v", err)
	}
	if err := s.DeleteMemory(ctx, "mem1"); err != nil {
		t.Fatalf("DeleteMemory (repeat): %v", err)
	}
}
