// Package entity implements C5, entity and relationship extraction, in
// three modes: a fast regex extractor for ingest-time use, an accurate
// extractor that only forms a relationship between two independently
// recognized entities, and a hybrid composer of the two. Grounded on
// original_source's tests/test_dependency_relationships.py for the
// NER-gated relationship rule (a common noun like "pizza" must never
// become a relationship target) even though the original's spaCy
// dependency parser itself wasn't part of the retrieved source: the
// accurate extractor here substitutes a capitalization/gazetteer-based
// recognizer for spaCy's NER, which is the idiomatic-Go analogue
// without vendoring an NLP model.
package entity

import (
	"strings"

	"github.com/agentmemory/core/pkg/model"
)

// Extractor produces entities and relationships from text.
type Extractor interface {
	Extract(text string) ([]model.Entity, []model.Relationship)
}

// dedupeEntities removes case-insensitive (name, type) duplicates, keeping the
// first occurrence's display casing.
func dedupeEntities(entities []model.Entity) []model.Entity {
	seen := make(map[string]struct{}, len(entities))
	out := make([]model.Entity, 0, len(entities))
	for _, e := range entities {
		key := strings.ToLower(e.Name) + "|" + string(e.Type)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

func dedupeRelationships(rels []model.Relationship) []model.Relationship {
	seen := make(map[string]struct{}, len(rels))
	out := make([]model.Relationship, 0, len(rels))
	for _, r := range rels {
		key := strings.ToLower(r.Source) + "|" + strings.ToLower(r.Target) + "|" + r.RelationType
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func newEntity(display string, t model.EntityType) model.Entity {
	return model.Entity{Name: strings.ToLower(display), DisplayName: display, Type: t}
}
