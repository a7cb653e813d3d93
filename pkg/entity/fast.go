package entity

import (
	"regexp"
	"strings"

	"github.com/agentmemory/core/pkg/model"
)

// techTokenRE matches kebab-case identifiers (auth-service) and
// CamelCase/PascalCase identifiers (PostgreSQL, RedisCache) that look
// like service or technology names.
var techTokenRE = regexp.MustCompile(`\b([a-z][a-z0-9]*(?:-[a-z0-9]+)+|[A-Z][a-zA-Z0-9]*[A-Z][a-zA-Z0-9]*)\b`)

// knownTech is a small gazetteer of common technology names that don't
// match the kebab/Camel heuristics (plain lowercase words).
var knownTech = map[string]struct{}{
	"redis": {}, "postgres": {}, "postgresql": {}, "mysql": {}, "kafka": {},
	"docker": {}, "kubernetes": {}, "nginx": {}, "python": {}, "golang": {},
}

var verbPatterns = []struct {
	re      *regexp.Regexp
	relType string
}{
	{regexp.MustCompile(`(?i)\b(\S+)\s+uses\s+(\S+)\b`), "uses"},
	{regexp.MustCompile(`(?i)\b(\S+)\s+stores\s+in\s+(\S+)\b`), "stores_in"},
	{regexp.MustCompile(`(?i)\b(\S+)\s+connects\s+to\s+(\S+)\b`), "connects_to"},
}

// FastExtractor is the regex-based extractor used at ingest time: cheap,
// precision-light, good enough to populate the graph without blocking
// the write path on anything heavier.
type FastExtractor struct{}

// NewFastExtractor returns a FastExtractor.
func NewFastExtractor() *FastExtractor { return &FastExtractor{} }

// Extract implements Extractor.
func (FastExtractor) Extract(text string) ([]model.Entity, []model.Relationship) {
	var entities []model.Entity
	for _, m := range techTokenRE.FindAllString(text, -1) {
		entities = append(entities, newEntity(m, model.EntityTechnology))
	}
	for _, word := range strings.Fields(text) {
		clean := strings.Trim(strings.ToLower(word), ".,!?;:")
		if _, ok := knownTech[clean]; ok {
			entities = append(entities, newEntity(clean, model.EntityTechnology))
		}
	}

	var rels []model.Relationship
	for _, vp := range verbPatterns {
		for _, m := range vp.re.FindAllStringSubmatch(text, -1) {
			source := strings.ToLower(strings.Trim(m[1], ".,!?;:"))
			target := strings.ToLower(strings.Trim(m[2], ".,!?;:"))
			rels = append(rels, model.Relationship{Source: source, Target: target, RelationType: vp.relType})
			entities = append(entities, newEntity(source, model.EntityTechnology), newEntity(target, model.EntityTechnology))
		}
	}

	return dedupeEntities(entities), dedupeRelationships(rels)
}
