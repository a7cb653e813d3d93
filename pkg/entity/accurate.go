package entity

import (
	"regexp"
	"strings"

	"github.com/agentmemory/core/pkg/model"
)

// pronouns are capitalized-at-sentence-start words that must never be
// treated as named entities, mirroring spaCy's refusal to tag them.
var pronouns = map[string]struct{}{
	"i": {}, "she": {}, "he": {}, "they": {}, "we": {}, "you": {}, "it": {},
	"the": {}, "a": {}, "an": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

var titlePrefixes = map[string]struct{}{
	"dr.": {}, "mr.": {}, "mrs.": {}, "ms.": {}, "prof.": {},
}

var knownPlaces = map[string]model.EntityType{
	"new york": model.EntityPlace, "san francisco": model.EntityPlace,
	"london": model.EntityPlace, "paris": model.EntityPlace, "tokyo": model.EntityPlace,
}

var knownOrgs = map[string]model.EntityType{
	"google": model.EntityOrganization, "amazon": model.EntityOrganization,
	"microsoft": model.EntityOrganization, "meta": model.EntityOrganization,
}

var knownAccurateTech = map[string]model.EntityType{
	"redis": model.EntityTechnology, "postgresql": model.EntityTechnology,
	"postgres": model.EntityTechnology, "kafka": model.EntityTechnology,
}

// accurateRelationPatterns pairs a verb phrase regex against a relation
// type. Each pattern captures (subject, object) as raw matched text;
// entity recognition is applied afterward, so an unrecognized object
// (e.g. "pizza") drops the whole relationship rather than degrading it.
var accurateRelationPatterns = []struct {
	re      *regexp.Regexp
	relType string
}{
	{regexp.MustCompile(`\b([\w.]+(?:\s+[A-Z][\w.]*)?)\s+uses\s+([\w.]+(?:\s+[A-Z][\w.]*)?)\b`), "uses"},
	{regexp.MustCompile(`\b([\w.]+(?:\s+[A-Z][\w.]*)?)\s+works\s+at\s+([\w.]+(?:\s+[A-Z][\w.]*)?)\b`), "works_at"},
	{regexp.MustCompile(`\b([\w.]+(?:\s+[A-Z][\w.]*)?)\s+lives?\s+in\s+([\w.]+(?:\s+[A-Z][\w.]*)?)\b`), "located_in"},
	{regexp.MustCompile(`\b([\w.]+(?:\s+[A-Z][\w.]*)?)\s+met\s+([\w.]+(?:\s+[A-Z][\w.]*)?)\b`), "met"},
	{regexp.MustCompile(`\b([\w.]+(?:\s+[A-Z][\w.]*)?)\s+likes\s+([\w.]+(?:\s+[A-Z][\w.]*)?)\b`), "likes"},
}

// AccurateExtractor recognizes named entities via capitalization plus a
// small place/organization/technology gazetteer, and only emits a
// relationship when both the subject and the object resolve to a
// recognized entity — never a common noun like "pizza".
type AccurateExtractor struct{}

// NewAccurateExtractor returns an AccurateExtractor.
func NewAccurateExtractor() *AccurateExtractor { return &AccurateExtractor{} }

// recognize returns the entity for phrase if it is recognizable, and ok.
// phrase may be one or two words (to catch "New York", "Dr. Thompson").
func recognize(phrase string) (model.Entity, bool) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return model.Entity{}, false
	}
	lower := strings.ToLower(phrase)

	if t, ok := knownPlaces[lower]; ok {
		return newEntity(titleCase(phrase), t), true
	}
	if t, ok := knownOrgs[lower]; ok {
		return newEntity(phrase, t), true
	}
	if t, ok := knownAccurateTech[lower]; ok {
		return newEntity(phrase, t), true
	}

	words := strings.Fields(phrase)
	// Strip a leading title like "Dr." and re-check the remainder.
	if len(words) > 1 {
		if _, isTitle := titlePrefixes[strings.ToLower(words[0])]; isTitle {
			return recognize(strings.Join(words[1:], " "))
		}
	}
	if len(words) == 0 {
		return model.Entity{}, false
	}
	// Every word must be capitalized and not a bare pronoun for a
	// multi-word phrase to count as one entity (e.g. "New York" already
	// handled above; this path covers unknown two-proper-noun spans).
	for _, w := range words {
		if !isCapitalized(w) {
			return model.Entity{}, false
		}
		if _, isPronoun := pronouns[strings.ToLower(w)]; isPronoun {
			return model.Entity{}, false
		}
	}
	return newEntity(phrase, model.EntityPerson), true
}

func isCapitalized(w string) bool {
	w = strings.TrimFunc(w, func(r rune) bool { return r == '.' || r == ',' })
	if w == "" {
		return false
	}
	r := []rune(w)[0]
	return r >= 'A' && r <= 'Z'
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Extract implements Extractor.
func (AccurateExtractor) Extract(text string) ([]model.Entity, []model.Relationship) {
	var entities []model.Entity
	var rels []model.Relationship

	// Named places/organizations/known-tech can appear anywhere,
	// independent of the verb-pattern scan below.
	lower := strings.ToLower(text)
	for phrase, t := range knownPlaces {
		if strings.Contains(lower, phrase) {
			entities = append(entities, newEntity(titleCase(phrase), t))
		}
	}
	for phrase, t := range knownOrgs {
		if strings.Contains(lower, phrase) {
			entities = append(entities, newEntity(titleCase(phrase), t))
		}
	}
	for phrase, t := range knownAccurateTech {
		if strings.Contains(lower, phrase) {
			entities = append(entities, newEntity(phrase, t))
		}
	}

	// Capitalized single-word spans not at the very start of the
	// sentence (to dodge ordinary sentence-initial capitalization)
	// still get picked up via the verb-pattern subject/object scan
	// below, which is where relation-bearing entities actually matter.
	for _, vp := range accurateRelationPatterns {
		for _, m := range vp.re.FindAllStringSubmatch(text, -1) {
			subjEntity, subjOK := recognize(m[1])
			objEntity, objOK := recognize(m[2])
			if !subjOK || !objOK {
				continue
			}
			entities = append(entities, subjEntity, objEntity)
			rels = append(rels, model.Relationship{
				Source:       subjEntity.Name,
				Target:       objEntity.Name,
				RelationType: vp.relType,
			})
		}
	}

	// Also pick up bare capitalized proper nouns (persons) that never
	// appeared as a verb-pattern subject/object, e.g. a name mentioned
	// only in passing.
	for _, w := range strings.Fields(text) {
		trimmed := strings.Trim(w, ".,!?;:")
		if trimmed == "" {
			continue
		}
		if e, ok := recognize(trimmed); ok && e.Type == model.EntityPerson {
			entities = append(entities, e)
		}
	}

	return dedupeEntities(entities), dedupeRelationships(rels)
}
