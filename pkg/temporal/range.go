package temporal

import (
	"strings"
	"time"

	"github.com/agentmemory/core/pkg/model"
)

// ParseInstant parses an explicit after/before string, accepting ISO-8601
// dates/datetimes first and falling back to the same relative/vague
// vocabulary Extract understands (interpreting the whole string as one
// expression). Returns ok=false (not an error) on anything unparseable,
// per spec.md §4.4: "an unparseable after/before logs a warning and is
// treated as unset."
func ParseInstant(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if facts := Extract(s, now); len(facts) > 0 {
		return facts[0].Instant, true
	}
	return time.Time{}, false
}

// MatchesRange applies spec.md §4.4's range-match rule: a memory with no
// temporal facts always passes; otherwise it passes iff at least one
// fact's span intersects [after, before]. A zero after/before means
// unbounded on that side. If after is strictly after before, the caller
// is expected to treat the whole query as empty-result (handled by
// Memory Service, not here, since that's a pool-level short-circuit).
func MatchesRange(facts []model.TemporalFact, after, before time.Time) bool {
	if len(facts) == 0 {
		return true
	}
	for _, f := range facts {
		if f.Intersects(after, before) {
			return true
		}
	}
	return false
}
