// Package textutil provides the small text-normalization helpers shared by
// the deduplicator and the local embedding provider: tokenization, trigram
// similarity, and a fixed stopword list.
package textutil

import (
	"strings"
	"unicode"
)

// Normalize lowercases s and collapses interior whitespace. It does not
// remove punctuation. The trigram comparison does not use it: Trigrams
// works on Tokenize output, which drops punctuation.
func Normalize(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}

// stopwords is intentionally small: the corpus of captured memories is
// short free-form text, not documents, so an exhaustive list buys little.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "and": {}, "or": {},
	"it": {}, "this": {}, "that": {}, "with": {}, "for": {}, "as": {}, "by": {},
}

// Tokenize splits s into lowercase word tokens, dropping punctuation.
func Tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// TokenizeNoStop is Tokenize with stopwords removed. Used by the
// deduplicator's trigram check — see DESIGN.md for why stopword removal
// happens before the trigram comparison rather than after.
func TokenizeNoStop(s string) []string {
	all := Tokenize(s)
	out := make([]string, 0, len(all))
	for _, t := range all {
		if _, skip := stopwords[t]; !skip {
			out = append(out, t)
		}
	}
	return out
}

// Trigrams returns the set of character trigrams of the space-joined,
// stopword-filtered tokens of s. Short inputs (< 3 runes) yield the
// whole string as a single "trigram".
func Trigrams(s string) map[string]struct{} {
	joined := strings.Join(TokenizeNoStop(s), " ")
	runes := []rune(joined)
	set := make(map[string]struct{})
	if len(runes) < 3 {
		if len(runes) > 0 {
			set[string(runes)] = struct{}{}
		}
		return set
	}
	for i := 0; i+3 <= len(runes); i++ {
		set[string(runes[i:i+3])] = struct{}{}
	}
	return set
}

// JaccardTrigram computes the Jaccard similarity between the trigram sets
// of a and b: |intersection| / |union|. Two empty sets are defined as
// identical (similarity 1.0); one empty and one non-empty is 0.0.
func JaccardTrigram(a, b string) float64 {
	ta, tb := Trigrams(a), Trigrams(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	inter := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}
