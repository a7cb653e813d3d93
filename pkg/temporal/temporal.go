// Package temporal implements C4: extracting date/time references from
// free text and resolving them relative to a reference instant ("now").
// Grounded on original_source's tests/test_auto_temporal.py for the
// exact semantics expected of relative/vague expressions (first-wins on
// multiple matches, inclusive week/month ranges, graceful-none on
// unparseable input) since the original's temporal.py implementation
// itself was not part of the retrieved source set.
package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agentmemory/core/pkg/model"
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

var (
	reISODate     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	reAgo         = regexp.MustCompile(`(?i)\b(\d+|a|an)\s+(day|week|month|year)s?\s+ago\b`)
	reLastNextDow = regexp.MustCompile(`(?i)\b(last|next)\s+(sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`)
	reLastNextVague = regexp.MustCompile(`(?i)\b(last|next|this)\s+(week|month|year)\b`)
	reMonthYear   = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b(?:\s+(\d{4}))?`)
)

type match struct {
	start int
	fact  model.TemporalFact
}

// Extract returns every resolved TemporalFact found in text, relative to
// now, in the order their expressions appear in the text.
func Extract(text string, now time.Time) []model.TemporalFact {
	matches := findAll(text, now)
	facts := make([]model.TemporalFact, 0, len(matches))
	for _, m := range matches {
		facts = append(facts, m.fact)
	}
	return facts
}

// ExtractRange returns the span of the first temporal expression found
// in text (after, before, ok). ok is false if nothing was found.
// "First" means the expression whose match begins earliest in the text.
func ExtractRange(text string, now time.Time) (after, before time.Time, ok bool) {
	matches := findAll(text, now)
	if len(matches) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end := matches[0].fact.Span()
	return start, end, true
}

func findAll(text string, now time.Time) []match {
	var matches []match
	lower := strings.ToLower(text)

	for _, loc := range reISODate.FindAllStringSubmatchIndex(text, -1) {
		y, _ := strconv.Atoi(text[loc[2]:loc[3]])
		mo, _ := strconv.Atoi(text[loc[4]:loc[5]])
		d, _ := strconv.Atoi(text[loc[6]:loc[7]])
		t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
		matches = append(matches, match{loc[0], model.TemporalFact{Instant: t, Precision: model.PrecisionDay}})
	}

	if loc := findFirst(lower, `\byesterday\b`); loc != nil {
		t := now.AddDate(0, 0, -1)
		matches = append(matches, match{loc[0], model.TemporalFact{Instant: t, Precision: model.PrecisionDay}})
	}
	if loc := findFirst(lower, `\btoday\b`); loc != nil {
		matches = append(matches, match{loc[0], model.TemporalFact{Instant: now, Precision: model.PrecisionDay}})
	}
	if loc := findFirst(lower, `\btomorrow\b`); loc != nil {
		t := now.AddDate(0, 0, 1)
		matches = append(matches, match{loc[0], model.TemporalFact{Instant: t, Precision: model.PrecisionDay}})
	}

	for _, loc := range reAgo.FindAllStringSubmatchIndex(lower, -1) {
		qtyStr := lower[loc[2]:loc[3]]
		unit := lower[loc[4]:loc[5]]
		qty := 1
		if n, err := strconv.Atoi(qtyStr); err == nil {
			qty = n
		}
		var t time.Time
		var prec model.Precision
		switch unit {
		case "day":
			t, prec = now.AddDate(0, 0, -qty), model.PrecisionDay
		case "week":
			t, prec = now.AddDate(0, 0, -7*qty), model.PrecisionWeek
		case "month":
			t, prec = now.AddDate(0, -qty, 0), model.PrecisionMonth
		case "year":
			t, prec = now.AddDate(-qty, 0, 0), model.PrecisionYear
		}
		matches = append(matches, match{loc[0], model.TemporalFact{Instant: t, Precision: prec}})
	}

	for _, loc := range reLastNextDow.FindAllStringSubmatchIndex(lower, -1) {
		dir := lower[loc[2]:loc[3]]
		dowName := lower[loc[4]:loc[5]]
		target := weekdays[dowName]
		t := nearestWeekday(now, target, dir == "last")
		matches = append(matches, match{loc[0], model.TemporalFact{Instant: t, Precision: model.PrecisionDay}})
	}

	for _, loc := range reLastNextVague.FindAllStringSubmatchIndex(lower, -1) {
		dir := lower[loc[2]:loc[3]]
		unit := lower[loc[4]:loc[5]]
		var t time.Time
		var prec model.Precision
		switch unit {
		case "week":
			delta := 0
			if dir == "last" {
				delta = -7
			} else if dir == "next" {
				delta = 7
			}
			t, prec = now.AddDate(0, 0, delta), model.PrecisionWeek
		case "month":
			delta := 0
			if dir == "last" {
				delta = -1
			} else if dir == "next" {
				delta = 1
			}
			t, prec = now.AddDate(0, delta, 0), model.PrecisionMonth
		case "year":
			delta := 0
			if dir == "last" {
				delta = -1
			} else if dir == "next" {
				delta = 1
			}
			t, prec = now.AddDate(delta, 0, 0), model.PrecisionYear
		}
		matches = append(matches, match{loc[0], model.TemporalFact{Instant: t, Precision: prec}})
	}

	for _, loc := range reMonthYear.FindAllStringSubmatchIndex(lower, -1) {
		monthName := lower[loc[2]:loc[3]]
		year := now.Year()
		if loc[4] != -1 {
			year, _ = strconv.Atoi(lower[loc[4]:loc[5]])
		}
		t := time.Date(year, months[monthName], 1, 0, 0, 0, 0, time.UTC)
		matches = append(matches, match{loc[0], model.TemporalFact{Instant: t, Precision: model.PrecisionMonth}})
	}

	sortMatchesByStart(matches)
	return matches
}

func findFirst(s, pattern string) []int {
	re := regexp.MustCompile(pattern)
	return re.FindStringIndex(s)
}

// nearestWeekday returns the most recent (past=true) or soonest
// (past=false) date that falls on target, excluding today.
func nearestWeekday(now time.Time, target time.Weekday, past bool) time.Time {
	cur := now
	for i := 0; i < 7; i++ {
		if past {
			cur = cur.AddDate(0, 0, -1)
		} else {
			cur = cur.AddDate(0, 0, 1)
		}
		if cur.Weekday() == target {
			return cur
		}
	}
	return now
}

func sortMatchesByStart(matches []match) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].start < matches[j-1].start; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}
