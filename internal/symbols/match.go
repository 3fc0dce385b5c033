package symbols

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// MatchPolicy selects how a filter string selects entries.
type MatchPolicy string

// Match policies.
const (
	// MatchSubstring keeps entries whose name contains the filter,
	// case-insensitively, in source order.
	MatchSubstring MatchPolicy = "substring"

	// MatchFuzzy keeps entries whose name contains the filter's characters in
	// order and ranks them by score.
	MatchFuzzy MatchPolicy = "fuzzy"
)

// ParseMatchPolicy parses a policy name. Unknown names yield substring.
func ParseMatchPolicy(s string) (MatchPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "substring":
		return MatchSubstring, true
	case "fuzzy":
		return MatchFuzzy, true
	default:
		return MatchSubstring, false
	}
}

// Filter applies the policy to entries, which must be in source order. An
// empty filter returns a copy of entries. The input is never modified.
func Filter(entries []Entry, filter string, policy MatchPolicy) []Entry {
	query := strings.ToLower(strings.TrimSpace(filter))
	if query == "" {
		return cloneEntries(entries)
	}
	if policy == MatchFuzzy {
		return fuzzyFilter(entries, query)
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), query) {
			out = append(out, e)
		}
	}
	SortBySource(out)
	return out
}

type scored struct {
	entry    Entry
	score    int
	distance int
}

func fuzzyFilter(entries []Entry, query string) []Entry {
	queryRunes := []rune(query)
	results := make([]scored, 0, len(entries))
	for _, e := range entries {
		score := fuzzyScore(queryRunes, e.Name)
		if score <= 0 {
			continue
		}
		results = append(results, scored{
			entry:    e,
			score:    score,
			distance: levenshtein.ComputeDistance(strings.ToLower(e.Name), query),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		return lessBySource(a.entry, b.entry)
	})

	out := make([]Entry, len(results))
	for i, r := range results {
		out[i] = r.entry
	}
	return out
}

// fuzzyScore scores name against a lower-cased query. Zero means no match.
func fuzzyScore(queryRunes []rune, name string) int {
	if name == "" || len(queryRunes) == 0 {
		return 0
	}
	originalRunes := []rune(name)
	textRunes := []rune(strings.ToLower(name))

	// Greedy left-to-right scan for the query characters.
	matches := make([]int, 0, len(queryRunes))
	qi := 0
	for i := 0; i < len(textRunes) && qi < len(queryRunes); i++ {
		if textRunes[i] == queryRunes[qi] {
			matches = append(matches, i)
			qi++
		}
	}
	if qi != len(queryRunes) {
		return 0
	}

	score := 100
	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			score += 20
		}
	}
	for _, idx := range matches {
		if isWordBoundary(originalRunes, idx) {
			score += 15
		}
	}
	if matches[0] == 0 {
		score += 25
	}
	if gap := matches[len(matches)-1] - matches[0] - len(matches) + 1; gap > 0 {
		score -= gap * 2
	}
	score -= matches[0]
	if n := len(textRunes); n < 20 {
		score += 20 - n
	}
	if strings.HasPrefix(string(textRunes), string(queryRunes)) {
		score += 50
	}
	if score < 1 {
		score = 1
	}
	return score
}

func isWordBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}
	prev, cur := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}
