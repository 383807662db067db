// Package similartext formats a "maybe you mean X?" suggestion clause
// for autherrors messages, using internal/text_distance to find the
// closest candidate name(s) by edit distance. Grounded on the teacher's
// own similartext package, used the same way to soften unknown-name
// errors across the engine.
package similartext

import (
	"strings"

	"github.com/CUBRID/cubrid-sub018/internal/text_distance"
)

// maxSuggestDistance bounds how different a candidate may be from the
// queried name before it stops being a plausible typo.
const maxSuggestDistance = 3

// Find returns a ", maybe you mean X?" (or "X or Y?" for ties) clause
// for the names closest to name, or "" if names is empty, name is
// empty, or nothing is close enough to be a plausible suggestion.
func Find(names []string, name string) string {
	return format(closest(names, name))
}

// FindFromMap is Find over a map's keys.
func FindFromMap[V any](names map[string]V, name string) string {
	if len(names) == 0 {
		return ""
	}
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	return Find(keys, name)
}

func closest(names []string, name string) []string {
	if len(names) == 0 || name == "" {
		return nil
	}

	best := -1
	var matches []string
	for _, candidate := range names {
		d := text_distance.Levenshtein(candidate, name)
		switch {
		case best == -1 || d < best:
			best = d
			matches = []string{candidate}
		case d == best:
			matches = append(matches, candidate)
		}
	}
	if best > maxSuggestDistance {
		return nil
	}
	return matches
}

func format(matches []string) string {
	if len(matches) == 0 {
		return ""
	}
	return ", maybe you mean " + strings.Join(matches, " or ") + "?"
}
