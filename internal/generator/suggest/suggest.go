// Package suggest offers "did you mean" candidates for misspelled
// dependent-target names in diagnostics.
package suggest

import (
	"sort"
	"strings"
)

const (
	maxDistance    = 3
	maxSuggestions = 3
)

type match struct {
	value    string
	distance int
}

// Similar returns up to three known names within edit distance three of
// target, closest first. Matching is case-insensitive.
func Similar(target string, known []string) []string {
	var matches []match
	lower := strings.ToLower(target)
	for _, k := range known {
		dist := levenshtein(lower, strings.ToLower(k))
		if dist <= maxDistance {
			matches = append(matches, match{value: k, distance: dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// Best returns the closest known name, or "" when nothing is close enough.
func Best(target string, known []string) string {
	matches := Similar(target, known)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// levenshtein is the minimum number of single-character edits between two
// strings.
func levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := 0; j <= len(s2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
