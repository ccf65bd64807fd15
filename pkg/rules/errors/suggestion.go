package errors

import (
	"fmt"
	"strings"
)

// SuggestName suggests the closest valid name for an unknown word.
// It uses Levenshtein distance and only suggests reasonably close names.
func SuggestName(unknown string, valid []string) string {
	if len(valid) == 0 || unknown == "" {
		return ""
	}

	minDistance := 1000
	var bestMatch string

	for _, name := range valid {
		dist := levenshteinDistance(unknown, name)
		if dist < minDistance {
			minDistance = dist
			bestMatch = name
		}
	}

	if minDistance <= 2 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	return ""
}

// SuggestSelector suggests a selector for a word found where a selector was expected.
// The word is cut at the first pattern character so "hots*example.com" suggests 'host'.
func SuggestSelector(word string, selectors []string) string {
	if i := strings.IndexAny(word, "*:/."); i >= 0 {
		word = word[:i]
	}
	if s := SuggestName(strings.ToLower(word), selectors); s != "" {
		return s
	}
	return fmt.Sprintf("Valid selectors: %s", strings.Join(selectors, ", "))
}

// levenshteinDistance computes the Levenshtein distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}
