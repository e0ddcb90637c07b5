package fuzzy

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Similarity returns a normalized edit-distance score in [0, 1] between two
// strings: 1 - lev(a, b) / max(len(a), len(b)). Inputs are trimmed,
// case-folded, and NFC-normalized first so formatting noise from scans does
// not count as divergence. Two empty strings compare as 1.0; exactly one
// empty string compares as 0.0.
func Similarity(a, b string) float64 {
	ra := []rune(Normalize(a))
	rb := []rune(Normalize(b))

	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

// Normalize applies the canonical form used for comparisons: NFC
// normalization, whitespace trimming, and lower-casing.
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(value)))
}

// levenshtein computes the classic single-character insert/delete/substitute
// distance using the two-row dynamic programming form.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
