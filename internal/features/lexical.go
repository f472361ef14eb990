package features

import (
	"math"
	"strings"
	"unicode"
)

// ShannonEntropy measures unigram character-frequency unpredictability of
// the whole string, in bits per character. Randomized or generated domains
// score high; a single repeated character scores 0, as does "".
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}

	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}

	entropy := 0.0
	n := float64(total)
	for _, count := range freq {
		p := float64(count) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// charRatios returns (digit ratio, special-char ratio) over the full
// string length. Empty input yields zeros.
func charRatios(s string) (float64, float64) {
	if s == "" {
		return 0, 0
	}

	digits, specials, total := 0, 0, 0
	for _, r := range s {
		total++
		switch {
		case unicode.IsDigit(r):
			digits++
		case !unicode.IsLetter(r):
			specials++
		}
	}
	return float64(digits) / float64(total), float64(specials) / float64(total)
}

// countEncodedTriplets counts %XX percent-encoding sequences.
func countEncodedTriplets(s string) int {
	n := 0
	for i := 0; i+2 < len(s); i++ {
		if s[i] == '%' && isHexDigit(s[i+1]) && isHexDigit(s[i+2]) {
			n++
		}
	}
	return n
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// longestAlphaRun returns the length of the longest purely alphabetic
// token in the label.
func longestAlphaRun(label string) int {
	longest, run := 0, 0
	for _, r := range label {
		if unicode.IsLetter(r) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// splitTokens breaks a label on every non-alphanumeric character.
func splitTokens(label string) []string {
	return strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// similarity is 1 minus the Levenshtein distance normalized by the longer
// string's length, so identical strings score 1 and disjoint ones approach 0.
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes classic single-character edit distance with a
// two-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
