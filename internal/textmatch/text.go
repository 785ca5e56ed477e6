// Package textmatch cleans noisy speech transcripts and matches them against
// fixed vocabularies (pickup cities, vehicle makes).
package textmatch

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Clean lowercases s, turns every rune that is not a letter, digit or space
// into a space, collapses runs of whitespace and trims the result.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity scores a against b in [0,1] after cleaning both:
// 1 - distance/longest. Two empty strings score 0.
func Similarity(a, b string) float64 {
	ca, cb := Clean(a), Clean(b)
	longest := max(len([]rune(ca)), len([]rune(cb)))
	if longest == 0 {
		return 0
	}
	// ComputeDistance counts runes, not bytes.
	return 1 - float64(levenshtein.ComputeDistance(ca, cb))/float64(longest)
}

// TitleCase cleans s and capitalizes each word ("f 150" -> "F 150").
func TitleCase(s string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Title(language.English).String(Clean(s))
}
