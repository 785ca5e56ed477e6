// Package postal pulls a Canadian postal code out of a speech transcript.
package postal

import (
	"regexp"
	"strings"
)

// Confidence grades how much of a postal code was recovered.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Result is the outcome of Extract.
type Result struct {
	OK         bool       `json:"ok"`
	Raw        string     `json:"raw"`
	Postal     string     `json:"postal,omitempty"`
	FSA        string     `json:"fsa,omitempty"`
	Confidence Confidence `json:"confidence"`
}

// Code returns the most specific value recovered: the full code when
// available, otherwise the forward sortation area.
func (r Result) Code() string {
	if r.Postal != "" {
		return r.Postal
	}
	return r.FSA
}

type wordFix struct {
	pattern *regexp.Regexp
	digit   string
}

// Whole-word replacements for spelled-out digits. The only homophones mapped
// are TO, FOR, OH and a bare O.
var wordFixes = []wordFix{
	{regexp.MustCompile(`\b(ZERO|OH|O)\b`), "0"},
	{regexp.MustCompile(`\bONE\b`), "1"},
	{regexp.MustCompile(`\b(TWO|TO)\b`), "2"},
	{regexp.MustCompile(`\bTHREE\b`), "3"},
	{regexp.MustCompile(`\b(FOUR|FOR)\b`), "4"},
	{regexp.MustCompile(`\bFIVE\b`), "5"},
	{regexp.MustCompile(`\bSIX\b`), "6"},
	{regexp.MustCompile(`\bSEVEN\b`), "7"},
	{regexp.MustCompile(`\bEIGHT\b`), "8"},
	{regexp.MustCompile(`\bNINE\b`), "9"},
}

var (
	nonAlnum    = regexp.MustCompile(`[^A-Z0-9]`)
	fullPattern = regexp.MustCompile(`[A-Z]\d[A-Z]\d[A-Z]\d`)
	fsaPattern  = regexp.MustCompile(`[A-Z]\d[A-Z]`)
)

// Normalize uppercases the transcript, applies the word-to-digit fixes and
// strips everything that is not a letter or digit.
func Normalize(transcript string) string {
	s := strings.ToUpper(transcript)
	for _, fix := range wordFixes {
		s = fix.pattern.ReplaceAllString(s, fix.digit)
	}
	return nonAlnum.ReplaceAllString(s, "")
}

// Extract recovers a postal code ("V5J 1N4", high confidence) or just its
// FSA ("V5J", medium confidence) from a noisy transcript.
func Extract(transcript string) Result {
	raw := strings.ToUpper(transcript)
	cleaned := Normalize(transcript)

	if code := fullPattern.FindString(cleaned); code != "" {
		return Result{
			OK:         true,
			Raw:        raw,
			Postal:     code[:3] + " " + code[3:],
			FSA:        code[:3],
			Confidence: ConfidenceHigh,
		}
	}
	if fsa := fsaPattern.FindString(cleaned); fsa != "" {
		return Result{OK: true, Raw: raw, FSA: fsa, Confidence: ConfidenceMedium}
	}
	return Result{OK: false, Raw: raw, Confidence: ConfidenceLow}
}

// AtLeast reports whether c is as good as or better than min.
func (c Confidence) AtLeast(min Confidence) bool {
	return rank(c) >= rank(min)
}

func rank(c Confidence) int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}
