package textmatch

import (
	"math"
	"strings"
)

// DefaultThreshold is the minimum fuzzy score accepted as a vocabulary hit.
const DefaultThreshold = 0.62

// Method records how a phrase was normalized.
type Method string

const (
	MethodAlias Method = "alias"
	MethodFuzzy Method = "fuzzy"
)

// Result is the outcome of one normalization call.
type Result struct {
	Raw        string  `json:"raw"`
	Normalized string  `json:"normalized"`
	Score      float64 `json:"score"`
	Method     Method  `json:"method"`
}

// Matcher maps spoken phrases onto a fixed vocabulary.
type Matcher struct {
	vocabulary []string
	aliases    map[string]string
	threshold  float64
}

// NewMatcher builds a matcher. Alias keys are cleaned so callers can write
// them naturally.
func NewMatcher(vocabulary []string, aliases map[string]string) *Matcher {
	cleaned := make(map[string]string, len(aliases))
	for k, v := range aliases {
		cleaned[Clean(k)] = v
	}
	vocab := make([]string, len(vocabulary))
	copy(vocab, vocabulary)
	return &Matcher{vocabulary: vocab, aliases: cleaned, threshold: DefaultThreshold}
}

// Vocabulary returns a copy of the canonical entries, e.g. for speech hints.
func (m *Matcher) Vocabulary() []string {
	out := make([]string, len(m.vocabulary))
	copy(out, m.vocabulary)
	return out
}

// Normalize returns the best canonical value for spoken.
func (m *Matcher) Normalize(spoken string) Result {
	raw := strings.TrimSpace(spoken)
	cleaned := Clean(raw)

	if cleaned != "" {
		if canonical, ok := m.aliases[cleaned]; ok {
			return Result{Raw: raw, Normalized: canonical, Score: 1, Method: MethodAlias}
		}
	}

	best, bestScore := "", 0.0
	for _, entry := range m.vocabulary {
		if s := Similarity(cleaned, entry); s > bestScore {
			best, bestScore = entry, s
		}
	}

	normalized := raw
	if bestScore >= m.threshold || normalized == "" {
		normalized = best
	}
	return Result{
		Raw:        raw,
		Normalized: normalized,
		Score:      math.Round(bestScore*1000) / 1000,
		Method:     MethodFuzzy,
	}
}
