package answerer

import (
	"sort"
	"strings"
	"unicode/utf8"

	"orgopivy/internal/domain"
	"orgopivy/internal/scorer"
)

// DefaultMaxSentences caps how many sentences an answer is assembled from.
const DefaultMaxSentences = 5

// NoAnswerFallback is returned when the query has no usable terms or no
// results were supplied.
const NoAnswerFallback = "No answer found in your uploaded materials yet"

// Sentences shorter than this carry too little information to quote.
const minSentenceLength = 25

// When no sentence matches, the head of the top result is returned instead,
// capped at this many characters.
const fallbackHeadLength = 600

// ExtractiveAnswerer builds an answer by selecting and deduplicating the
// most term-relevant sentences from ranked chunks. Unlike chunk scoring,
// each query term counts at most once per sentence; the asymmetry favors
// sentences covering many terms over sentences repeating one.
type ExtractiveAnswerer struct{}

func NewExtractiveAnswerer() *ExtractiveAnswerer { return &ExtractiveAnswerer{} }

// Synthesize never fails: every input shape maps to a defined fallback.
func (a *ExtractiveAnswerer) Synthesize(query string, results []domain.ScoredChunk, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	terms := scorer.Terms(query)
	if len(terms) == 0 || len(results) == 0 {
		return NoAnswerFallback
	}

	type candidate struct {
		hits int
		text string
	}
	var candidates []candidate
	for _, r := range results {
		for _, raw := range SplitSentences(r.Text) {
			s := strings.TrimSpace(raw)
			if utf8.RuneCountInString(s) < minSentenceLength {
				continue
			}
			normalized := scorer.Normalize(s)
			hits := 0
			for _, t := range terms {
				if strings.Contains(normalized, t) {
					hits++
				}
			}
			if hits > 0 {
				candidates = append(candidates, candidate{hits: hits, text: s})
			}
		}
	}

	if len(candidates) == 0 {
		return truncateRunes(strings.TrimSpace(results[0].Text), fallbackHeadLength)
	}

	// Stable: ties keep result-rank order, then in-text order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].hits > candidates[j].hits
	})

	picked := make([]string, 0, maxSentences)
	seen := make(map[string]struct{})
	for _, c := range candidates {
		key := scorer.Normalize(c.text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		picked = append(picked, c.text)
		if len(picked) >= maxSentences {
			break
		}
	}
	return strings.Join(picked, " ")
}

// SplitSentences cuts text into sentence-like units. A boundary is
// sentence-ending punctuation followed by whitespace (the whitespace is
// consumed), or any run of newlines. Implemented as an explicit scan so the
// boundary rule stays exact.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	i := 0
	n := len(text)
	for i < n {
		switch {
		case i > start && isSpace(text[i]) && isSentenceEnd(text[i-1]):
			out = append(out, text[start:i])
			for i < n && isSpace(text[i]) {
				i++
			}
			start = i
		case text[i] == '\n':
			out = append(out, text[start:i])
			for i < n && text[i] == '\n' {
				i++
			}
			start = i
		default:
			i++
		}
	}
	if start < n {
		out = append(out, text[start:])
	}
	return out
}

func isSentenceEnd(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
