package scorer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinTermLength is the shortest query token that counts as a scoring term.
// Single characters are too common to be useful signals.
const MinTermLength = 2

var numberPattern = regexp.MustCompile(`\b\d+(\.\d+)?\b`)

// TermScorer ranks chunk text against a query by raw substring
// term-frequency. Matching is deliberately not word-boundary aware: a term
// occurring inside a larger word still counts. Existing indexes depend on
// that behavior.
type TermScorer struct{}

func NewTermScorer() *TermScorer { return &TermScorer{} }

// Normalize lower-cases text, collapses whitespace runs to single spaces and
// trims the ends. Both queries and chunk text go through it before matching.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Terms extracts the scoring terms of a query: normalized tokens of at least
// MinTermLength characters.
func Terms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTermLength {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// Score sums, over every term of the query, the number of occurrences of that
// term within the normalized chunk text. A query with no surviving terms
// scores zero.
func (s *TermScorer) Score(query, chunkText string) int {
	terms := Terms(query)
	if len(terms) == 0 {
		return 0
	}
	c := Normalize(chunkText)
	total := 0
	for _, t := range terms {
		total += strings.Count(c, t)
	}
	return total
}

// LooksQuantitative reports whether a query reads like a calculation
// question rather than factual recall: mentions of moles or grams, a
// standalone "g" token, or any numeral.
func (s *TermScorer) LooksQuantitative(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(q, "mole") {
		return true
	}
	if strings.Contains(q, "grams") || strings.Contains(" "+q+" ", " g ") {
		return true
	}
	return numberPattern.MatchString(q)
}
