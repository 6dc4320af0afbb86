// Package similarity abstracts fuzzy string scoring so classification and
// deduplication decisions stay testable independent of the algorithm.
package similarity

import fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

// Scorer reports similarity between two strings on a 0..100 scale.
type Scorer interface {
	// Ratio scores full-string similarity.
	Ratio(a, b string) int
	// PartialRatio scores the best-matching substring alignment, which
	// tolerates one side being embedded in a longer text.
	PartialRatio(a, b string) int
}

// Levenshtein is the default Scorer, backed by the fuzzywuzzy port
// (same scale and semantics as the ratio/partial_ratio pair).
type Levenshtein struct{}

func (Levenshtein) Ratio(a, b string) int        { return fuzzy.Ratio(a, b) }
func (Levenshtein) PartialRatio(a, b string) int { return fuzzy.PartialRatio(a, b) }
