// Package overlap computes n-gram extraction and weighted, hard-gated
// overlap ratios between two plain-text strings. All functions are pure and
// stateless; thresholds live in the Scorer configuration so tests can inject
// alternates.
package overlap

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// Tokenize lower-cases the text, strips all non-word, non-space characters
// and splits on whitespace.
func Tokenize(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), "")
	return strings.Fields(cleaned)
}

// Ngrams returns the set of all contiguous n-word windows of the normalized
// text, each joined with a single space. The set is empty when the text has
// fewer than n words.
func Ngrams(text string, n int) map[string]struct{} {
	grams := make(map[string]struct{})
	if n <= 0 {
		return grams
	}
	words := Tokenize(text)
	for i := 0; i+n <= len(words); i++ {
		grams[strings.Join(words[i:i+n], " ")] = struct{}{}
	}
	return grams
}

// Ratio computes |source∩candidate| / |candidate| over n-gram sets.
// It is 0.0 when either set is empty, so trivially short text can never
// produce a false positive.
func Ratio(source, candidate string, n int) float64 {
	src := Ngrams(source, n)
	cand := Ngrams(candidate, n)
	if len(src) == 0 || len(cand) == 0 {
		return 0.0
	}
	shared := 0
	for gram := range cand {
		if _, ok := src[gram]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(cand))
}

// Scorer holds the gate size and combination weights for overlap scoring.
type Scorer struct {
	// GateSize is the n-gram length of the hard gate.
	GateSize int
	// GateLimit is the near-zero tolerance of the hard gate.
	GateLimit float64
	// Weights combines per-n overlap ratios into the weighted score. Longer
	// matches carry heavier weights.
	Weights map[int]float64
}

// DefaultScorer returns the production scoring policy: an 8-gram gate at
// 0.01 and monotonically increasing weights over n in [3,8].
func DefaultScorer() Scorer {
	return Scorer{
		GateSize:  8,
		GateLimit: 0.01,
		Weights: map[int]float64{
			3: 0.05,
			4: 0.10,
			5: 0.15,
			6: 0.20,
			7: 0.25,
			8: 0.25,
		},
	}
}

// Gate applies the hard near-zero-tolerance gate against verbatim runs of
// GateSize words. It returns whether the candidate passed and the measured
// overlap.
func (s Scorer) Gate(source, candidate string) (passed bool, overlap float64) {
	overlap = Ratio(source, candidate, s.GateSize)
	return overlap < s.GateLimit, overlap
}

// WeightedOverlap computes the weighted sum of overlap ratios across all
// configured n-gram sizes. The policy threshold on the result is enforced by
// the caller, not here.
func (s Scorer) WeightedOverlap(source, candidate string) float64 {
	total := 0.0
	for n, weight := range s.Weights {
		total += weight * Ratio(source, candidate, n)
	}
	return total
}
