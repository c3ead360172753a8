// Package compliance combines overlap scoring with structural signals into a
// pass/fail verdict over a rewrite. A failing verdict is a normal, expected
// outcome that drives the caller's retry policy, never an error.
package compliance

import (
	"strings"

	"github.com/jonathan/recipe-share/internal/overlap"
	"github.com/jonathan/recipe-share/internal/types"
)

// Config holds the policy thresholds. Values are explicit so tests can
// tighten or loosen the gate.
type Config struct {
	// MaxWeightedOverlap is the ceiling on the weighted overall overlap.
	MaxWeightedOverlap float64
	// BorderlineFloor is the lower bound of the borderline band in which the
	// semantic proxy is computed even without forcing.
	BorderlineFloor float64
	// SemanticLimit fails a forced evaluation when the semantic proxy
	// reaches it.
	SemanticLimit float64
	// SemanticBoost scales the raw word-set overlap before clamping to 1.0.
	SemanticBoost float64
}

// DefaultConfig returns the production compliance policy.
func DefaultConfig() Config {
	return Config{
		MaxWeightedOverlap: 0.15,
		BorderlineFloor:    0.10,
		SemanticLimit:      0.80,
		SemanticBoost:      1.2,
	}
}

// Evaluator applies the compliance policy to rewritten instructions.
type Evaluator struct {
	cfg    Config
	scorer overlap.Scorer
}

// NewEvaluator creates an Evaluator with the given policy and scorer.
func NewEvaluator(cfg Config, scorer overlap.Scorer) *Evaluator {
	return &Evaluator{cfg: cfg, scorer: scorer}
}

// Evaluate scores rewritten instructions against the original. It never
// fails; low scores simply produce a non-passing verdict.
//
// The semantic average is a cheap lexical proxy, computed only when forced
// or when the weighted overlap lands in the borderline band. True semantic
// similarity is an external, swappable capability.
func (e *Evaluator) Evaluate(original, rewritten []string, forceSemanticCheck bool) types.ComplianceMetrics {
	originalText := strings.Join(original, " ")
	rewrittenText := strings.Join(rewritten, " ")

	passedGate, gateOverlap := e.scorer.Gate(originalText, rewrittenText)
	overall := e.scorer.WeightedOverlap(originalText, rewrittenText)

	semanticAvg := 0.0
	borderline := overall > e.cfg.BorderlineFloor && overall < e.cfg.MaxWeightedOverlap
	if forceSemanticCheck || borderline {
		semanticAvg = e.semanticProxy(originalText, rewrittenText)
	}

	passed := passedGate &&
		overall <= e.cfg.MaxWeightedOverlap &&
		(semanticAvg < e.cfg.SemanticLimit || !forceSemanticCheck)

	return types.ComplianceMetrics{
		NgramMaxOverlap:   max(gateOverlap, overall),
		SemanticAvg:       semanticAvg,
		StructureVariance: len(rewritten) != len(original),
		Passed:            passed,
	}
}

// semanticProxy computes a word-set overlap ratio boosted and clamped to
// 1.0. Words are normalized with the same tokenizer the n-gram scorer
// uses, so case and punctuation changes never lower the score.
func (e *Evaluator) semanticProxy(originalText, rewrittenText string) float64 {
	originalWords := wordSet(originalText)
	rewrittenWords := wordSet(rewrittenText)
	if len(rewrittenWords) == 0 {
		return 0.0
	}
	shared := 0
	for w := range rewrittenWords {
		if _, ok := originalWords[w]; ok {
			shared++
		}
	}
	score := float64(shared) / float64(len(rewrittenWords)) * e.cfg.SemanticBoost
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range overlap.Tokenize(text) {
		set[w] = struct{}{}
	}
	return set
}
