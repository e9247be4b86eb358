// Package score computes the weighted overall score of an evaluated model
// output from its four normalized sub-scores.
//
// Weights are fixed: accuracy 0.4, relevance 0.3, clarity 0.2, instruction
// adherence 0.1. The weighted sum is computed in exact decimal arithmetic on
// the shortest decimal form of each input and rounded to three places, half
// away from zero. Everything in this package is pure and safe for concurrent
// use.
package score

import (
	"github.com/shopspring/decimal"

	"github.com/ogulcanaydogan/llm-output-eval/pkg/types"
)

// RoundingPolicy names the rounding rule applied to the overall score.
const RoundingPolicy = "half_away_from_zero"

// Places is the number of decimal places kept in the overall score.
const Places = 3

var weights = [types.NumMetrics]decimal.Decimal{
	types.Accuracy:             decimal.RequireFromString("0.4"),
	types.Relevance:            decimal.RequireFromString("0.3"),
	types.Clarity:              decimal.RequireFromString("0.2"),
	types.InstructionAdherence: decimal.RequireFromString("0.1"),
}

// Weight returns the fixed weight of an input metric, or 0 for Overall.
func Weight(m types.Metric) float64 {
	if m < 0 || int(m) >= types.NumMetrics {
		return 0
	}
	return weights[m].InexactFloat64()
}

// Weights returns a copy of the fixed weights keyed by metric name.
func Weights() map[string]float64 {
	out := make(map[string]float64, types.NumMetrics)
	for _, m := range types.InputMetrics() {
		out[m.String()] = Weight(m)
	}
	return out
}

// ValidateScore checks that v lies in the closed interval [0, 1].
// NaN and infinities are rejected.
func ValidateScore(m types.Metric, v float64) error {
	if !(v >= 0.0 && v <= 1.0) {
		return &ValidationError{Metric: m, Value: v}
	}
	return nil
}

// NewResult validates the four sub-scores in weighting order and returns the
// first violation found.
func NewResult(accuracy, relevance, clarity, instructionAdherence float64) (types.EvaluationResult, error) {
	r := types.EvaluationResult{
		Accuracy:             accuracy,
		Relevance:            relevance,
		Clarity:              clarity,
		InstructionAdherence: instructionAdherence,
	}
	values := r.Values()
	for _, m := range types.InputMetrics() {
		if err := ValidateScore(m, values[m]); err != nil {
			return types.EvaluationResult{}, err
		}
	}
	return r, nil
}

// OverallScore returns the weighted sum of r rounded to Places decimals.
// r must already be validated.
func OverallScore(r types.EvaluationResult) float64 {
	values := r.Values()
	sum := decimal.Zero
	for _, m := range types.InputMetrics() {
		sum = sum.Add(decimal.NewFromFloat(values[m]).Mul(weights[m]))
	}
	return sum.Round(Places).InexactFloat64()
}

// Evaluate validates the sub-scores and returns them together with the
// overall score. No partial output is returned on error.
func Evaluate(accuracy, relevance, clarity, instructionAdherence float64) (types.EvaluationOutput, error) {
	r, err := NewResult(accuracy, relevance, clarity, instructionAdherence)
	if err != nil {
		return nil, err
	}
	return output(r), nil
}

// EvaluateResult is Evaluate with the sub-scores addressed by name.
func EvaluateResult(in types.EvaluationResult) (types.EvaluationOutput, error) {
	return Evaluate(in.Accuracy, in.Relevance, in.Clarity, in.InstructionAdherence)
}

func output(r types.EvaluationResult) types.EvaluationOutput {
	return types.EvaluationOutput{
		types.KeyAccuracy:             r.Accuracy,
		types.KeyRelevance:            r.Relevance,
		types.KeyClarity:              r.Clarity,
		types.KeyInstructionAdherence: r.InstructionAdherence,
		types.KeyOverallScore:         OverallScore(r),
	}
}
