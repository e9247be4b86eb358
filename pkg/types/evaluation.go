package types

import "fmt"

// Metric identifies one of the normalized sub-scores of an evaluation.
type Metric int

const (
	Accuracy Metric = iota
	Relevance
	Clarity
	InstructionAdherence
	// Overall is the derived weighted score. It is not an input metric.
	Overall
)

// NumMetrics is the number of input sub-scores.
const NumMetrics = 4

const (
	KeyAccuracy             = "accuracy"
	KeyRelevance            = "relevance"
	KeyClarity              = "clarity"
	KeyInstructionAdherence = "instruction_adherence"
	KeyOverallScore         = "overall_score"
)

var metricNames = [...]string{
	Accuracy:             KeyAccuracy,
	Relevance:            KeyRelevance,
	Clarity:              KeyClarity,
	InstructionAdherence: KeyInstructionAdherence,
	Overall:              KeyOverallScore,
}

func (m Metric) String() string {
	if m < 0 || int(m) >= len(metricNames) {
		return fmt.Sprintf("metric(%d)", int(m))
	}
	return metricNames[m]
}

// InputMetrics returns the four sub-score metrics in weighting order.
func InputMetrics() []Metric {
	return []Metric{Accuracy, Relevance, Clarity, InstructionAdherence}
}

func ParseMetric(name string) (Metric, error) {
	for i, n := range metricNames {
		if n == name {
			return Metric(i), nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", name)
}

// EvaluationResult holds the four validated sub-scores of one evaluation.
// Values are only meaningful when built through score.NewResult.
type EvaluationResult struct {
	Accuracy             float64 `json:"accuracy" yaml:"accuracy"`
	Relevance            float64 `json:"relevance" yaml:"relevance"`
	Clarity              float64 `json:"clarity" yaml:"clarity"`
	InstructionAdherence float64 `json:"instruction_adherence" yaml:"instruction_adherence"`
}

// Values returns the sub-scores indexed by Metric.
func (r EvaluationResult) Values() [NumMetrics]float64 {
	return [NumMetrics]float64{
		Accuracy:             r.Accuracy,
		Relevance:            r.Relevance,
		Clarity:              r.Clarity,
		InstructionAdherence: r.InstructionAdherence,
	}
}

// EvaluationOutput maps metric names to values: the four echoed inputs plus
// overall_score.
type EvaluationOutput map[string]float64

func (o EvaluationOutput) Get(m Metric) (float64, bool) {
	v, ok := o[m.String()]
	return v, ok
}

func (o EvaluationOutput) Overall() float64 {
	return o[KeyOverallScore]
}
