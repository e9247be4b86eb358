// Package gate applies YAML threshold policies to evaluation scores.
package gate

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	goyaml "gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/llm-output-eval/pkg/types"
)

type Policy struct {
	Version string `yaml:"version"`
	Gates   []Gate `yaml:"gates"`
}

// Gate bounds one metric. At least one of Min and Max must be set.
type Gate struct {
	ID      string   `yaml:"id"`
	Metric  string   `yaml:"metric"`
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	Message string   `yaml:"message"`
}

func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy %s: %w", path, err)
	}
	var p Policy
	if err := goyaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}
	if err := Validate(p); err != nil {
		return Policy{}, fmt.Errorf("policy %s: %w", path, err)
	}
	return p, nil
}

// Validate reports every malformed gate in p.
func Validate(p Policy) error {
	var errs []error
	seen := make(map[string]struct{}, len(p.Gates))
	for i, g := range p.Gates {
		name := g.ID
		if name == "" {
			name = "gates[" + strconv.Itoa(i) + "]"
			errs = append(errs, fmt.Errorf("%s: id is required", name))
		} else if _, dup := seen[g.ID]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate gate id", name))
		}
		seen[g.ID] = struct{}{}

		if _, err := types.ParseMetric(g.Metric); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		if g.Min == nil && g.Max == nil {
			errs = append(errs, fmt.Errorf("%s: min or max is required", name))
		}
		for _, b := range []*float64{g.Min, g.Max} {
			if b != nil && !(*b >= 0 && *b <= 1) {
				errs = append(errs, fmt.Errorf("%s: bound %v outside [0, 1]", name, *b))
			}
		}
		if g.Min != nil && g.Max != nil && *g.Min > *g.Max {
			errs = append(errs, fmt.Errorf("%s: min %v greater than max %v", name, *g.Min, *g.Max))
		}
	}
	return errors.Join(errs...)
}

// Evaluate returns one message per violated gate, in policy order.
func Evaluate(policy Policy, scores types.EvaluationOutput) ([]string, error) {
	violations := make([]string, 0)
	for _, g := range policy.Gates {
		m, err := types.ParseMetric(g.Metric)
		if err != nil {
			return nil, fmt.Errorf("gate %s: %w", g.ID, err)
		}
		v, ok := scores.Get(m)
		if !ok {
			return nil, fmt.Errorf("gate %s: scores have no %s", g.ID, m)
		}
		var detail string
		switch {
		case g.Min != nil && v < *g.Min:
			detail = fmt.Sprintf("%s: %s %v below min %v", g.ID, m, v, *g.Min)
		case g.Max != nil && v > *g.Max:
			detail = fmt.Sprintf("%s: %s %v above max %v", g.ID, m, v, *g.Max)
		default:
			continue
		}
		if g.Message != "" {
			detail = g.Message
		}
		violations = append(violations, detail)
	}
	return violations, nil
}
