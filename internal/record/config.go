package record

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/llm-output-eval/internal/hash"
	"github.com/ogulcanaydogan/llm-output-eval/internal/score"
	"github.com/ogulcanaydogan/llm-output-eval/internal/store"
	"github.com/ogulcanaydogan/llm-output-eval/pkg/schema"
	"github.com/ogulcanaydogan/llm-output-eval/pkg/types"
)

const (
	ProjectConfigFile = "llmeval.yaml"
	DefaultGatePolicy = "policy/gates.yaml"
	DefaultFormat     = "json"
)

// ProjectConfig is the optional llmeval.yaml in the working directory.
type ProjectConfig struct {
	RecordDir  string `yaml:"record_dir"`
	GatePolicy string `yaml:"gate_policy"`
	Format     string `yaml:"format"`
}

// Input is the YAML document describing one evaluation.
type Input struct {
	Scores      types.EvaluationResult `yaml:"scores"`
	OutputFile  string                 `yaml:"output_file"`
	Annotations map[string]string      `yaml:"annotations"`
}

// SchemaError lists the schema violations found in a document.
type SchemaError struct {
	Source     string
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: schema invalid: %s", e.Source, strings.Join(e.Violations, "; "))
}

func LoadConfig(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		RecordDir:  store.DefaultRecordDir,
		GatePolicy: DefaultGatePolicy,
		Format:     DefaultFormat,
	}
}

// LoadProjectConfig overlays path onto the defaults. A missing file yields
// the defaults.
func LoadProjectConfig(path string) (ProjectConfig, error) {
	cfg := DefaultProjectConfig()
	if path == "" || !hash.FileExists(path) {
		return cfg, nil
	}
	var file ProjectConfig
	if err := LoadConfig(path, &file); err != nil {
		return ProjectConfig{}, err
	}
	if file.RecordDir != "" {
		cfg.RecordDir = file.RecordDir
	}
	if file.GatePolicy != "" {
		cfg.GatePolicy = file.GatePolicy
	}
	if file.Format != "" {
		cfg.Format = file.Format
	}
	log.Debugf("loaded project config %s: %+v", path, cfg)
	return cfg, nil
}

// LoadInput reads and schema-checks an input document. Finite out-of-range
// scores are left for the evaluator; NaN and Inf are rejected here since
// they cannot be encoded for the schema check.
func LoadInput(path string) (Input, error) {
	var doc map[string]any
	if err := LoadConfig(path, &doc); err != nil {
		return Input{}, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if err := checkFinite(doc); err != nil {
		return Input{}, err
	}
	errs, err := schema.ValidateBuiltin(schema.InputSchema, doc)
	if err != nil {
		return Input{}, err
	}
	if len(errs) > 0 {
		return Input{}, &SchemaError{Source: path, Violations: errs}
	}

	var in Input
	if err := LoadConfig(path, &in); err != nil {
		return Input{}, err
	}
	in.OutputFile = resolvePath(path, in.OutputFile)
	return in, nil
}

// checkFinite reports NaN or Inf scores as validation errors. Once one is
// present every score is range-checked in metric order so the first
// violation is the one reported, as the evaluator would.
func checkFinite(doc map[string]any) error {
	scores, ok := doc["scores"].(map[string]any)
	if !ok {
		return nil
	}
	finite := true
	for _, m := range types.InputMetrics() {
		if v, ok := scores[m.String()].(float64); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
			finite = false
		}
	}
	if finite {
		return nil
	}
	for _, m := range types.InputMetrics() {
		var v float64
		switch n := scores[m.String()].(type) {
		case float64:
			v = n
		case int:
			v = float64(n)
		default:
			continue
		}
		if err := score.ValidateScore(m, v); err != nil {
			return err
		}
	}
	return nil
}

// resolvePath keeps candidate when it exists relative to the working
// directory and otherwise tries it relative to the config file.
func resolvePath(configPath, candidate string) string {
	if candidate == "" || filepath.IsAbs(candidate) {
		return candidate
	}
	if hash.FileExists(candidate) {
		return candidate
	}
	joined := filepath.Clean(filepath.Join(filepath.Dir(configPath), candidate))
	if hash.FileExists(joined) {
		return joined
	}
	return candidate
}
