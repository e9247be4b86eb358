package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ogulcanaydogan/llm-output-eval/internal/hash"
	"github.com/ogulcanaydogan/llm-output-eval/internal/report"
	"github.com/ogulcanaydogan/llm-output-eval/internal/score"
	"github.com/ogulcanaydogan/llm-output-eval/internal/store"
	"github.com/ogulcanaydogan/llm-output-eval/pkg/schema"
	"github.com/ogulcanaydogan/llm-output-eval/pkg/types"
)

var (
	now   = func() time.Time { return time.Now().UTC() }
	newID = uuid.NewString
)

type CreateOptions struct {
	Input            Input
	OutDir           string
	DeterminismCheck int
}

// Build evaluates in and wraps the result in a new record.
func Build(in Input) (types.Record, error) {
	scores, err := score.EvaluateResult(in.Scores)
	if err != nil {
		return types.Record{}, err
	}
	rec := types.Record{
		SchemaVersion: types.RecordSchemaVersion,
		RecordID:      newID(),
		GeneratedAt:   now().Format(time.RFC3339),
		Generator: types.Generator{
			Name:    types.GeneratorName,
			Version: types.GeneratorVersion,
		},
		Scores:   scores,
		Weights:  score.Weights(),
		Rounding: score.RoundingPolicy,
	}
	if in.OutputFile != "" {
		subject, err := subjectFromPath(in.OutputFile)
		if err != nil {
			return types.Record{}, err
		}
		rec.Subject = &subject
	}
	if len(in.Annotations) > 0 {
		rec.Annotations = make(map[string]string, len(in.Annotations))
		for k, v := range in.Annotations {
			rec.Annotations[k] = v
		}
	}
	return rec, nil
}

// Create builds a record, optionally re-building it DeterminismCheck-1 more
// times to confirm the content is stable, and writes it to OutDir.
func Create(opts CreateOptions) (string, types.Record, error) {
	rec, err := Build(opts.Input)
	if err != nil {
		return "", types.Record{}, err
	}

	if opts.DeterminismCheck > 1 {
		first, _, err := hash.HashCanonicalJSON(rec)
		if err != nil {
			return "", types.Record{}, err
		}
		for i := 0; i < opts.DeterminismCheck-1; i++ {
			again, err := Build(opts.Input)
			if err != nil {
				return "", types.Record{}, err
			}
			again.RecordID = rec.RecordID
			again.GeneratedAt = rec.GeneratedAt
			next, _, err := hash.HashCanonicalJSON(again)
			if err != nil {
				return "", types.Record{}, err
			}
			if first != next {
				return "", types.Record{}, fmt.Errorf("determinism check failed: %s != %s", first, next)
			}
			log.Debugf("determinism round %d: %s", i+2, next)
		}
	}

	raw, err := report.BuildJSON(rec)
	if err != nil {
		return "", types.Record{}, err
	}
	path, err := store.Save(opts.OutDir, FileName(rec), raw)
	if err != nil {
		return "", types.Record{}, err
	}
	return path, rec, nil
}

func FileName(rec types.Record) string {
	return fmt.Sprintf("record_%s.json", rec.RecordID)
}

// Load reads a record file and checks it against the record schema.
func Load(path string) (types.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Record{}, fmt.Errorf("read record %s: %w", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return types.Record{}, fmt.Errorf("parse record %s: %w", path, err)
	}
	errs, err := schema.ValidateBuiltin(schema.RecordSchema, doc)
	if err != nil {
		return types.Record{}, err
	}
	if len(errs) > 0 {
		return types.Record{}, &SchemaError{Source: path, Violations: errs}
	}
	var rec types.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return types.Record{}, fmt.Errorf("decode record %s: %w", path, err)
	}
	if errs := checkScores(rec.Scores); len(errs) > 0 {
		return types.Record{}, &SchemaError{Source: path, Violations: errs}
	}
	return rec, nil
}

// checkScores re-evaluates the stored sub-scores and reports a stored
// overall_score that disagrees with the result.
func checkScores(stored types.EvaluationOutput) []string {
	var in types.EvaluationResult
	in.Accuracy, _ = stored.Get(types.Accuracy)
	in.Relevance, _ = stored.Get(types.Relevance)
	in.Clarity, _ = stored.Get(types.Clarity)
	in.InstructionAdherence, _ = stored.Get(types.InstructionAdherence)
	want, err := score.EvaluateResult(in)
	if err != nil {
		return []string{err.Error()}
	}
	if got := stored.Overall(); got != want.Overall() {
		return []string{fmt.Sprintf("%s: stored %v does not match recomputed %v", types.KeyOverallScore, got, want.Overall())}
	}
	return nil
}
