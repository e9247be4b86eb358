package record

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/llm-output-eval/internal/hash"
	"github.com/ogulcanaydogan/llm-output-eval/internal/report"
	"github.com/ogulcanaydogan/llm-output-eval/internal/score"
	"github.com/ogulcanaydogan/llm-output-eval/pkg/types"
)

func fixedClock(t *testing.T) {
	t.Helper()
	origNow, origID := now, newID
	t.Cleanup(func() { now, newID = origNow, origID })
	now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }
	newID = func() string { return "0b6f4c52-8a0e-4d59-9a43-5f6d0d1c2e3f" }
}

func sampleInput() Input {
	return Input{
		Scores: types.EvaluationResult{
			Accuracy:             0.9,
			Relevance:            0.85,
			Clarity:              0.8,
			InstructionAdherence: 0.95,
		},
	}
}

func TestBuild(t *testing.T) {
	fixedClock(t)

	rec, err := Build(sampleInput())
	require.NoError(t, err)

	assert.Equal(t, types.RecordSchemaVersion, rec.SchemaVersion)
	assert.Equal(t, "0b6f4c52-8a0e-4d59-9a43-5f6d0d1c2e3f", rec.RecordID)
	assert.Equal(t, "2026-10-18T09:30:00Z", rec.GeneratedAt)
	assert.Equal(t, types.GeneratorName, rec.Generator.Name)
	assert.Equal(t, 0.87, rec.Scores.Overall())
	assert.Equal(t, score.Weights(), rec.Weights)
	assert.Equal(t, score.RoundingPolicy, rec.Rounding)
	assert.Nil(t, rec.Subject)
	assert.Nil(t, rec.Annotations)
}

func TestBuildWithSubjectAndAnnotations(t *testing.T) {
	fixedClock(t)
	out := filepath.Join(t.TempDir(), "answer.txt")
	require.NoError(t, os.WriteFile(out, []byte("abc"), 0o644))

	in := sampleInput()
	in.OutputFile = out
	in.Annotations = map[string]string{"model": "demo-model"}

	rec, err := Build(in)
	require.NoError(t, err)
	require.NotNil(t, rec.Subject)
	assert.Equal(t, "answer.txt", rec.Subject.Name)
	assert.Equal(t, int64(3), rec.Subject.SizeBytes)
	assert.Equal(t, hash.HexDigest(hash.DigestBytes([]byte("abc"))), rec.Subject.Digest.SHA256)
	assert.Equal(t, "demo-model", rec.Annotations["model"])

	in.Annotations["model"] = "changed"
	assert.Equal(t, "demo-model", rec.Annotations["model"])
}

func TestBuildRejectsOutOfRange(t *testing.T) {
	in := sampleInput()
	in.Scores.Clarity = 1.2

	_, err := Build(in)
	require.Error(t, err)
	ve, ok := score.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, types.Clarity, ve.Metric)
}

func TestBuildMissingOutputFile(t *testing.T) {
	in := sampleInput()
	in.OutputFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err := Build(in)
	require.Error(t, err)
}

func TestCreateWritesRecord(t *testing.T) {
	fixedClock(t)
	dir := filepath.Join(t.TempDir(), "records")

	path, rec, err := Create(CreateOptions{Input: sampleInput(), OutDir: dir, DeterminismCheck: 3})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "record_0b6f4c52-8a0e-4d59-9a43-5f6d0d1c2e3f.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got types.Record
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, rec.RecordID, got.RecordID)
	assert.Equal(t, 0.87, got.Scores.Overall())

	want, err := report.BuildJSON(rec)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(raw))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)
}

func TestCreateDeterminismDetectsDrift(t *testing.T) {
	fixedClock(t)
	out := filepath.Join(t.TempDir(), "answer.txt")
	require.NoError(t, os.WriteFile(out, []byte("v1"), 0o644))

	calls := 0
	newID = func() string {
		calls++
		if calls == 2 {
			// change the subject between the first and second build
			_ = os.WriteFile(out, []byte("v2"), 0o644)
		}
		return "id"
	}

	in := sampleInput()
	in.OutputFile = out
	_, _, err := Create(CreateOptions{Input: in, OutDir: t.TempDir(), DeterminismCheck: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "determinism check failed")
}

func TestLoadRejectsSchemaViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version":"1.0.0","record_id":"r1"}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, path, se.Source)
	assert.NotEmpty(t, se.Violations)
}

func TestLoadRejectsTamperedOverall(t *testing.T) {
	fixedClock(t)
	path, _, err := Create(CreateOptions{Input: sampleInput(), OutDir: t.TempDir()})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	doc["scores"].(map[string]any)["overall_score"] = 0.95
	raw, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err = Load(path)
	require.Error(t, err)
	var se *SchemaError
	require.True(t, errors.As(err, &se), "got %T: %v", err, err)
	assert.Equal(t, []string{"overall_score: stored 0.95 does not match recomputed 0.87"}, se.Violations)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse record")
}

func TestLoadAll(t *testing.T) {
	fixedClock(t)
	dir := t.TempDir()
	for _, id := range []string{"b", "a"} {
		id := id
		newID = func() string { return id }
		_, _, err := Create(CreateOptions{Input: sampleInput(), OutDir: dir})
		require.NoError(t, err)
	}

	recs, err := LoadAll(dir)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].RecordID)
	assert.Equal(t, "b", recs[1].RecordID)
}
