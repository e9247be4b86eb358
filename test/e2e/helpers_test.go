//go:build e2e

package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ogulcanaydogan/llm-output-eval/internal/record"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func createRecord(t *testing.T, inputPath, outDir string) string {
	t.Helper()
	in, err := record.LoadInput(inputPath)
	if err != nil {
		t.Fatalf("load input %s: %v", inputPath, err)
	}
	path, _, err := record.Create(record.CreateOptions{Input: in, OutDir: outDir, DeterminismCheck: 3})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	return path
}
