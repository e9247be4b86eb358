package report

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ogulcanaydogan/llm-output-eval/pkg/types"
)

// BuildScoresMarkdown renders a bare evaluation as a metric table.
func BuildScoresMarkdown(scores types.EvaluationOutput, weights map[string]float64) string {
	var b strings.Builder
	b.WriteString("| Metric | Score | Weight |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, m := range types.InputMetrics() {
		v, _ := scores.Get(m)
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", m, num(v), num(weights[m.String()])))
	}
	b.WriteString(fmt.Sprintf("| **%s** | **%s** | |\n", types.KeyOverallScore, num(scores.Overall())))
	return b.String()
}

func BuildMarkdown(r types.Record) string {
	var b strings.Builder
	b.WriteString("# LLM Output Evaluation Report\n\n")
	b.WriteString(fmt.Sprintf("- Record: `%s`\n", r.RecordID))
	b.WriteString(fmt.Sprintf("- Generated At: `%s`\n", r.GeneratedAt))
	b.WriteString(fmt.Sprintf("- Generator: `%s %s`\n", r.Generator.Name, r.Generator.Version))
	b.WriteString(fmt.Sprintf("- Overall Score: **%s**\n", num(r.Scores.Overall())))
	b.WriteString(fmt.Sprintf("- Rounding: `%s`\n\n", r.Rounding))

	b.WriteString("## Scores\n\n")
	b.WriteString(BuildScoresMarkdown(r.Scores, r.Weights))

	if r.Subject != nil {
		b.WriteString("\n## Subject\n\n")
		b.WriteString("| Name | URI | SHA-256 | Size |\n")
		b.WriteString("|---|---|---|---:|\n")
		b.WriteString(fmt.Sprintf("| %s | %s | `%s` | %d |\n", escape(r.Subject.Name), escape(r.Subject.URI), r.Subject.Digest.SHA256, r.Subject.SizeBytes))
	}

	if len(r.Annotations) > 0 {
		b.WriteString("\n## Annotations\n\n")
		keys := make([]string, 0, len(r.Annotations))
		for k := range r.Annotations {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("- %s: %s\n", k, r.Annotations[k]))
		}
	}
	return b.String()
}

// BuildSummary renders one row per record.
func BuildSummary(records []types.Record) string {
	var b strings.Builder
	b.WriteString("# LLM Output Evaluation Summary\n\n")
	b.WriteString(fmt.Sprintf("- Records: `%d`\n\n", len(records)))
	if len(records) == 0 {
		return b.String()
	}
	b.WriteString("| Record | Generated At | Subject | Overall |\n")
	b.WriteString("|---|---|---|---:|\n")
	for _, r := range records {
		subject := "-"
		if r.Subject != nil {
			subject = escape(r.Subject.Name)
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", r.RecordID, r.GeneratedAt, subject, num(r.Scores.Overall())))
	}
	return b.String()
}

func WriteMarkdown(path string, r types.Record) error {
	return os.WriteFile(path, []byte(BuildMarkdown(r)), 0o644)
}

func WriteSummary(path string, records []types.Record) error {
	return os.WriteFile(path, []byte(BuildSummary(records)), 0o644)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
