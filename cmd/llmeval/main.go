package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/llm-output-eval/internal/gate"
	"github.com/ogulcanaydogan/llm-output-eval/internal/hash"
	"github.com/ogulcanaydogan/llm-output-eval/internal/record"
	"github.com/ogulcanaydogan/llm-output-eval/internal/report"
	"github.com/ogulcanaydogan/llm-output-eval/internal/score"
	"github.com/ogulcanaydogan/llm-output-eval/internal/store"
	"github.com/ogulcanaydogan/llm-output-eval/pkg/types"
)

const (
	ExitPass       = 0
	ExitError      = 1
	ExitValidation = 10
	ExitGateFail   = 13
	ExitSchemaFail = 14
)

type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }

func (e cliError) Unwrap() error { return e.err }

func main() {
	initLogging(os.Stderr)
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func initLogging(w io.Writer) {
	log.SetOutput(w)
	log.SetLevel(log.InfoLevel)
	log.SetReportCaller(false)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

func exitCode(err error) int {
	var ce cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	if _, ok := score.IsValidationError(err); ok {
		return ExitValidation
	}
	var se *record.SchemaError
	if errors.As(err, &se) {
		return ExitSchemaFail
	}
	return ExitError
}

var (
	debug      bool
	configPath string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "llmeval",
		Short:         "Weighted scoring of AI model outputs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "print verbose logs")
	root.PersistentFlags().StringVar(&configPath, "config", record.ProjectConfigFile, "project config file")

	root.AddCommand(newInitCommand())
	root.AddCommand(newEvaluateCommand())
	root.AddCommand(newRecordCommand())
	root.AddCommand(newGateCommand())
	root.AddCommand(newReportCommand())
	root.AddCommand(newDemoCommand())
	return root
}

func loadProjectConfig() (record.ProjectConfig, error) {
	return record.LoadProjectConfig(configPath)
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create llmeval config, gate policy, and an example input",
		RunE: func(cmd *cobra.Command, _ []string) error {
			files := []struct {
				path    string
				content string
			}{
				{record.ProjectConfigFile, defaultConfigYAML},
				{record.DefaultGatePolicy, defaultPolicyYAML},
				{"examples/input.yaml", defaultInputYAML},
			}
			for _, f := range files {
				if hash.FileExists(f.path) {
					log.Debugf("keeping existing %s", f.path)
					continue
				}
				if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
					return err
				}
			}
			if _, err := store.EnsureDir(store.DefaultRecordDir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "initialized llmeval config, gate policy, and example input")
			return nil
		},
	}
}

type scoreFlags struct {
	accuracy, relevance, clarity, instructionAdherence float64
}

func (f *scoreFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.accuracy, "accuracy", 0, "accuracy score in [0, 1]")
	cmd.Flags().Float64Var(&f.relevance, "relevance", 0, "relevance score in [0, 1]")
	cmd.Flags().Float64Var(&f.clarity, "clarity", 0, "clarity score in [0, 1]")
	cmd.Flags().Float64Var(&f.instructionAdherence, "instruction-adherence", 0, "instruction adherence score in [0, 1]")
}

// scores reads the sub-scores from either --in or the four score flags.
func (f *scoreFlags) scores(cmd *cobra.Command, inPath string) (types.EvaluationResult, error) {
	names := []string{"accuracy", "relevance", "clarity", "instruction-adherence"}
	set := 0
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			set++
		}
	}
	if inPath != "" {
		if set > 0 {
			return types.EvaluationResult{}, fmt.Errorf("--in cannot be combined with score flags")
		}
		in, err := record.LoadInput(inPath)
		if err != nil {
			return types.EvaluationResult{}, err
		}
		return in.Scores, nil
	}
	for _, n := range names {
		if !cmd.Flags().Changed(n) {
			return types.EvaluationResult{}, fmt.Errorf("--%s is required when --in is not set", n)
		}
	}
	return types.EvaluationResult{
		Accuracy:             f.accuracy,
		Relevance:            f.relevance,
		Clarity:              f.clarity,
		InstructionAdherence: f.instructionAdherence,
	}, nil
}

func newEvaluateCommand() *cobra.Command {
	var inPath, format, outPath string
	var sf scoreFlags
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Compute the weighted overall score",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := sf.scores(cmd, inPath)
			if err != nil {
				return err
			}
			scores, err := score.EvaluateResult(in)
			if err != nil {
				return err
			}
			log.Debugf("evaluated %v", scores)

			if format == "" {
				cfg, err := loadProjectConfig()
				if err != nil {
					return err
				}
				format = cfg.Format
			}
			var out []byte
			switch format {
			case "json":
				out, err = report.BuildJSON(scores)
				if err != nil {
					return err
				}
			case "md":
				out = []byte(report.BuildScoresMarkdown(scores, score.Weights()))
			default:
				return fmt.Errorf("unsupported format %s", format)
			}
			return emit(cmd, outPath, out)
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&inPath, "in", "", "YAML input file")
	cmd.Flags().StringVar(&format, "format", "", "output format (json|md), defaults to project config")
	cmd.Flags().StringVar(&outPath, "out", "", "output path, stdout when empty")
	return cmd
}

func newRecordCommand() *cobra.Command {
	var inPath, outDir string
	var determinismCheck int
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Evaluate an input file and write an evaluation record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inPath == "" {
				return fmt.Errorf("--in is required")
			}
			if outDir == "" {
				cfg, err := loadProjectConfig()
				if err != nil {
					return err
				}
				outDir = cfg.RecordDir
			}
			in, err := record.LoadInput(inPath)
			if err != nil {
				return err
			}
			path, _, err := record.Create(record.CreateOptions{
				Input:            in,
				OutDir:           outDir,
				DeterminismCheck: determinismCheck,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "YAML input file")
	cmd.Flags().StringVar(&outDir, "out", "", "record directory, defaults to project config")
	cmd.Flags().IntVar(&determinismCheck, "determinism-check", 1, "build the record this many times and compare digests")
	return cmd
}

func newGateCommand() *cobra.Command {
	var policyPath, recordPath, inPath string
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Apply threshold gates and return non-zero on violations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (recordPath == "") == (inPath == "") {
				return fmt.Errorf("exactly one of --record and --in is required")
			}
			if policyPath == "" {
				cfg, err := loadProjectConfig()
				if err != nil {
					return err
				}
				policyPath = cfg.GatePolicy
			}
			policy, err := gate.LoadPolicy(policyPath)
			if err != nil {
				return err
			}

			var scores types.EvaluationOutput
			if recordPath != "" {
				rec, err := record.Load(recordPath)
				if err != nil {
					return err
				}
				scores = rec.Scores
			} else {
				in, err := record.LoadInput(inPath)
				if err != nil {
					return err
				}
				if scores, err = score.EvaluateResult(in.Scores); err != nil {
					return err
				}
			}

			violations, err := gate.Evaluate(policy, scores)
			if err != nil {
				return err
			}
			if len(violations) > 0 {
				for _, v := range violations {
					fmt.Fprintln(cmd.OutOrStdout(), v)
				}
				return cliError{code: ExitGateFail, err: fmt.Errorf("score gate failed")}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "score gate passed")
			return nil
		},
	}
	cmd.Flags().StringVar(&policyPath, "policy", "", "gate policy YAML, defaults to project config")
	cmd.Flags().StringVar(&recordPath, "record", "", "evaluation record JSON")
	cmd.Flags().StringVar(&inPath, "in", "", "YAML input file")
	return cmd
}

func newReportCommand() *cobra.Command {
	var inPath, outPath string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a markdown report from evaluation records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inPath == "" || outPath == "" {
				return fmt.Errorf("--in and --out are required")
			}
			fi, err := os.Stat(inPath)
			if err != nil {
				return err
			}
			if fi.IsDir() {
				records, err := record.LoadAll(inPath)
				if err != nil {
					return err
				}
				err = report.WriteSummary(outPath, records)
				if err != nil {
					return err
				}
			} else {
				rec, err := record.Load(inPath)
				if err != nil {
					return err
				}
				if err := report.WriteMarkdown(outPath, rec); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "record JSON file or record directory")
	cmd.Flags().StringVar(&outPath, "out", "", "markdown output")
	return cmd
}

func newDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Print a sample evaluation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scores, err := score.Evaluate(0.9, 0.85, 0.8, 0.95)
			if err != nil {
				return err
			}
			out, err := report.BuildJSON(scores)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func emit(cmd *cobra.Command, outPath string, out []byte) error {
	if outPath == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), outPath)
	return nil
}

const defaultConfigYAML = `record_dir: .llmeval/records
gate_policy: policy/gates.yaml
format: json
`

const defaultPolicyYAML = `version: 1
gates:
  - id: G001
    metric: overall_score
    min: 0.8
    message: "Overall score below release bar."
  - id: G002
    metric: accuracy
    min: 0.7
  - id: G003
    metric: instruction_adherence
    min: 0.5
`

const defaultInputYAML = `scores:
  accuracy: 0.9
  relevance: 0.85
  clarity: 0.8
  instruction_adherence: 0.95
annotations:
  model: demo-model
`
