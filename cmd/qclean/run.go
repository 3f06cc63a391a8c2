package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scanstack/qclean/internal/backend"
	"github.com/scanstack/qclean/internal/config"
	"github.com/scanstack/qclean/internal/merge"
	"github.com/scanstack/qclean/internal/pipeline"
	"github.com/scanstack/qclean/internal/prompts/cleanup"
)

var (
	runBlocksPath     string
	runCandidatesPath string
	runCandidatesOut  string
	runOutputPath     string
	runMergeScript    string
	runInterpreter    string
	runTemplatePath   string
	runDumpDir        string
	runBackendURL     string
	runModel          string
	runLimitPages     int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cleanup pipeline",
	Long: `Run the cleanup pipeline over a scanned paper's OCR output.

Either start from raw OCR blocks (--blocks), in which case the external
merge step is invoked first to group blocks into question candidates, or
from an already-merged candidates file (--candidates).

Examples:
  qclean run --blocks paper1_blocks.jsonl --merge-script ./merge_candidates.py
  qclean run --candidates paper1_candidates.jsonl --output paper1_questions.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("backend-url") {
			cfg.Backend.URL = runBackendURL
		}
		if cmd.Flags().Changed("model") {
			cfg.Backend.Model = runModel
		}
		if cmd.Flags().Changed("merge-script") {
			cfg.Merge.Script = runMergeScript
		}
		if cmd.Flags().Changed("interpreter") {
			cfg.Merge.Interpreter = runInterpreter
		}
		if cmd.Flags().Changed("template") {
			cfg.Prompt.TemplatePath = runTemplatePath
		}
		if cmd.Flags().Changed("dump-dir") {
			cfg.Output.DumpDir = runDumpDir
		}
		if cmd.Flags().Changed("output") {
			cfg.Output.Path = runOutputPath
		}

		candidatesPath, err := resolveCandidates(cmd, cfg, logger)
		if err != nil {
			return err
		}

		template := resolveTemplate(cfg, logger)

		client := backend.New(backend.Config{
			URL:           cfg.Backend.URL,
			Model:         cfg.Backend.Model,
			MaxTokens:     cfg.Backend.MaxTokens,
			Timeout:       time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
			RetryAttempts: cfg.Backend.RetryAttempts,
			RetryDelay:    time.Duration(cfg.Backend.RetryDelayMS) * time.Millisecond,
		}, logger)

		p, err := pipeline.New(pipeline.Config{
			CandidatesPath: candidatesPath,
			OutputPath:     cfg.Output.Path,
			Template:       template,
			DumpDir:        cfg.Output.DumpDir,
			DefaultPage:    cfg.DefaultPage,
			LimitPages:     runLimitPages,
		}, client, logger)
		if err != nil {
			return err
		}

		return p.Run(ctx)
	},
}

// resolveCandidates returns the path to the candidates file, running the
// external merge step first when starting from raw OCR blocks.
func resolveCandidates(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (string, error) {
	switch {
	case runCandidatesPath != "":
		if _, err := os.Stat(runCandidatesPath); err != nil {
			return "", fmt.Errorf("candidates file: %w", err)
		}
		return runCandidatesPath, nil

	case runBlocksPath != "":
		if _, err := os.Stat(runBlocksPath); err != nil {
			return "", fmt.Errorf("blocks file: %w", err)
		}
		if cfg.Merge.Script == "" {
			return "", &pipeline.UsageError{Msg: "starting from --blocks requires a merge script (--merge-script or config merge.script)"}
		}

		out := runCandidatesOut
		if out == "" {
			out = derivedCandidatesPath(runBlocksPath)
		}

		runner := &merge.Runner{
			Script:      cfg.Merge.Script,
			Interpreter: cfg.Merge.Interpreter,
			Logger:      logger,
		}
		if err := runner.Run(cmd.Context(), runBlocksPath, out); err != nil {
			return "", err
		}
		return out, nil

	default:
		return "", &pipeline.UsageError{Msg: "either --blocks or --candidates is required"}
	}
}

// derivedCandidatesPath names the merge output next to the blocks file:
// paper_blocks.jsonl -> paper_candidates.jsonl.
func derivedCandidatesPath(blocksPath string) string {
	base := strings.TrimSuffix(blocksPath, ".jsonl")
	base = strings.TrimSuffix(base, "_blocks")
	return base + "_candidates.jsonl"
}

// resolveTemplate loads the external prompt template when configured,
// falling back to the embedded default.
func resolveTemplate(cfg *config.Config, logger *slog.Logger) string {
	if cfg.Prompt.TemplatePath == "" {
		return cleanup.BatchPrompt()
	}
	data, err := os.ReadFile(cfg.Prompt.TemplatePath)
	if err != nil {
		logger.Warn("prompt template not readable, using embedded default",
			"path", cfg.Prompt.TemplatePath, "error", err)
		return cleanup.BatchPrompt()
	}
	return string(data)
}

func init() {
	runCmd.Flags().StringVar(&runBlocksPath, "blocks", "", "raw OCR blocks JSONL (runs the merge step first)")
	runCmd.Flags().StringVar(&runCandidatesPath, "candidates", "", "already-merged candidates JSONL (skips the merge step)")
	runCmd.Flags().StringVar(&runCandidatesOut, "candidates-out", "", "where the merge step writes candidates (default: derived from --blocks)")
	runCmd.Flags().StringVar(&runOutputPath, "output", "", "output JSON path (default from config)")
	runCmd.Flags().StringVar(&runMergeScript, "merge-script", "", "path to the merge script")
	runCmd.Flags().StringVar(&runInterpreter, "interpreter", "", "interpreter for the merge script (default from config)")
	runCmd.Flags().StringVar(&runTemplatePath, "template", "", "prompt template file (default: embedded prompt)")
	runCmd.Flags().StringVar(&runDumpDir, "dump-dir", "", "directory for raw backend response dumps")
	runCmd.Flags().StringVar(&runBackendURL, "backend-url", "", "completion endpoint URL")
	runCmd.Flags().StringVar(&runModel, "model", "", "model identifier")
	runCmd.Flags().IntVar(&runLimitPages, "limit-pages", 0, "process only the first N page batches (0 = all)")
}
