package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanstack/qclean/version"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "qclean",
	Short: "Clean up OCR question candidates with a local language model",
	Long: `qclean post-processes OCR-derived question candidates from scanned
bilingual (English/Hindi) exam papers.

Candidates are grouped by page and each page batch is sent to a locally
hosted text-completion backend for cleanup. The backend's free-form reply is
scanned for a JSON array, corrected once if the array has the wrong shape,
validated record by record, and written as a single JSON file.`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./qclean.yaml or ~/.qclean/qclean.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger. Diagnostics go to stderr so stdout
// stays clean for shell pipelines.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
