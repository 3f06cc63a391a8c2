// Package merge invokes the external merge step that turns raw OCR block
// records into grouped question candidates.
package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrScriptNotFound means the configured merge script does not exist.
var ErrScriptNotFound = errors.New("merge script not found")

// ErrOutputMissing means the merge step exited 0 but produced no candidates file.
var ErrOutputMissing = errors.New("merge step produced no candidates file")

// LaunchError means the merge subprocess could not be started at all.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch merge step: %v", e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError means the merge subprocess ran but exited non-zero. Captured
// output is surfaced so the operator can see what the script complained about.
type ExitError struct {
	Code   int
	Stdout string
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("merge step exited with code %d", e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nstderr: " + s
	}
	if s := strings.TrimSpace(e.Stdout); s != "" {
		msg += "\nstdout: " + s
	}
	return msg
}

// Runner invokes the merge script as a subprocess.
type Runner struct {
	// Script is the path to the merge script.
	Script string

	// Interpreter runs the script (e.g. "python3"). When empty, the script
	// is executed directly.
	Interpreter string

	Logger *slog.Logger
}

// Run executes the merge step: Script reads blocksPath and writes
// candidatesPath. Success means exit code 0 and the output file existing.
func (r *Runner) Run(ctx context.Context, blocksPath, candidatesPath string) error {
	if _, err := os.Stat(r.Script); err != nil {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, r.Script)
	}

	var cmd *exec.Cmd
	if r.Interpreter != "" {
		cmd = exec.CommandContext(ctx, r.Interpreter, r.Script, blocksPath, candidatesPath)
	} else {
		cmd = exec.CommandContext(ctx, r.Script, blocksPath, candidatesPath)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.Info("running merge step",
		"script", r.Script, "blocks", blocksPath, "candidates", candidatesPath)
	start := time.Now()

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{
				Code:   exitErr.ExitCode(),
				Stdout: stdout.String(),
				Stderr: stderr.String(),
			}
		}
		return &LaunchError{Err: err}
	}

	if _, err := os.Stat(candidatesPath); err != nil {
		return fmt.Errorf("%w: %s", ErrOutputMissing, candidatesPath)
	}

	r.Logger.Info("merge step done",
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
