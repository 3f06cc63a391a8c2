package merge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeScript drops a shell script into a temp dir; tests run it with the
// sh interpreter so no executable bit is needed.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "merge.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestRun_Success(t *testing.T) {
	script := writeScript(t, `cp "$1" "$2"`)
	dir := t.TempDir()
	blocks := filepath.Join(dir, "blocks.jsonl")
	out := filepath.Join(dir, "candidates.jsonl")
	if err := os.WriteFile(blocks, []byte(`{"page":1}`+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write blocks: %v", err)
	}

	r := &Runner{Script: script, Interpreter: "sh", Logger: testLogger()}
	if err := r.Run(context.Background(), blocks, out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("candidates file missing: %v", err)
	}
}

func TestRun_ScriptMissing(t *testing.T) {
	r := &Runner{
		Script:      filepath.Join(t.TempDir(), "missing.py"),
		Interpreter: "sh",
		Logger:      testLogger(),
	}
	err := r.Run(context.Background(), "in", "out")
	if !errors.Is(err, ErrScriptNotFound) {
		t.Fatalf("expected ErrScriptNotFound, got %v", err)
	}
}

func TestRun_NonZeroExitSurfacesOutput(t *testing.T) {
	script := writeScript(t, `echo "merging stuff"
echo "bad blocks file" >&2
exit 3`)

	r := &Runner{Script: script, Interpreter: "sh", Logger: testLogger()}
	err := r.Run(context.Background(), "in", "out")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if exitErr.Code != 3 {
		t.Errorf("code = %d, want 3", exitErr.Code)
	}
	if !strings.Contains(err.Error(), "bad blocks file") {
		t.Errorf("stderr not surfaced: %v", err)
	}
	if !strings.Contains(err.Error(), "merging stuff") {
		t.Errorf("stdout not surfaced: %v", err)
	}
}

func TestRun_OutputMissingAfterSuccess(t *testing.T) {
	script := writeScript(t, `exit 0`)

	r := &Runner{Script: script, Interpreter: "sh", Logger: testLogger()}
	err := r.Run(context.Background(), "in", filepath.Join(t.TempDir(), "never_written.jsonl"))
	if !errors.Is(err, ErrOutputMissing) {
		t.Fatalf("expected ErrOutputMissing, got %v", err)
	}
}

func TestRun_LaunchFailure(t *testing.T) {
	script := writeScript(t, "")
	r := &Runner{
		Script:      script,
		Interpreter: filepath.Join(t.TempDir(), "no-such-interpreter"),
		Logger:      testLogger(),
	}
	err := r.Run(context.Background(), "in", "out")

	var launchErr *LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("expected *LaunchError, got %v", err)
	}
}
