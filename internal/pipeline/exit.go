package pipeline

import (
	"errors"
	"io/fs"

	"github.com/scanstack/qclean/internal/backend"
	"github.com/scanstack/qclean/internal/candidates"
	"github.com/scanstack/qclean/internal/merge"
	"github.com/scanstack/qclean/internal/records"
)

// Exit codes for the fatal failure classes. Each condition is independently
// distinguishable from the shell.
const (
	ExitOK                 = 0
	ExitError              = 1
	ExitUsage              = 2
	ExitMissingInput       = 3
	ExitMergeScriptMissing = 4
	ExitMergeLaunch        = 5
	ExitMergeFailed        = 6
	ExitMergeNoOutput      = 7
	ExitNoCandidates       = 8
	ExitTransport          = 9
	ExitWriteOutput        = 10
)

// UsageError marks an invalid command invocation (missing argument etc).
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// ExitCode maps an error to its exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		usageErr     *UsageError
		launchErr    *merge.LaunchError
		mergeExitErr *merge.ExitError
		transportErr *backend.TransportError
		writeErr     *records.WriteError
	)
	switch {
	case errors.As(err, &usageErr):
		return ExitUsage
	case errors.Is(err, merge.ErrScriptNotFound):
		return ExitMergeScriptMissing
	case errors.As(err, &launchErr):
		return ExitMergeLaunch
	case errors.As(err, &mergeExitErr):
		return ExitMergeFailed
	case errors.Is(err, merge.ErrOutputMissing):
		return ExitMergeNoOutput
	case errors.Is(err, candidates.ErrNoCandidates):
		return ExitNoCandidates
	case errors.As(err, &transportErr):
		return ExitTransport
	case errors.As(err, &writeErr):
		return ExitWriteOutput
	case errors.Is(err, fs.ErrNotExist):
		return ExitMissingInput
	default:
		return ExitError
	}
}
