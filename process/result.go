package process

import (
	"time"

	"github.com/kbukum/edlflash/errors"
)

// Result holds the captured output of a completed tool run.
// The numeric exit status is deliberately not exposed: a run either
// succeeded or failed.
type Result struct {
	// RunID uniquely identifies the run in logs and events.
	RunID string
	// Stdout is the decoded standard output, one trailing newline per chunk read.
	Stdout string
	// Stderr is the decoded standard error, one trailing newline per chunk read.
	Stderr string
	// Duration is how long the process ran.
	Duration time.Duration
}

// Diagnostic returns the most informative text of the run: stderr when the
// tool wrote any, stdout otherwise.
func (r *Result) Diagnostic() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Diagnostic extracts the text carried by an error returned from Run or
// Execute. For a failed process this is the tool's own output.
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
