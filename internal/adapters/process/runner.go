// Package process executes the emitted host program and captures its
// result, grounded on the same exec.CommandContext + timeout pattern
// used by the D2 renderer shell-out (internal/adapters/graphviz).
package process

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/aie-tools/aiec/internal/core/usecases"
)

var _ usecases.Runner = (*Runner)(nil)

// Runner invokes a generated script with python3 and captures its
// stdout, stderr, and exit code under the timeout, in seconds, that the
// caller passes to Run (the driver passes driver.run_timeout_seconds,
// 30 by default).
type Runner struct {
	Python string // interpreter binary; defaults to "python3"
}

// NewRunner creates a Runner that invokes scripts with python3.
func NewRunner() *Runner {
	return &Runner{Python: "python3"}
}

// Run executes scriptPath, returning its captured stdout/stderr and
// exit code. A timeout expiry reports exitCode 1 and a non-nil err.
func (r *Runner) Run(ctx context.Context, scriptPath string, timeoutSec int) (stdout, stderr string, exitCode int, err error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
		defer cancel()
	}

	python := r.Python
	if python == "" {
		python = "python3"
	}

	cmd := exec.CommandContext(ctx, python, scriptPath)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	stdout, stderr = outBuf.String(), errBuf.String()

	if ctx.Err() == context.DeadlineExceeded {
		return stdout, stderr, 1, ctx.Err()
	}

	if runErr == nil {
		return stdout, stderr, 0, nil
	}
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		return stdout, stderr, exitErr.ExitCode(), runErr
	}
	return stdout, stderr, 1, runErr
}
