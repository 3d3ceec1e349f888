package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// RunResult is the exit code and combined stdout/stderr of a finished command
type RunResult struct {
	ExitCode int
	Output   string
}

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	// Run executes a command to completion. A command that ran and exited non-zero is
	// reported through RunResult with a nil error; err is reserved for commands that
	// could not be started or were cancelled.
	Run(ctx context.Context, name string, args ...string) (RunResult, error)
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct {
	// Tee, when set, receives the command output in real time in addition to the capture buffer
	Tee io.Writer
}

// Run executes a command and captures its combined output
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) (RunResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var buf bytes.Buffer
	var w io.Writer = &buf
	if r.Tee != nil {
		w = io.MultiWriter(&buf, r.Tee)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	result := RunResult{Output: buf.String()}
	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	result.ExitCode = -1
	return result, err
}
