package cmdline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrCommandFailed is returned by RunAndCheck when a command exits with an
// unexpected code.
var ErrCommandFailed = errors.New("command failed")

// Result holds the outcome of a command that was started successfully.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// CommandError reports that the executable could not be launched at all
// (missing binary, permission denied). A non-zero exit is not a CommandError.
type CommandError struct {
	Name string
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("failed to run %s: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, name, args...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, &CommandError{Name: name, Err: err}
		}
	}

	result := Result{
		ExitCode: command.ProcessState.ExitCode(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}
	slog.Debug("Command finished", "command", name, "args", args, "exit_code", result.ExitCode)
	return result, nil
}

// RunAndCheck runs a command and fails with ErrCommandFailed unless it exits
// with the expected code.
func RunAndCheck(ctx context.Context, r Runner, expected int, name string, args ...string) (Result, error) {
	result, err := r.Run(ctx, name, args...)
	if err != nil {
		return result, err
	}
	if result.ExitCode != expected {
		return result, fmt.Errorf("%w: %s %s exited with %d (stderr: %s)",
			ErrCommandFailed, name, strings.Join(args, " "), result.ExitCode,
			strings.TrimSpace(string(result.Stderr)))
	}
	return result, nil
}
