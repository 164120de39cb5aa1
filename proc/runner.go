package proc

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

type (
	// Runner abstracts child-process execution so pipeline stages can be
	// exercised without the underlying tools installed.
	Runner interface {
		// Run executes the named tool in dir and waits for it, streaming
		// its output to the orchestrator's stdout and stderr.
		Run(ctx context.Context, dir string, name string, args ...string) error

		// Output executes the named tool in dir and returns its trimmed
		// standard output.
		Output(ctx context.Context, dir string, name string, args ...string) (string, error)
	}
)

func NewRunner() Runner {
	return &execRunner{}
}

type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (r *execRunner) Output(ctx context.Context, dir string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ExitCode extracts the child's exit status from a Runner error, or -1 when
// the child never ran or was killed by a signal.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
