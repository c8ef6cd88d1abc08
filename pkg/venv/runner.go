package venv

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Runner runs external commands. It exists so tests can substitute the
// Python toolchain with a fake.
type Runner interface {
	// Run runs a command, streaming its output to the user.
	Run(ctx context.Context, name string, args ...string) error
	// Output runs a command and returns its combined output, trimmed.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s %s failed", name, strings.Join(args, " "))
	}

	return nil
}

func (execRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return "", errors.Wrapf(err, "%s %s failed: %s", name, strings.Join(args, " "), strings.TrimSpace(string(out)))
	}

	return strings.TrimSpace(string(out)), nil
}
