// Package run wraps external command execution behind a small interface so
// bootstrap steps can be tested without touching the host system.
package run

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// Runner executes external commands.
type Runner interface {
	// Run executes name with args, streaming output to the process's
	// stdout and stderr. Stdin is connected to support interactive
	// installers.
	Run(ctx context.Context, name string, args ...string) error

	// Output executes name with args and returns its trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)

	// LookPath reports whether name is available on PATH.
	LookPath(name string) bool
}

// Exec is the production Runner backed by os/exec.
type Exec struct{}

var _ Runner = Exec{}

// Run executes the command, streaming output to os.Stdout and os.Stderr.
// Stdin is connected to os.Stdin to support interactive installers
// (e.g., the Nix installer asking for confirmation).
func (Exec) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s failed", name)
	}
	return nil
}

// Output executes the command and returns its trimmed stdout.
func (Exec) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", errors.Wrapf(err, "%s failed", name)
	}
	return strings.TrimSpace(string(out)), nil
}

// LookPath reports whether name is available on PATH.
func (Exec) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Sudo returns an argv that runs name under non-interactive sudo when
// elevate is true, and the plain argv otherwise.
func Sudo(elevate bool, name string, args ...string) (string, []string) {
	if !elevate {
		return name, args
	}
	return "sudo", append([]string{"-n", name}, args...)
}
