package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/nixup/internal/run"
	"github.com/thoreinstein/nixup/pkg/fileutil"
)

// ZshStep ensures the zsh binary is installed.
type ZshStep struct{}

var _ Step = (*ZshStep)(nil)

// Name returns the unique identifier for this step.
func (*ZshStep) Name() string { return "ensure-zsh" }

// Run installs zsh through the detected package manager if it is missing.
func (*ZshStep) Run(ctx context.Context, bc *Context) (*Result, error) {
	if path := findZsh(bc); path != "" {
		return Satisfied(fmt.Sprintf("zsh present at %s", path)), nil
	}

	if bc.DryRun {
		return Skipped("dry run: would install zsh"), nil
	}

	mgr := bc.Facts.PackageManager
	args := mgr.InstallArgs("zsh")
	if args == nil {
		return Failedf("zsh missing and no package manager available to install it"), nil
	}

	elevate := mgr.NeedsSudo()
	if elevate && !bc.Facts.Sudo {
		return Failedf("zsh missing and %s requires sudo, which is unavailable", mgr), nil
	}

	name, argv := run.Sudo(elevate, string(mgr), args...)
	if err := bc.Runner.Run(ctx, name, argv...); err != nil {
		return Failedf("installing zsh: %v", err), nil
	}

	return Changedf("installed zsh via %s", mgr), nil
}

// findZsh returns the first zsh binary found among the candidate paths,
// falling back to a PATH lookup, or "" when none exists.
func findZsh(bc *Context) string {
	for _, candidate := range bc.ZshCandidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	if bc.Runner.LookPath("zsh") {
		return "zsh"
	}
	return ""
}

// DefaultShellStep offers to make zsh the user's login shell.
type DefaultShellStep struct{}

var _ Step = (*DefaultShellStep)(nil)

// Name returns the unique identifier for this step.
func (*DefaultShellStep) Name() string { return "default-shell" }

// Run registers zsh in /etc/shells if needed and runs chsh, after asking.
// Keeping the current shell is a valid choice, not a failure.
func (*DefaultShellStep) Run(ctx context.Context, bc *Context) (*Result, error) {
	zsh := findZsh(bc)
	if zsh == "" || zsh == "zsh" {
		if zsh == "" {
			return Skipped("zsh is not installed"), nil
		}
		// chsh wants an absolute path; a bare PATH hit is not enough.
		out, err := bc.Runner.Output(ctx, "sh", "-c", "command -v zsh")
		if err != nil || out == "" {
			return Skipped("could not resolve the zsh path"), nil
		}
		zsh = out
	}

	if filepath.Base(bc.CurrentShell) == "zsh" {
		return Satisfied(fmt.Sprintf("login shell is already %s", bc.CurrentShell)), nil
	}

	if !bc.AssumeYes {
		ok, err := bc.Prompter.Confirm(fmt.Sprintf("Make %s your default shell?", zsh), true)
		if err != nil {
			return nil, err
		}
		if !ok {
			return Skipped(fmt.Sprintf("kept %s as the login shell", bc.CurrentShell)), nil
		}
	}

	if bc.DryRun {
		return Skipped(fmt.Sprintf("dry run: would chsh to %s", zsh)), nil
	}

	registered, err := fileutil.HasLine(bc.EtcShells, zsh)
	if err != nil {
		return Failedf("reading %s: %v", bc.EtcShells, err), nil
	}
	if !registered {
		if !bc.Facts.Sudo {
			return Failedf("%s is not in %s and sudo is unavailable to add it", zsh, bc.EtcShells), nil
		}
		name, argv := run.Sudo(true, "sh", "-c", fmt.Sprintf("echo '%s' >> %s", zsh, bc.EtcShells))
		if err := bc.Runner.Run(ctx, name, argv...); err != nil {
			return Failedf("registering %s in %s: %v", zsh, bc.EtcShells, err), nil
		}
	}

	if err := bc.Runner.Run(ctx, "chsh", "-s", zsh); err != nil {
		return nil, errors.Wrap(err, "changing login shell")
	}

	return Changedf("login shell changed to %s (takes effect on next login)", zsh), nil
}
