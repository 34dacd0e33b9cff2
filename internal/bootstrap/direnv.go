package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/thoreinstein/nixup/internal/run"
	"github.com/thoreinstein/nixup/internal/system"
	"github.com/thoreinstein/nixup/pkg/fileutil"
)

// Shell hook lines appended to rc files so direnv loads environments on cd.
const (
	ZshHookLine  = `eval "$(direnv hook zsh)"`
	BashHookLine = `eval "$(direnv hook bash)"`
)

// DirenvStep ensures the direnv binary is installed.
type DirenvStep struct{}

var _ Step = (*DirenvStep)(nil)

// Name returns the unique identifier for this step.
func (*DirenvStep) Name() string { return "ensure-direnv" }

// Run installs direnv through the package manager, falling back to a nix
// profile install when no manager is usable.
func (*DirenvStep) Run(ctx context.Context, bc *Context) (*Result, error) {
	if bc.Runner.LookPath("direnv") {
		return Satisfied("direnv already installed"), nil
	}

	if bc.DryRun {
		return Skipped("dry run: would install direnv"), nil
	}

	mgr := bc.Facts.PackageManager
	if mgr != system.PkgUnknown && (!mgr.NeedsSudo() || bc.Facts.Sudo) {
		name, argv := run.Sudo(mgr.NeedsSudo(), string(mgr), mgr.InstallArgs("direnv")...)
		if err := bc.Runner.Run(ctx, name, argv...); err == nil {
			return Changedf("installed direnv via %s", mgr), nil
		}
		// Older distro repos sometimes lack direnv; fall through to nix.
	}

	if !bc.Runner.LookPath("nix") {
		return Failedf("could not install direnv: no usable package manager and nix is unavailable"), nil
	}
	if err := bc.Runner.Run(ctx, "nix", "profile", "install", "nixpkgs#direnv"); err != nil {
		return Failedf("installing direnv via nix: %v", err), nil
	}
	return Changedf("installed direnv via nix profile"), nil
}

// HooksStep wires the direnv hook into the shell rc files.
type HooksStep struct{}

var _ Step = (*HooksStep)(nil)

// Name returns the unique identifier for this step.
func (*HooksStep) Name() string { return "shell-hooks" }

// Run appends the hook line to .zshrc and .bashrc, creating either file
// when it is missing. Each file gets the line at most once across runs.
func (*HooksStep) Run(ctx context.Context, bc *Context) (*Result, error) {
	type target struct {
		path, line string
	}
	targets := []target{
		{path: bc.ZshRC, line: ZshHookLine},
		{path: bc.BashRC, line: BashHookLine},
	}

	var pending, changed []string
	for _, t := range targets {
		has, err := fileutil.HasLine(t.path, t.line)
		if err != nil {
			return Failedf("reading %s: %v", t.path, err), nil
		}
		if has {
			continue
		}
		pending = append(pending, t.path)

		if bc.DryRun {
			continue
		}
		bc.snapshot(ctx, t.path)
		if _, err := fileutil.EnsureLine(t.path, t.line, 0o644); err != nil {
			return Failedf("writing %s: %v", t.path, err), nil
		}
		changed = append(changed, t.path)
	}

	switch {
	case len(pending) == 0:
		return Satisfied("direnv hooks already present"), nil
	case bc.DryRun:
		return Skipped(fmt.Sprintf("dry run: would add direnv hook to %s", strings.Join(pending, ", "))), nil
	default:
		return Changedf("added direnv hook to %s", strings.Join(changed, ", ")), nil
	}
}
