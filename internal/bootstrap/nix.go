package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	nixuperrors "github.com/thoreinstein/nixup/internal/errors"
	"github.com/thoreinstein/nixup/internal/run"
	"github.com/thoreinstein/nixup/internal/system"
	"github.com/thoreinstein/nixup/pkg/fileutil"
)

// FlakesLine is the nix.conf line that enables the flakes feature set.
const FlakesLine = "experimental-features = nix-command flakes"

// prereqPackage maps a required binary to its package name per manager,
// for the managers where the package is not simply named after the binary.
var prereqPackage = map[system.PackageManager]map[string]string{
	system.PkgAptGet: {"xz": "xz-utils"},
	system.PkgDNF:    {"xz": "xz"},
}

// NixStep installs Nix via the official installer script.
type NixStep struct{}

var _ Step = (*NixStep)(nil)

// Name returns the unique identifier for this step.
func (*NixStep) Name() string { return "ensure-nix" }

// Run downloads and executes the Nix installer when nix is absent. The
// installer runs in multi-user (daemon) mode when sudo is available and
// single-user mode otherwise. A failed install is fatal: every remaining
// step depends on nix.
func (*NixStep) Run(ctx context.Context, bc *Context) (*Result, error) {
	if bc.Runner.LookPath("nix") {
		return Satisfied("nix already installed"), nil
	}

	if bc.DryRun {
		return Skipped("dry run: would install nix"), nil
	}

	if err := ensurePrereqs(ctx, bc, "curl", "xz"); err != nil {
		return nil, err
	}

	installer := filepath.Join(os.TempDir(), "nixup-install.sh")
	if err := bc.Fetcher.Download(ctx, bc.Config.InstallerURL, installer, 0o755); err != nil {
		return nil, errors.Wrap(err, "downloading nix installer")
	}
	defer os.Remove(installer)

	mode := "--no-daemon"
	if bc.Facts.Sudo {
		mode = "--daemon"
	}
	if err := bc.Runner.Run(ctx, "sh", installer, mode); err != nil {
		return nil, errors.Wrap(err, "nix installer")
	}

	return Changedf("installed nix (%s mode); open a new shell to pick it up", mode[2:]), nil
}

// ensurePrereqs makes sure each binary is present, installing missing ones
// through the package manager. Returns ErrPrerequisites when one cannot be
// obtained, since the installer would fail anyway.
func ensurePrereqs(ctx context.Context, bc *Context, bins ...string) error {
	var missing []string
	for _, bin := range bins {
		if !bc.Runner.LookPath(bin) {
			missing = append(missing, bin)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	mgr := bc.Facts.PackageManager
	if mgr == system.PkgUnknown {
		return errors.Wrapf(nixuperrors.ErrPrerequisites, "missing %v and no package manager found", missing)
	}
	if mgr.NeedsSudo() && !bc.Facts.Sudo {
		return errors.Wrapf(nixuperrors.ErrPrerequisites, "missing %v and %s requires sudo", missing, mgr)
	}

	pkgs := make([]string, 0, len(missing))
	for _, bin := range missing {
		pkg := bin
		if name, ok := prereqPackage[mgr][bin]; ok {
			pkg = name
		}
		pkgs = append(pkgs, pkg)
	}

	name, argv := run.Sudo(mgr.NeedsSudo(), string(mgr), mgr.InstallArgs(pkgs...)...)
	if err := bc.Runner.Run(ctx, name, argv...); err != nil {
		return errors.Wrapf(nixuperrors.ErrPrerequisites, "installing %v: %v", pkgs, err)
	}

	for _, bin := range missing {
		if !bc.Runner.LookPath(bin) {
			return errors.Wrapf(nixuperrors.ErrPrerequisites, "%s still missing after install", bin)
		}
	}
	return nil
}

// FlakesStep enables the flakes feature set in nix.conf.
type FlakesStep struct{}

var _ Step = (*FlakesStep)(nil)

// Name returns the unique identifier for this step.
func (*FlakesStep) Name() string { return "enable-flakes" }

// Run ensures the feature line in the per-user nix.conf, which works for
// both daemon and single-user installs, and additionally in the system
// nix.conf when privileged so the daemon picks it up too. Each file ends
// up with exactly one copy of the line no matter how often this runs.
func (*FlakesStep) Run(ctx context.Context, bc *Context) (*Result, error) {
	userOK, err := fileutil.HasLine(bc.NixUserConf, FlakesLine)
	if err != nil {
		return Failedf("reading %s: %v", bc.NixUserConf, err), nil
	}
	sysOK, _ := fileutil.HasLine(bc.NixSystemConf, FlakesLine)

	if userOK && (sysOK || !bc.Facts.Sudo) {
		return Satisfied("flakes already enabled"), nil
	}

	if bc.DryRun {
		return Skipped(fmt.Sprintf("dry run: would enable flakes in %s", bc.NixUserConf)), nil
	}

	var changed []string
	if !userOK {
		bc.snapshot(ctx, bc.NixUserConf)
		if _, err := fileutil.EnsureLine(bc.NixUserConf, FlakesLine, 0o644); err != nil {
			return Failedf("writing %s: %v", bc.NixUserConf, err), nil
		}
		changed = append(changed, bc.NixUserConf)
	}

	if bc.Facts.Sudo && !sysOK {
		script := fmt.Sprintf("mkdir -p %s && echo '%s' >> %s",
			filepath.Dir(bc.NixSystemConf), FlakesLine, bc.NixSystemConf)
		name, argv := run.Sudo(true, "sh", "-c", script)
		if err := bc.Runner.Run(ctx, name, argv...); err != nil {
			return Failedf("enabling flakes in %s: %v", bc.NixSystemConf, err), nil
		}
		changed = append(changed, bc.NixSystemConf)
	}

	return Changedf("enabled flakes in %s", strings.Join(changed, ", ")), nil
}
