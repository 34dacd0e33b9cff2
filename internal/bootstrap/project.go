package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	nixuperrors "github.com/thoreinstein/nixup/internal/errors"
	"github.com/thoreinstein/nixup/internal/paths"
	"github.com/thoreinstein/nixup/pkg/fileutil"
)

// EnvrcLine is the .envrc directive that loads the flake environment.
const EnvrcLine = "use flake"

// ProjectDirStep chooses and creates the project directory.
type ProjectDirStep struct{}

var _ Step = (*ProjectDirStep)(nil)

// Name returns the unique identifier for this step.
func (*ProjectDirStep) Name() string { return "project-dir" }

// Run resolves the target directory, asking for a base location when none
// was given on the command line. Reusing an existing directory requires
// explicit confirmation; declining aborts the run before any project file
// is touched.
func (*ProjectDirStep) Run(_ context.Context, bc *Context) (*Result, error) {
	if bc.TargetDir == "" {
		dir, err := chooseDir(bc)
		if err != nil {
			return nil, err
		}
		bc.TargetDir = dir
	}

	expanded, err := paths.ExpandTilde(bc.TargetDir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", bc.TargetDir)
	}
	bc.TargetDir = expanded

	info, err := os.Stat(bc.TargetDir)
	switch {
	case err == nil && !info.IsDir():
		return nil, errors.Newf("%s exists and is not a directory", bc.TargetDir)
	case err == nil:
		ok, perr := bc.Prompter.Confirm(
			fmt.Sprintf("Directory %s already exists. Use it anyway?", bc.TargetDir), false)
		if perr != nil {
			return nil, perr
		}
		if !ok {
			return nil, errors.Wrapf(nixuperrors.ErrDeclined, "directory %s not reused", bc.TargetDir)
		}
		return Satisfied(fmt.Sprintf("reusing %s", bc.TargetDir)), nil
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "checking %s", bc.TargetDir)
	}

	if bc.DryRun {
		return Skipped(fmt.Sprintf("dry run: would create %s", bc.TargetDir)), nil
	}
	if err := paths.EnsureDir(bc.TargetDir, 0o755); err != nil {
		return nil, err
	}
	return Changedf("created %s", bc.TargetDir), nil
}

// chooseDir presents the base-location menu and returns the full project
// path (base joined with the configured project name).
func chooseDir(bc *Context) (string, error) {
	options := []string{
		"Home directory",
		"Documents",
		"Desktop",
		"Somewhere else",
	}
	idx, err := bc.Prompter.Select("Where should the project live?", options, 0)
	if err != nil {
		return "", err
	}

	var base string
	switch idx {
	case 0:
		base = bc.Home
	case 1:
		base = filepath.Join(bc.Home, "Documents")
	case 2:
		base = filepath.Join(bc.Home, "Desktop")
	default:
		custom, err := bc.Prompter.Input("Enter the base directory")
		if err != nil {
			return "", err
		}
		if custom == "" {
			return "", errors.Wrap(nixuperrors.ErrCancelled, "empty directory")
		}
		base = custom
	}

	return filepath.Join(base, bc.Config.ProjectName), nil
}

// FetchFlakeStep downloads flake.nix into the project directory.
type FetchFlakeStep struct{}

var _ Step = (*FetchFlakeStep)(nil)

// Name returns the unique identifier for this step.
func (*FetchFlakeStep) Name() string { return "fetch-flake" }

// Run fetches the profile's flake definition. An existing flake.nix is
// only replaced after explicit confirmation; declining keeps the file
// byte-for-byte intact.
func (*FetchFlakeStep) Run(ctx context.Context, bc *Context) (*Result, error) {
	url := bc.Profile.FlakeURL
	if bc.Config.FlakeURL != "" {
		url = bc.Config.FlakeURL
	}

	dest := filepath.Join(bc.TargetDir, "flake.nix")
	if bc.DryRun {
		return Skipped(fmt.Sprintf("dry run: would fetch %s", url)), nil
	}

	if _, err := os.Stat(dest); err == nil {
		ok, perr := bc.Prompter.Confirm(fmt.Sprintf("Overwrite existing %s?", dest), false)
		if perr != nil {
			return nil, perr
		}
		if !ok {
			return Satisfied(fmt.Sprintf("kept existing %s", dest)), nil
		}
	}

	if err := bc.Fetcher.Download(ctx, url, dest, 0o644); err != nil {
		return Failedf("fetching flake.nix: %v", err), nil
	}
	return Changedf("wrote %s from %s", dest, url), nil
}

// EnvrcStep writes the .envrc that ties direnv to the flake.
type EnvrcStep struct{}

var _ Step = (*EnvrcStep)(nil)

// Name returns the unique identifier for this step.
func (*EnvrcStep) Name() string { return "write-envrc" }

// Run ensures .envrc contains the use-flake directive.
func (*EnvrcStep) Run(_ context.Context, bc *Context) (*Result, error) {
	dest := filepath.Join(bc.TargetDir, ".envrc")

	has, err := fileutil.HasLine(dest, EnvrcLine)
	if err != nil {
		return Failedf("reading %s: %v", dest, err), nil
	}
	if has {
		return Satisfied(fmt.Sprintf("%s already configured", dest)), nil
	}

	if bc.DryRun {
		return Skipped(fmt.Sprintf("dry run: would write %s", dest)), nil
	}

	if _, err := fileutil.EnsureLine(dest, EnvrcLine, 0o644); err != nil {
		return Failedf("writing %s: %v", dest, err), nil
	}
	return Changedf("wrote %s", dest), nil
}
