package bootstrap

import (
	"context"
	"fmt"
)

// ActivateStep approves the project for direnv and smoke-tests the flake.
type ActivateStep struct{}

var _ Step = (*ActivateStep)(nil)

// Name returns the unique identifier for this step.
func (*ActivateStep) Name() string { return "activate" }

// Run approves .envrc with direnv and verifies the environment builds by
// entering it once. When nix or direnv landed in this run but are not on
// PATH yet, activation is deferred to the next shell rather than failed.
func (*ActivateStep) Run(ctx context.Context, bc *Context) (*Result, error) {
	if bc.DryRun {
		return Skipped("dry run: would activate the environment"), nil
	}

	if !bc.Runner.LookPath("direnv") || !bc.Runner.LookPath("nix") {
		return Skipped("open a new shell, then run `direnv allow` in the project directory"), nil
	}

	if err := bc.Runner.Run(ctx, "direnv", "allow", bc.TargetDir); err != nil {
		return Failedf("direnv allow: %v", err), nil
	}

	if err := bc.Runner.Run(ctx, "nix", "develop", bc.TargetDir, "--command", "true"); err != nil {
		return Failedf("environment smoke test failed: %v", err), nil
	}

	return Satisfied(fmt.Sprintf("environment at %s builds and activates", bc.TargetDir)), nil
}
