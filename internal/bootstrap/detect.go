package bootstrap

import (
	"context"
	"fmt"

	"github.com/thoreinstein/nixup/internal/system"
)

// PlatformStep classifies the host operating system into the facts.
type PlatformStep struct{}

var _ Step = (*PlatformStep)(nil)

// Name returns the unique identifier for this step.
func (*PlatformStep) Name() string { return "detect-platform" }

// Run classifies the platform. It never fails; unknown platforms simply
// get no package-manager-specific behavior later.
func (*PlatformStep) Run(_ context.Context, bc *Context) (*Result, error) {
	bc.Facts.Platform = bc.Detector.Platform()

	if bc.Facts.Platform == system.PlatformUnknown {
		return Failedf("unrecognized operating system; OS-level installs will be skipped"), nil
	}
	return Satisfied(fmt.Sprintf("platform: %s", bc.Facts.Platform)), nil
}

// PrivilegeStep probes for passwordless elevated privilege.
type PrivilegeStep struct{}

var _ Step = (*PrivilegeStep)(nil)

// Name returns the unique identifier for this step.
func (*PrivilegeStep) Name() string { return "detect-privilege" }

// Run probes sudo once. The decision is cached in the facts for the whole
// run so later steps cannot disagree with each other.
func (*PrivilegeStep) Run(ctx context.Context, bc *Context) (*Result, error) {
	bc.Facts.Sudo = bc.Detector.Sudo(ctx)

	if !bc.Facts.Sudo {
		return Failedf("passwordless sudo not available; falling back to user-level installs"), nil
	}
	return Satisfied("passwordless sudo available"), nil
}

// PackageManagerStep probes the fixed priority list of system package tools.
type PackageManagerStep struct{}

var _ Step = (*PackageManagerStep)(nil)

// Name returns the unique identifier for this step.
func (*PackageManagerStep) Name() string { return "detect-package-manager" }

// Run records the first package manager found, or marks it unknown.
func (*PackageManagerStep) Run(_ context.Context, bc *Context) (*Result, error) {
	bc.Facts.PackageManager = bc.Detector.PackageManager(bc.Facts.Platform)

	if bc.Facts.PackageManager == system.PkgUnknown {
		return Failedf("no known package manager found; OS-level installs will be skipped"), nil
	}
	return Satisfied(fmt.Sprintf("package manager: %s", bc.Facts.PackageManager)), nil
}
