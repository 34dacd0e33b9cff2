package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thoreinstein/nixup/internal/bootstrap"
	"github.com/thoreinstein/nixup/internal/paths"
	"github.com/thoreinstein/nixup/internal/run"
	"github.com/thoreinstein/nixup/internal/state"
	"github.com/thoreinstein/nixup/internal/system"
	"github.com/thoreinstein/nixup/pkg/fileutil"
)

// fixHint is the standard remediation for anything the bootstrap installs.
const fixHint = "Run: nixup up"

// Env holds the host handles the checks probe. Fields are overridable in
// tests; NewEnv fills in production defaults.
type Env struct {
	Runner   run.Runner
	Detector *system.Detector

	NixUserConf   string
	NixSystemConf string
	ZshRC         string
	BashRC        string
	EtcShells     string
	CurrentShell  string
	StatePath     string
}

// NewEnv creates an Env backed by the real host.
func NewEnv() *Env {
	r := run.Exec{}
	return &Env{
		Runner:        r,
		Detector:      system.NewDetector(r),
		NixUserConf:   paths.NixUserConfPath(),
		NixSystemConf: paths.NixSystemConfPath,
		ZshRC:         paths.ZshRCPath(),
		BashRC:        paths.BashRCPath(),
		EtcShells:     paths.EtcShellsPath,
		CurrentShell:  os.Getenv("SHELL"),
		StatePath:     state.DefaultPath(),
	}
}

// DefaultChecks returns the full diagnostic suite in display order.
func DefaultChecks(env *Env) []Check {
	return []Check{
		NewPlatformCheck(env),
		NewPrivilegeCheck(env),
		NewPackageManagerCheck(env),
		NewBinaryCheck(env, "zsh", SeverityWarning),
		NewBinaryCheck(env, "nix", SeverityError),
		NewBinaryCheck(env, "direnv", SeverityError),
		NewFlakesCheck(env),
		NewHooksCheck(env),
		NewLoginShellCheck(env),
		NewLastRunCheck(env),
	}
}

// PlatformCheck reports the detected operating system.
type PlatformCheck struct{ env *Env }

var _ Check = (*PlatformCheck)(nil)

// NewPlatformCheck creates a new platform check.
func NewPlatformCheck(env *Env) *PlatformCheck {
	return &PlatformCheck{env: env}
}

// Name returns the unique identifier for this check.
func (c *PlatformCheck) Name() string { return "platform" }

// Category returns the grouping for this check.
func (c *PlatformCheck) Category() string { return "system" }

// Run executes the platform diagnostic check.
func (c *PlatformCheck) Run(context.Context) *CheckResult {
	p := c.env.Detector.Platform()
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"platform": string(p)},
	}

	if p == system.PlatformUnknown {
		result.Status = SeverityWarning
		result.Message = "unrecognized operating system; OS-level installs are unavailable"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("platform: %s", p)
	return result
}

// PrivilegeCheck probes for passwordless sudo.
type PrivilegeCheck struct{ env *Env }

var _ Check = (*PrivilegeCheck)(nil)

// NewPrivilegeCheck creates a new privilege check.
func NewPrivilegeCheck(env *Env) *PrivilegeCheck {
	return &PrivilegeCheck{env: env}
}

// Name returns the unique identifier for this check.
func (c *PrivilegeCheck) Name() string { return "privilege" }

// Category returns the grouping for this check.
func (c *PrivilegeCheck) Category() string { return "system" }

// Run executes the privilege diagnostic check. Missing sudo is
// informational: the bootstrap falls back to user-level installs.
func (c *PrivilegeCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if c.env.Detector.Sudo(ctx) {
		result.Status = SeverityPass
		result.Message = "passwordless sudo available"
		return result
	}

	result.Status = SeverityInfo
	result.Message = "passwordless sudo not available; installs run at user level"
	return result
}

// PackageManagerCheck probes for a usable system package tool.
type PackageManagerCheck struct{ env *Env }

var _ Check = (*PackageManagerCheck)(nil)

// NewPackageManagerCheck creates a new package manager check.
func NewPackageManagerCheck(env *Env) *PackageManagerCheck {
	return &PackageManagerCheck{env: env}
}

// Name returns the unique identifier for this check.
func (c *PackageManagerCheck) Name() string { return "package-manager" }

// Category returns the grouping for this check.
func (c *PackageManagerCheck) Category() string { return "system" }

// Run executes the package manager diagnostic check.
func (c *PackageManagerCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	mgr := c.env.Detector.PackageManager(c.env.Detector.Platform())
	if mgr == system.PkgUnknown {
		result.Status = SeverityWarning
		result.Message = "no known package manager found"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("package manager: %s", mgr)
	result.Details = map[string]any{"manager": string(mgr)}
	return result
}

// BinaryCheck verifies a required binary is on PATH.
type BinaryCheck struct {
	env     *Env
	binary  string
	missing Severity
}

var _ Check = (*BinaryCheck)(nil)

// NewBinaryCheck creates a check for the given binary. The missing
// severity distinguishes hard requirements from nice-to-haves.
func NewBinaryCheck(env *Env, binary string, missing Severity) *BinaryCheck {
	return &BinaryCheck{env: env, binary: binary, missing: missing}
}

// Name returns the unique identifier for this check.
func (c *BinaryCheck) Name() string { return "binary-" + c.binary }

// Category returns the grouping for this check.
func (c *BinaryCheck) Category() string { return "tools" }

// Run executes the binary presence check.
func (c *BinaryCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if c.env.Runner.LookPath(c.binary) {
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("%s found on PATH", c.binary)
		return result
	}

	result.Status = c.missing
	result.Message = fmt.Sprintf("%s not found on PATH", c.binary)
	result.FixHint = fixHint
	return result
}

// FlakesCheck verifies the flakes feature set is enabled in nix.conf.
type FlakesCheck struct{ env *Env }

var _ Check = (*FlakesCheck)(nil)

// NewFlakesCheck creates a new flakes configuration check.
func NewFlakesCheck(env *Env) *FlakesCheck {
	return &FlakesCheck{env: env}
}

// Name returns the unique identifier for this check.
func (c *FlakesCheck) Name() string { return "flakes" }

// Category returns the grouping for this check.
func (c *FlakesCheck) Category() string { return "config" }

// Run executes the flakes configuration check. Either the system or the
// per-user nix.conf may carry the flag.
func (c *FlakesCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	for _, conf := range []string{c.env.NixSystemConf, c.env.NixUserConf} {
		if ok, err := fileutil.HasLine(conf, bootstrap.FlakesLine); err == nil && ok {
			result.Status = SeverityPass
			result.Message = fmt.Sprintf("flakes enabled in %s", conf)
			return result
		}
	}

	result.Status = SeverityWarning
	result.Message = "flakes feature set is not enabled"
	result.FixHint = fixHint
	result.Details = map[string]any{"expected_line": bootstrap.FlakesLine}
	return result
}

// HooksCheck verifies the direnv hook is wired into the shell rc files.
type HooksCheck struct{ env *Env }

var _ Check = (*HooksCheck)(nil)

// NewHooksCheck creates a new shell hook check.
func NewHooksCheck(env *Env) *HooksCheck {
	return &HooksCheck{env: env}
}

// Name returns the unique identifier for this check.
func (c *HooksCheck) Name() string { return "shell-hooks" }

// Category returns the grouping for this check.
func (c *HooksCheck) Category() string { return "config" }

// Run executes the shell hook check. Both rc files must carry their hook
// line; the bootstrap creates either file when it is missing.
func (c *HooksCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	var missing []string
	if ok, err := fileutil.HasLine(c.env.ZshRC, bootstrap.ZshHookLine); err != nil || !ok {
		missing = append(missing, filepath.Base(c.env.ZshRC))
	}
	if ok, err := fileutil.HasLine(c.env.BashRC, bootstrap.BashHookLine); err != nil || !ok {
		missing = append(missing, filepath.Base(c.env.BashRC))
	}

	if len(missing) == 0 {
		result.Status = SeverityPass
		result.Message = "direnv hooks present"
		return result
	}

	result.Status = SeverityWarning
	result.Message = fmt.Sprintf("direnv hook missing from %v", missing)
	result.FixHint = fixHint
	return result
}

// LoginShellCheck reports whether zsh is the login shell.
type LoginShellCheck struct{ env *Env }

var _ Check = (*LoginShellCheck)(nil)

// NewLoginShellCheck creates a new login shell check.
func NewLoginShellCheck(env *Env) *LoginShellCheck {
	return &LoginShellCheck{env: env}
}

// Name returns the unique identifier for this check.
func (c *LoginShellCheck) Name() string { return "login-shell" }

// Category returns the grouping for this check.
func (c *LoginShellCheck) Category() string { return "config" }

// Run executes the login shell check. A non-zsh shell is informational;
// the user may have declined the switch on purpose.
func (c *LoginShellCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"shell": c.env.CurrentShell},
	}

	if filepath.Base(c.env.CurrentShell) == "zsh" {
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("login shell: %s", c.env.CurrentShell)
		return result
	}

	result.Status = SeverityInfo
	result.Message = fmt.Sprintf("login shell is %s, not zsh", c.env.CurrentShell)
	return result
}

// LastRunCheck reports on the previous bootstrap run, if any.
type LastRunCheck struct{ env *Env }

var _ Check = (*LastRunCheck)(nil)

// NewLastRunCheck creates a new last-run state check.
func NewLastRunCheck(env *Env) *LastRunCheck {
	return &LastRunCheck{env: env}
}

// Name returns the unique identifier for this check.
func (c *LastRunCheck) Name() string { return "last-run" }

// Category returns the grouping for this check.
func (c *LastRunCheck) Category() string { return "state" }

// Run executes the last-run state check.
func (c *LastRunCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	report, err := state.Load(c.env.StatePath)
	if err != nil {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("could not read %s: %v", c.env.StatePath, err)
		return result
	}
	if report == nil {
		result.Status = SeverityInfo
		result.Message = "no previous bootstrap run recorded"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("last bootstrap run: %s", report.Timestamp.Format("2006-01-02 15:04:05 MST"))
	result.Details = map[string]any{"path": c.env.StatePath}
	return result
}
