package system

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/thoreinstein/nixup/internal/run"
)

// Platform classifies the host operating system.
type Platform string

const (
	// PlatformMacOS is Darwin.
	PlatformMacOS Platform = "macos"

	// PlatformLinux is native Linux.
	PlatformLinux Platform = "linux"

	// PlatformWSL is Linux under the Windows Subsystem for Linux.
	PlatformWSL Platform = "wsl"

	// PlatformUnknown gets no package-manager-specific behavior.
	PlatformUnknown Platform = "unknown"
)

// LinuxLike reports whether the platform uses Linux package managers.
func (p Platform) LinuxLike() bool {
	return p == PlatformLinux || p == PlatformWSL
}

// PackageManager identifies a system package tool.
type PackageManager string

// Known package managers, in detection priority order per platform.
const (
	PkgAptGet  PackageManager = "apt-get"
	PkgDNF     PackageManager = "dnf"
	PkgYum     PackageManager = "yum"
	PkgPacman  PackageManager = "pacman"
	PkgZypper  PackageManager = "zypper"
	PkgAPK     PackageManager = "apk"
	PkgBrew    PackageManager = "brew"
	PkgUnknown PackageManager = ""
)

// linuxManagers is the fixed priority list probed on Linux and WSL.
// First match wins.
var linuxManagers = []PackageManager{
	PkgAptGet, PkgDNF, PkgYum, PkgPacman, PkgZypper, PkgAPK,
}

// installArgs maps each package manager to its non-interactive install argv.
var installArgs = map[PackageManager][]string{
	PkgAptGet: {"install", "-y"},
	PkgDNF:    {"install", "-y"},
	PkgYum:    {"install", "-y"},
	PkgPacman: {"-S", "--noconfirm"},
	PkgZypper: {"--non-interactive", "install"},
	PkgAPK:    {"add"},
	PkgBrew:   {"install"},
}

// InstallArgs returns the argv (after the manager binary itself) that
// installs pkgs non-interactively, or nil for PkgUnknown.
func (m PackageManager) InstallArgs(pkgs ...string) []string {
	base, ok := installArgs[m]
	if !ok {
		return nil
	}
	return append(append([]string{}, base...), pkgs...)
}

// NeedsSudo reports whether installs through this manager require
// elevated privilege. Homebrew refuses to run under sudo.
func (m PackageManager) NeedsSudo() bool {
	return m != PkgBrew && m != PkgUnknown
}

// Facts holds everything the pipeline needs to know about the host.
// Detected once at pipeline start; steps must not re-probe.
type Facts struct {
	Platform       Platform       `json:"platform" yaml:"platform"`
	PackageManager PackageManager `json:"package_manager" yaml:"package_manager"`

	// Sudo is true when passwordless elevated privilege is available.
	Sudo bool `json:"sudo" yaml:"sudo"`
}

// Detector probes the host. The zero value is not usable; use NewDetector.
type Detector struct {
	goos        string
	procVersion string
	runner      run.Runner
}

// NewDetector creates a Detector backed by the real host.
func NewDetector(r run.Runner) *Detector {
	return &Detector{
		goos:        runtime.GOOS,
		procVersion: "/proc/version",
		runner:      r,
	}
}

// NewDetectorForTest creates a Detector with an explicit GOOS value and
// /proc/version path.
func NewDetectorForTest(goos, procVersion string, r run.Runner) *Detector {
	return &Detector{goos: goos, procVersion: procVersion, runner: r}
}

// Detect probes all facts in order: platform, privilege, package manager.
func (d *Detector) Detect(ctx context.Context) Facts {
	f := Facts{Platform: d.Platform()}
	f.Sudo = d.Sudo(ctx)
	f.PackageManager = d.PackageManager(f.Platform)
	return f
}

// Platform classifies the host as macOS, Linux, WSL, or unknown.
// WSL is recognized by the "microsoft" marker in /proc/version.
func (d *Detector) Platform() Platform {
	switch d.goos {
	case "darwin":
		return PlatformMacOS
	case "linux":
		if data, err := os.ReadFile(d.procVersion); err == nil {
			if strings.Contains(strings.ToLower(string(data)), "microsoft") {
				return PlatformWSL
			}
		}
		return PlatformLinux
	default:
		return PlatformUnknown
	}
}

// Sudo probes for passwordless elevated privilege via `sudo -n true`.
func (d *Detector) Sudo(ctx context.Context) bool {
	if !d.runner.LookPath("sudo") {
		return false
	}
	return d.runner.Run(ctx, "sudo", "-n", "true") == nil
}

// PackageManager probes the fixed priority list for the platform and
// returns the first match, or PkgUnknown when none is found.
func (d *Detector) PackageManager(p Platform) PackageManager {
	switch {
	case p == PlatformMacOS:
		if d.runner.LookPath(string(PkgBrew)) {
			return PkgBrew
		}
	case p.LinuxLike():
		for _, m := range linuxManagers {
			if d.runner.LookPath(string(m)) {
				return m
			}
		}
	}
	return PkgUnknown
}
