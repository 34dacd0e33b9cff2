package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is used for nixup-owned config and state locations.
const AppName = "nixup"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory.
// This is a thin wrapper around os.UserHomeDir for consistency.
// Note: It returns an empty string on error.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
func ConfigHome() string {
	return xdg.ConfigHome
}

// StateHome returns the XDG state home directory.
// On Linux: ~/.local/state
func StateHome() string {
	return xdg.StateHome
}

// NixupConfigDir returns the directory for nixup's own configuration.
// Returns: <ConfigHome>/nixup/
func NixupConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// NixupStateDir returns the directory for nixup's run state.
// Returns: <StateHome>/nixup/
func NixupStateDir() string {
	return filepath.Join(StateHome(), AppName)
}

// NixUserConfPath returns the user-level nix.conf path.
// Returns: <ConfigHome>/nix/nix.conf
func NixUserConfPath() string {
	return filepath.Join(ConfigHome(), "nix", "nix.conf")
}

// NixSystemConfPath is the system-wide nix.conf path.
// Writing here requires elevated privilege.
const NixSystemConfPath = "/etc/nix/nix.conf"

// EtcShellsPath is the system list of allowed login shells.
const EtcShellsPath = "/etc/shells"

// ZshRCPath returns the path to the user's ~/.zshrc.
// Returns an empty string if the home directory cannot be determined.
func ZshRCPath() string {
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".zshrc")
}

// BashRCPath returns the path to the user's ~/.bashrc.
// Returns an empty string if the home directory cannot be determined.
func BashRCPath() string {
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".bashrc")
}

// ExpandTilde expands a leading "~" or "~/" prefix in path to the user's
// home directory. Paths without a tilde prefix are returned unchanged.
// Returns ErrHomeDirNotFound if expansion is needed but the home directory
// cannot be determined, and ErrInvalidPath for "~user" forms, which are not
// supported.
func ExpandTilde(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return "", errors.Wrapf(ErrInvalidPath, "unsupported tilde form: %s", path)
	}
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
