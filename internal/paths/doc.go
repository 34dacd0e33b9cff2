// Package paths provides path resolution for everything the bootstrap
// touches: nixup's own config and state directories, the nix.conf files,
// shell startup files, and the system shells list.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base
// Directory Specification compliance. On Linux and macOS, paths follow XDG
// conventions (~/.config, ~/.local/state).
//
// # Well-Known Files
//
// The bootstrap edits a small fixed set of files:
//
//	| File                       | Helper              |
//	|----------------------------|---------------------|
//	| <ConfigHome>/nix/nix.conf  | NixUserConfPath     |
//	| /etc/nix/nix.conf          | NixSystemConfPath   |
//	| /etc/shells                | EtcShellsPath       |
//	| ~/.zshrc                   | ZshRCPath           |
//	| ~/.bashrc                  | BashRCPath          |
//
// # Error Handling
//
// Helpers that depend on the home directory return empty strings when it
// cannot be determined. Use [ResolveHome] or [ExpandTilde] when a proper
// error is needed.
package paths
