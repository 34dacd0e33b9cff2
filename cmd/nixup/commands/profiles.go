package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/nixup/internal/config"
	"github.com/thoreinstein/nixup/internal/editor"
	nixuperrors "github.com/thoreinstein/nixup/internal/errors"
	"github.com/thoreinstein/nixup/internal/paths"
	"github.com/thoreinstein/nixup/internal/profile"
)

func init() {
	profilesCmd.AddCommand(profilesEditCmd)
	rootCmd.AddCommand(profilesCmd)
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List available environment profiles",
	Long: `List the environment profiles nixup can bootstrap.

Profiles come from the built-in catalog plus any entries in the
profiles.toml file in the nixup config directory. The flake.nix for the
chosen profile is fetched into the project directory during nixup up.`,
	RunE: runProfiles,
}

func runProfiles(cmd *cobra.Command, _ []string) error {
	catalog, err := profile.Load(config.ProfilesPath())
	if err != nil {
		return nixuperrors.NewConfigError(err)
	}

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)

	for _, p := range catalog.List() {
		name := p.Name
		if name == cfg.DefaultProfile {
			name += " (default)"
		}
		bold.Fprintln(out, name)
		if p.Description != "" {
			fmt.Fprintf(out, "  %s\n", p.Description)
		}
		fmt.Fprintf(out, "  %s\n", color.New(color.Faint).Sprint(p.FlakeURL))
	}

	return nil
}

// profilesTemplate seeds a new profiles.toml so the user edits a working
// example instead of an empty buffer.
const profilesTemplate = `# Custom environment profiles for nixup.
#
# [profiles.myproject]
# description = "Rust toolchain with wasm targets"
# flake_url = "https://example.com/flakes/rust-wasm/flake.nix"
`

var profilesEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the profile catalog",
	Long: `Open the profiles.toml catalog in your editor ($EDITOR, $VISUAL,
nano, or vi). The file is created with a commented example if it does
not exist yet.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		path := config.ProfilesPath()

		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
				return nixuperrors.NewSystemError(err, "")
			}
			if err := os.WriteFile(path, []byte(profilesTemplate), 0o644); err != nil {
				return nixuperrors.NewSystemError(err, "")
			}
		}

		if err := editor.Open(path); err != nil {
			return err
		}

		// Re-parse so a broken edit is reported immediately.
		if _, err := profile.Load(path); err != nil {
			return nixuperrors.NewUserError(err, "Fix the file or delete it to start over: "+path)
		}
		return nil
	},
}
