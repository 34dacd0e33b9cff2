package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	nixupcmd "github.com/thoreinstein/nixup/cmd"
	"github.com/thoreinstein/nixup/internal/bootstrap"
	"github.com/thoreinstein/nixup/internal/cli/prompt"
	"github.com/thoreinstein/nixup/internal/config"
	nixuperrors "github.com/thoreinstein/nixup/internal/errors"
	"github.com/thoreinstein/nixup/internal/logging"
	"github.com/thoreinstein/nixup/internal/profile"
	"github.com/thoreinstein/nixup/internal/state"
)

var (
	upDir     string
	upProfile string
	upYes     bool
	upDryRun  bool
)

func init() {
	upCmd.Flags().StringVar(&upDir, "dir", "",
		"project directory (skips the location menu)")
	upCmd.Flags().StringVar(&upProfile, "profile", "",
		"environment profile to use (skips the profile picker)")
	upCmd.Flags().BoolVarP(&upYes, "yes", "y", false,
		"assume yes for non-destructive prompts")
	upCmd.Flags().BoolVar(&upDryRun, "dry-run", false,
		"report what would change without changing anything")
	rootCmd.AddCommand(upCmd)
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Bootstrap the development environment",
	Long: `Bring this machine to a working Nix + direnv development setup.

The bootstrap runs a fixed sequence of idempotent steps: detect the
platform, install zsh and offer it as the login shell, install Nix with
flakes enabled, install direnv and hook it into the shell, create the
project directory, fetch the environment definition, and activate it.

Steps that find their state already in place change nothing, so re-running
is always safe. Destructive choices (reusing an existing directory,
overwriting an existing flake.nix) always ask, even with --yes.`,
	Example: `  # Interactive bootstrap
  nixup up

  # Non-interactive, known target
  nixup up --dir ~/src/myproject --profile default --yes

  # Preview only
  nixup up --dry-run`,
	RunE: runUp,
}

func runUp(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	prompter := newPrompter()
	if t, ok := prompter.(*prompt.Terminal); ok {
		defer t.Close()
	}

	prof, err := selectProfile(prompter)
	if err != nil {
		return err
	}
	log.Debug("profile selected", "name", prof.Name, "flake_url", prof.FlakeURL)

	bc := bootstrap.NewContext(cfg, prof, prompter)
	bc.DryRun = upDryRun
	bc.AssumeYes = upYes
	bc.TargetDir = upDir

	report, runErr := bootstrap.New().Run(ctx, bc)
	renderReport(cmd, report)

	if !upDryRun {
		if err := state.Save(state.DefaultPath(), stateReport(report, bc)); err != nil {
			log.Warn("could not save run report", "error", err)
		}
	}

	return exitFor(runErr)
}

// newPrompter returns a terminal prompter, or the refusing prompter when
// no controlling terminal exists. The latter only surfaces as an error if
// a question actually has to be asked.
func newPrompter() prompt.Prompter {
	t, err := prompt.NewTerminal()
	if err != nil {
		return prompt.NonInteractive{}
	}
	return t
}

// selectProfile resolves the --profile flag or asks the user to pick one.
func selectProfile(p prompt.Prompter) (profile.Profile, error) {
	catalog, err := profile.Load(config.ProfilesPath())
	if err != nil {
		return profile.Profile{}, nixuperrors.NewConfigError(err)
	}

	name := upProfile
	if name == "" {
		name = cfg.DefaultProfile
	}

	// An explicit flag always means that exact profile.
	if upProfile != "" || catalog.Len() == 1 {
		prof, err := catalog.Get(name)
		if err != nil {
			return profile.Profile{}, nixuperrors.NewUserError(err, "Run: nixup profiles")
		}
		return prof, nil
	}

	fullTTY := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	return profile.Choose(catalog, p, fullTTY)
}

// renderReport prints the per-step outcomes and a one-line summary.
func renderReport(cmd *cobra.Command, report *bootstrap.Report) {
	if quiet || report == nil {
		return
	}

	out := cmd.OutOrStdout()
	for _, res := range report.Results {
		fmt.Fprintf(out, "%s %-22s %s\n", stepIcon(res.Status), res.Name, res.Message)
	}

	fmt.Fprintf(out, "\n%d satisfied, %d changed, %d skipped, %d failed\n",
		report.Summary.Satisfied, report.Summary.Changed,
		report.Summary.Skipped, report.Summary.Failed)
}

func stepIcon(s bootstrap.Status) string {
	switch s {
	case bootstrap.StatusSatisfied:
		return color.GreenString("✓")
	case bootstrap.StatusChanged:
		return color.CyanString("+")
	case bootstrap.StatusSkipped:
		return color.YellowString("-")
	case bootstrap.StatusFailed:
		return color.RedString("✗")
	default:
		return "?"
	}
}

// stateReport converts the pipeline report into the persisted run record.
func stateReport(report *bootstrap.Report, bc *bootstrap.Context) *state.Report {
	r := &state.Report{
		Timestamp: report.Timestamp,
		Version:   nixupcmd.Version,
		Facts:     bc.Facts,
		DryRun:    bc.DryRun,
		TargetDir: bc.TargetDir,
		Profile:   bc.Profile.Name,
	}
	for _, res := range report.Results {
		r.Steps = append(r.Steps, state.StepRecord{
			Name:    res.Name,
			Status:  res.Status.String(),
			Message: res.Message,
		})
	}
	return r
}

// exitFor maps the pipeline outcome to the process exit taxonomy: user
// aborts exit 1, system failures exit 2. Step warnings still exit 0 so
// that scripted re-runs don't trip on degraded-but-working hosts.
func exitFor(runErr error) error {
	if runErr == nil {
		return nil
	}
	if nixuperrors.IsUserAbort(runErr) {
		return nixuperrors.NewExitError(runErr, nixuperrors.ExitUser)
	}
	return nixuperrors.NewSystemError(runErr, "Run: nixup doctor")
}
