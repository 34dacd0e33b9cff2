package bootstrap

import (
	"context"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/nixup/internal/backup"
	"github.com/thoreinstein/nixup/internal/cli/prompt"
	"github.com/thoreinstein/nixup/internal/config"
	"github.com/thoreinstein/nixup/internal/fetch"
	"github.com/thoreinstein/nixup/internal/logging"
	"github.com/thoreinstein/nixup/internal/paths"
	"github.com/thoreinstein/nixup/internal/profile"
	"github.com/thoreinstein/nixup/internal/run"
	"github.com/thoreinstein/nixup/internal/system"
)

// Step is one idempotent ensure operation in the pipeline.
//
// A step reports its outcome through the Result. A non-nil error is
// reserved for the fatal abort conditions (declined destructive prompt,
// unobtainable prerequisites, unexpected command failure); it stops the
// pipeline immediately.
type Step interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Run executes the step against the given context.
	Run(ctx context.Context, bc *Context) (*Result, error)
}

// Context carries detected facts and injected capabilities through the
// pipeline. Facts are filled in by the detection steps at the front of the
// pipeline and not re-probed afterwards.
type Context struct {
	Facts   system.Facts
	Config  *config.Config
	Profile profile.Profile

	Runner   run.Runner
	Prompter prompt.Prompter
	Fetcher  *fetch.Client
	Detector *system.Detector

	// Backup snapshots configuration files before they are modified.
	// Nil disables backups.
	Backup *backup.Manager

	// DryRun reports every mutation instead of performing it.
	DryRun bool

	// AssumeYes answers the default-shell prompt affirmatively.
	// Destructive prompts (directory reuse, file overwrite) still ask.
	AssumeYes bool

	// TargetDir is the project directory. Preset via --dir, otherwise
	// filled in by the directory-selection step.
	TargetDir string

	// File locations, overridable in tests.
	Home          string
	ZshRC         string
	BashRC        string
	NixUserConf   string
	NixSystemConf string
	EtcShells     string

	// CurrentShell is the user's login shell ($SHELL).
	CurrentShell string

	// ZshCandidates are the paths probed for the zsh binary.
	ZshCandidates []string
}

// NewContext builds a production Context with host-backed capabilities.
func NewContext(cfg *config.Config, prof profile.Profile, p prompt.Prompter) *Context {
	r := run.Exec{}
	return &Context{
		Config:        cfg,
		Profile:       prof,
		Runner:        r,
		Prompter:      p,
		Fetcher:       fetch.New(),
		Detector:      system.NewDetector(r),
		Backup:        backup.NewManager(),
		Home:          paths.Home(),
		ZshRC:         paths.ZshRCPath(),
		BashRC:        paths.BashRCPath(),
		NixUserConf:   paths.NixUserConfPath(),
		NixSystemConf: paths.NixSystemConfPath,
		EtcShells:     paths.EtcShellsPath,
		CurrentShell:  os.Getenv("SHELL"),
		ZshCandidates: []string{
			"/bin/zsh",
			"/usr/bin/zsh",
			"/usr/local/bin/zsh",
			"/opt/homebrew/bin/zsh",
		},
	}
}

// snapshot backs up path before its first modification in this run.
// Best-effort: a failed backup is logged, not fatal.
func (bc *Context) snapshot(ctx context.Context, path string) {
	if bc.Backup == nil {
		return
	}
	if _, err := bc.Backup.File(path); err != nil {
		logging.FromContext(ctx).Warn("could not back up file", "path", path, "error", err)
	}
}

// Pipeline drives the ordered ensure steps.
type Pipeline struct {
	steps []Step
}

// New creates the standard bootstrap pipeline.
func New() *Pipeline {
	return &Pipeline{steps: []Step{
		&PlatformStep{},
		&PrivilegeStep{},
		&PackageManagerStep{},
		&ZshStep{},
		&DefaultShellStep{},
		&NixStep{},
		&FlakesStep{},
		&DirenvStep{},
		&HooksStep{},
		&ProjectDirStep{},
		&FetchFlakeStep{},
		&EnvrcStep{},
		&ActivateStep{},
	}}
}

// NewWithSteps creates a pipeline with an explicit step list, for tests.
func NewWithSteps(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps in order. It returns the report of everything
// executed so far along with the first fatal error, if any.
func (p *Pipeline) Run(ctx context.Context, bc *Context) (*Report, error) {
	log := logging.FromContext(ctx)
	report := &Report{Timestamp: time.Now().UTC()}

	for _, step := range p.steps {
		res, err := step.Run(ctx, bc)
		if err != nil {
			report.Append(step.Name(), Failedf("%v", err))
			return report, errors.Wrapf(err, "step %s", step.Name())
		}

		report.Append(step.Name(), res)

		switch res.Status {
		case StatusFailed:
			log.Warn(res.Message, "step", step.Name())
		default:
			log.Debug(res.Message, "step", step.Name(), "status", res.Status.String())
		}
	}

	return report, nil
}
