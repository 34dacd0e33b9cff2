// Package state persists a summary of the last bootstrap run to the XDG
// state directory. Persistence is best-effort; the bootstrap never fails
// because its record could not be written.
package state

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/nixup/internal/paths"
	"github.com/thoreinstein/nixup/internal/system"
	"github.com/thoreinstein/nixup/pkg/fileutil"
)

// FileName is the report file name inside the nixup state directory.
const FileName = "last-run.yaml"

// StepRecord is the persisted outcome of one pipeline step.
type StepRecord struct {
	Name    string `yaml:"name"`
	Status  string `yaml:"status"`
	Message string `yaml:"message,omitempty"`
}

// Report is the persisted summary of a bootstrap run.
type Report struct {
	Timestamp time.Time    `yaml:"timestamp"`
	Version   string       `yaml:"version"`
	Facts     system.Facts `yaml:"facts"`
	DryRun    bool         `yaml:"dry_run,omitempty"`
	Profile   string       `yaml:"profile,omitempty"`
	TargetDir string       `yaml:"target_dir,omitempty"`
	Steps     []StepRecord `yaml:"steps"`
}

// DefaultPath returns the standard report location.
func DefaultPath() string {
	return filepath.Join(paths.NixupStateDir(), FileName)
}

// Save writes the report to path atomically, creating parent directories
// as needed.
func Save(path string, r *Report) error {
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating state directory")
	}
	return fileutil.AtomicWriteYAML(path, r)
}

// Load reads a previously saved report. Returns nil with no error when no
// report exists yet.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading state file")
	}

	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "parsing state file")
	}
	return &r, nil
}
