// Package backup keeps timestamped copies of the configuration files the
// bootstrap modifies, so a bad edit to a shell rc file or nix.conf is
// always recoverable by hand.
package backup

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/nixup/internal/paths"
)

// DefaultRetentionCount is how many backups are kept per file.
const DefaultRetentionCount = 5

// timestampFormat names backup copies sortably by creation time.
const timestampFormat = "20060102T150405"

// Manager creates and prunes file backups.
type Manager struct {
	rootDir        string
	retentionCount int
}

// Option configures a Manager.
type Option func(*Manager)

// WithDir sets the root backup directory.
func WithDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets the number of backups to retain per file.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// NewManager creates a backup Manager. By default backups live under the
// nixup state directory.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        filepath.Join(paths.NixupStateDir(), "backups"),
		retentionCount: DefaultRetentionCount,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// File copies path into the backup directory as <base>.<timestamp> with
// permissions preserved, then prunes old copies beyond the retention
// count. A missing source is not an error; there is nothing to protect.
// Returns the backup path, or "" when no backup was made.
func (m *Manager) File(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		return "", errors.Newf("%s is a directory", path)
	}

	if err := os.MkdirAll(m.rootDir, 0o700); err != nil {
		return "", errors.Wrap(err, "creating backup directory")
	}

	base := filepath.Base(path)
	dest := filepath.Join(m.rootDir, base+"."+time.Now().Format(timestampFormat))

	if err := copyFile(path, dest, info.Mode().Perm()); err != nil {
		return "", err
	}

	if err := m.prune(base); err != nil {
		return "", err
	}
	return dest, nil
}

// prune removes the oldest backups of base beyond the retention count.
// The timestamp suffix sorts lexically, so name order is age order.
func (m *Manager) prune(base string) error {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		return errors.Wrap(err, "reading backup directory")
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), base+".") {
			names = append(names, e.Name())
		}
	}
	if len(names) <= m.retentionCount {
		return nil
	}

	slices.Sort(names)
	for _, name := range names[:len(names)-m.retentionCount] {
		if err := os.Remove(filepath.Join(m.rootDir, name)); err != nil {
			return errors.Wrapf(err, "pruning %s", name)
		}
	}
	return nil
}

func copyFile(src, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrapf(err, "creating %s", dest)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "copying to %s", dest)
	}
	return out.Close()
}
