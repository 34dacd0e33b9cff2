package fileutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// HasLine reports whether the file at path contains line as an exact,
// whitespace-trimmed line. A missing file contains no lines.
func HasLine(path, line string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "reading file")
	}

	want := strings.TrimSpace(line)
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) == want {
			return true, nil
		}
	}
	return false, nil
}

// EnsureLine appends line to the file at path unless an identical
// (whitespace-trimmed) line is already present. The file and its parent
// directory are created if missing. The write goes through the atomic
// writer so a crash cannot truncate an existing file.
//
// Returns true if the file was modified.
func EnsureLine(path, line string, perm os.FileMode) (bool, error) {
	found, err := HasLine(path, line)
	if err != nil {
		return false, err
	}
	if found {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.Wrap(err, "creating parent directory")
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, errors.Wrap(err, "reading file")
	}

	// Preserve existing permissions when the file already exists.
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	data = append(data, []byte(line)...)
	data = append(data, '\n')

	if err := AtomicWriteFile(path, data, perm); err != nil {
		return false, err
	}
	return true, nil
}

// CountLine returns the number of lines in the file at path that equal line
// after whitespace trimming. A missing file has zero matching lines.
func CountLine(path, line string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "reading file")
	}

	want := strings.TrimSpace(line)
	n := 0
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) == want {
			n++
		}
	}
	return n, nil
}
