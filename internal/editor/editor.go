// Package editor launches the user's preferred text editor on a file.
package editor

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/cockroachdb/errors"
)

// Open launches the preferred editor on path and waits for it to exit.
// The selection order is $EDITOR, $VISUAL, nano, vi.
func Open(path string) error {
	name := detectEditor()

	fmt.Printf("Editing: %s\n", path)

	cmd := exec.Command(name, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running %s", name)
	}
	return nil
}

// detectEditor returns the editor command to use. Empty environment
// variables count as unset. nano beats vi as the fallback because it is
// friendlier to the first-time users this tool targets.
func detectEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
