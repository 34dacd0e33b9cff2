// Package prompt provides interactive CLI prompts for user input.
//
// The production prompter reads from the controlling terminal (/dev/tty)
// when stdin is not a TTY, so prompts still work when nixup itself is
// invoked through a pipe. Tests inject reader and writer.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"

	nixuperrors "github.com/thoreinstein/nixup/internal/errors"
)

// ErrInvalidSelection indicates a menu selection outside the valid range.
var ErrInvalidSelection = errors.New("invalid selection")

// Prompter asks the user questions. Implementations must be safe for
// sequential use from a single goroutine.
type Prompter interface {
	// Confirm asks a yes/no question. Empty input selects def; any
	// answer other than y/yes is treated as no.
	Confirm(question string, def bool) (bool, error)

	// Select presents a numbered menu and returns the chosen 0-based
	// index. Empty input selects def.
	Select(title string, options []string, def int) (int, error)

	// Input asks a free-text question and returns the trimmed answer.
	Input(question string) (string, error)
}

// Terminal is the production Prompter.
type Terminal struct {
	in     *bufio.Reader
	out    io.Writer
	closer io.Closer
}

var _ Prompter = (*Terminal)(nil)

// NewTerminal creates a Terminal prompter. When stdin is not a TTY (for
// example when the binary runs at the end of a pipe), it opens /dev/tty
// so prompts still reach the user. Returns ErrNoTerminal when no
// controlling terminal can be found.
func NewTerminal() (*Terminal, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return &Terminal{in: bufio.NewReader(os.Stdin), out: os.Stderr}, nil
	}

	tty, err := os.Open("/dev/tty")
	if err != nil {
		return nil, errors.Wrap(nixuperrors.ErrNoTerminal, err.Error())
	}
	return &Terminal{in: bufio.NewReader(tty), out: os.Stderr, closer: tty}, nil
}

// NewWithIO creates a Terminal with custom reader and writer for testing.
func NewWithIO(r io.Reader, w io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(r), out: w}
}

// Close releases the /dev/tty handle if one was opened.
func (t *Terminal) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// readLine reads one line, mapping EOF to ErrCancelled.
func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return "", nixuperrors.ErrCancelled
		}
		if !errors.Is(err, io.EOF) {
			return "", errors.Wrap(err, "reading input")
		}
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question.
func (t *Terminal) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(t.out, "%s [%s]: ", question, hint)

	answer, err := t.readLine()
	if err != nil {
		return false, err
	}
	if answer == "" {
		return def, nil
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Select presents a numbered menu and returns the chosen 0-based index.
func (t *Terminal) Select(title string, options []string, def int) (int, error) {
	if len(options) == 0 {
		return 0, errors.Wrap(ErrInvalidSelection, "no options")
	}
	if def < 0 || def >= len(options) {
		def = 0
	}

	fmt.Fprintf(t.out, "%s\n", title)
	for i, opt := range options {
		fmt.Fprintf(t.out, "  [%d] %s\n", i+1, opt)
	}
	fmt.Fprintf(t.out, "Select [%d]: ", def+1)

	answer, err := t.readLine()
	if err != nil {
		return 0, err
	}
	if answer == "" {
		return def, nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSelection, "%q is not a number", answer)
	}
	if n < 1 || n > len(options) {
		return 0, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", n, len(options))
	}
	return n - 1, nil
}

// Input asks a free-text question and returns the trimmed answer.
func (t *Terminal) Input(question string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", question)
	return t.readLine()
}

// NonInteractive is a Prompter for runs without a controlling terminal.
// Every prompt fails with ErrNoTerminal, so a run only aborts when a
// question genuinely needs answering.
type NonInteractive struct{}

var _ Prompter = NonInteractive{}

// Confirm fails with ErrNoTerminal.
func (NonInteractive) Confirm(question string, _ bool) (bool, error) {
	return false, errors.Wrapf(nixuperrors.ErrNoTerminal, "cannot ask %q", question)
}

// Select fails with ErrNoTerminal.
func (NonInteractive) Select(title string, _ []string, _ int) (int, error) {
	return 0, errors.Wrapf(nixuperrors.ErrNoTerminal, "cannot ask %q", title)
}

// Input fails with ErrNoTerminal.
func (NonInteractive) Input(question string) (string, error) {
	return "", errors.Wrapf(nixuperrors.ErrNoTerminal, "cannot ask %q", question)
}
