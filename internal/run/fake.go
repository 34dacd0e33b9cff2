package run

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Fake is an in-memory Runner for tests. Commands succeed by default;
// failures and canned output are configured per command prefix.
type Fake struct {
	mu sync.Mutex

	// Commands holds each executed argv joined with spaces, in order.
	Commands []string

	// Fail maps a command prefix to the error returned for matching argv.
	Fail map[string]error

	// Outputs maps a command prefix to the stdout returned by Output.
	Outputs map[string]string

	// Available is the set of binaries LookPath reports as present.
	Available map[string]bool
}

var _ Runner = (*Fake)(nil)

// NewFake returns a Fake with the given binaries available on PATH.
func NewFake(available ...string) *Fake {
	avail := make(map[string]bool, len(available))
	for _, a := range available {
		avail[a] = true
	}
	return &Fake{
		Fail:      map[string]error{},
		Outputs:   map[string]string{},
		Available: avail,
	}
}

func (f *Fake) record(name string, args []string) string {
	argv := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	f.Commands = append(f.Commands, argv)
	f.mu.Unlock()
	return argv
}

func (f *Fake) match(argv string) error {
	for prefix, err := range f.Fail {
		if strings.HasPrefix(argv, prefix) {
			return err
		}
	}
	return nil
}

// Run records the command and returns the configured error, if any.
func (f *Fake) Run(_ context.Context, name string, args ...string) error {
	return f.match(f.record(name, args))
}

// Output records the command and returns canned stdout for the longest
// matching prefix.
func (f *Fake) Output(_ context.Context, name string, args ...string) (string, error) {
	argv := f.record(name, args)
	if err := f.match(argv); err != nil {
		return "", err
	}
	best := ""
	for prefix := range f.Outputs {
		if strings.HasPrefix(argv, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return "", nil
	}
	return f.Outputs[best], nil
}

// LookPath consults the Available set.
func (f *Fake) LookPath(name string) bool {
	return f.Available[name]
}

// Ran reports whether any recorded command starts with prefix.
func (f *Fake) Ran(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Commands {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// ErrScripted is a convenience error for configuring failures.
var ErrScripted = errors.New("scripted failure")
