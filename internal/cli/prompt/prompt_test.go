package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	nixuperrors "github.com/thoreinstein/nixup/internal/errors"
)

func newTest(input string) (*Terminal, *bytes.Buffer) {
	var out bytes.Buffer
	return NewWithIO(strings.NewReader(input), &out), &out
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{"yes", "y\n", false, true},
		{"yes word", "yes\n", false, true},
		{"uppercase", "Y\n", false, true},
		{"no", "n\n", true, false},
		{"empty takes default true", "\n", true, true},
		{"empty takes default false", "\n", false, false},
		{"garbage is no", "maybe\n", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTest(tt.input)
			got, err := p.Confirm("Change default shell to zsh?", tt.def)
			if err != nil {
				t.Fatalf("Confirm() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirm_EOF(t *testing.T) {
	p, _ := newTest("")
	_, err := p.Confirm("q", false)
	if !errors.Is(err, nixuperrors.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestConfirm_Hint(t *testing.T) {
	p, out := newTest("y\n")
	if _, err := p.Confirm("q", true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[Y/n]") {
		t.Errorf("default-yes hint missing: %q", out.String())
	}
}

func TestSelect(t *testing.T) {
	options := []string{"Home", "Documents", "Desktop", "Custom path"}

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"first", "1\n", 0},
		{"last", "4\n", 3},
		{"empty takes default", "\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newTest(tt.input)
			got, err := p.Select("Where should the project live?", options, 0)
			if err != nil {
				t.Fatalf("Select() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Select() = %d, want %d", got, tt.want)
			}
			if !strings.Contains(out.String(), "[4] Custom path") {
				t.Errorf("menu not rendered: %q", out.String())
			}
		})
	}
}

func TestSelect_Invalid(t *testing.T) {
	options := []string{"a", "b"}

	for _, input := range []string{"0\n", "3\n", "x\n"} {
		p, _ := newTest(input)
		_, err := p.Select("t", options, 0)
		if !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("input %q: expected ErrInvalidSelection, got %v", input, err)
		}
	}
}

func TestSelect_NoOptions(t *testing.T) {
	p, _ := newTest("1\n")
	if _, err := p.Select("t", nil, 0); err == nil {
		t.Error("expected error for empty options")
	}
}

func TestInput(t *testing.T) {
	p, _ := newTest("  ~/work  \n")
	got, err := p.Input("Path")
	if err != nil {
		t.Fatalf("Input() error: %v", err)
	}
	if got != "~/work" {
		t.Errorf("Input() = %q", got)
	}
}

func TestInput_LastLineWithoutNewline(t *testing.T) {
	p, _ := newTest("answer")
	got, err := p.Input("q")
	if err != nil {
		t.Fatalf("Input() error: %v", err)
	}
	if got != "answer" {
		t.Errorf("Input() = %q", got)
	}
}
