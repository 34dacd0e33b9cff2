package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/nixup/internal/backup"
	"github.com/thoreinstein/nixup/internal/config"
	nixuperrors "github.com/thoreinstein/nixup/internal/errors"
	"github.com/thoreinstein/nixup/internal/fetch"
	"github.com/thoreinstein/nixup/internal/profile"
	"github.com/thoreinstein/nixup/internal/run"
	"github.com/thoreinstein/nixup/internal/system"
	"github.com/thoreinstein/nixup/pkg/fileutil"
)

// fakePrompter returns scripted answers in order.
type fakePrompter struct {
	confirms []bool
	selects  []int
	inputs   []string
}

func (p *fakePrompter) Confirm(string, bool) (bool, error) {
	if len(p.confirms) == 0 {
		return false, errors.New("unexpected Confirm")
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

func (p *fakePrompter) Select(string, []string, int) (int, error) {
	if len(p.selects) == 0 {
		return 0, errors.New("unexpected Select")
	}
	v := p.selects[0]
	p.selects = p.selects[1:]
	return v, nil
}

func (p *fakePrompter) Input(string) (string, error) {
	if len(p.inputs) == 0 {
		return "", errors.New("unexpected Input")
	}
	v := p.inputs[0]
	p.inputs = p.inputs[1:]
	return v, nil
}

// newTestContext builds a Context rooted in a temp directory with a fake
// runner. Callers adjust facts, files, and prompts per test.
func newTestContext(t *testing.T, runner *run.Fake) *Context {
	t.Helper()
	home := t.TempDir()

	return &Context{
		Facts: system.Facts{
			Platform:       system.PlatformLinux,
			PackageManager: system.PkgAptGet,
			Sudo:           true,
		},
		Config:        &config.Config{ProjectName: "devenv", InstallerURL: config.DefaultInstallerURL},
		Profile:       profile.Profile{Name: "default", FlakeURL: "http://unused.invalid/flake.nix"},
		Runner:        runner,
		Prompter:      &fakePrompter{},
		Fetcher:       fetch.New(),
		Home:          home,
		ZshRC:         filepath.Join(home, ".zshrc"),
		BashRC:        filepath.Join(home, ".bashrc"),
		NixUserConf:   filepath.Join(home, ".config", "nix", "nix.conf"),
		NixSystemConf: filepath.Join(home, "etc-nix.conf"),
		EtcShells:     filepath.Join(home, "etc-shells"),
		CurrentShell:  "/bin/bash",
		ZshCandidates: []string{filepath.Join(home, "no-zsh-here")},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type stubStep struct {
	name string
	res  *Result
	err  error
	runs int
}

func (s *stubStep) Name() string { return s.name }

func (s *stubStep) Run(context.Context, *Context) (*Result, error) {
	s.runs++
	return s.res, s.err
}

func TestPipelineStopsOnFatalError(t *testing.T) {
	boom := errors.New("boom")
	first := &stubStep{name: "first", res: Satisfied("ok")}
	second := &stubStep{name: "second", err: boom}
	third := &stubStep{name: "third", res: Satisfied("ok")}

	bc := newTestContext(t, run.NewFake())
	report, err := NewWithSteps(first, second, third).Run(context.Background(), bc)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if third.runs != 0 {
		t.Error("third step ran after fatal error")
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	if report.Results[1].Status != StatusFailed {
		t.Errorf("fatal step recorded as %s, want failed", report.Results[1].Status)
	}
}

func TestPipelineContinuesPastFailedStatus(t *testing.T) {
	first := &stubStep{name: "first", res: Failedf("degraded")}
	second := &stubStep{name: "second", res: Satisfied("ok")}

	bc := newTestContext(t, run.NewFake())
	report, err := NewWithSteps(first, second).Run(context.Background(), bc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.runs != 1 {
		t.Error("second step did not run after non-fatal failure")
	}
	if !report.HasFailures() {
		t.Error("report should record the failure")
	}
	if report.Summary.Satisfied != 1 || report.Summary.Failed != 1 {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
}

func TestDetectionStepsFillFacts(t *testing.T) {
	runner := run.NewFake("sudo", "dnf")
	bc := newTestContext(t, runner)
	bc.Facts = system.Facts{}
	bc.Detector = system.NewDetectorForTest("linux", filepath.Join(t.TempDir(), "nope"), runner)

	ctx := context.Background()
	for _, step := range []Step{&PlatformStep{}, &PrivilegeStep{}, &PackageManagerStep{}} {
		res, err := step.Run(ctx, bc)
		if err != nil {
			t.Fatalf("%s: %v", step.Name(), err)
		}
		if res.Status != StatusSatisfied {
			t.Errorf("%s: status %s, want satisfied", step.Name(), res.Status)
		}
	}

	want := system.Facts{Platform: system.PlatformLinux, PackageManager: system.PkgDNF, Sudo: true}
	if bc.Facts != want {
		t.Errorf("facts = %+v, want %+v", bc.Facts, want)
	}
}

func TestPrivilegeStepWithoutSudo(t *testing.T) {
	runner := run.NewFake() // no sudo on PATH
	bc := newTestContext(t, runner)
	bc.Detector = system.NewDetectorForTest("linux", "", runner)

	res, err := (&PrivilegeStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusFailed {
		t.Errorf("status = %s, want failed", res.Status)
	}
	if bc.Facts.Sudo {
		t.Error("sudo fact should be false")
	}
}

func TestZshStepInstallsViaPackageManager(t *testing.T) {
	runner := run.NewFake()
	bc := newTestContext(t, runner)

	res, err := (&ZshStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed", res.Status)
	}
	if !runner.Ran("sudo -n apt-get install -y zsh") {
		t.Errorf("install command not run, got %v", runner.Commands)
	}
}

func TestZshStepAlreadyPresent(t *testing.T) {
	runner := run.NewFake()
	bc := newTestContext(t, runner)
	zsh := filepath.Join(bc.Home, "zsh")
	writeFile(t, zsh, "#!/bin/sh\n")
	bc.ZshCandidates = []string{zsh}

	res, err := (&ZshStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSatisfied {
		t.Errorf("status = %s, want satisfied", res.Status)
	}
	if len(runner.Commands) != 0 {
		t.Errorf("no commands expected, got %v", runner.Commands)
	}
}

func TestZshStepNeedsSudo(t *testing.T) {
	runner := run.NewFake()
	bc := newTestContext(t, runner)
	bc.Facts.Sudo = false

	res, err := (&ZshStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusFailed {
		t.Errorf("status = %s, want failed", res.Status)
	}
	if len(runner.Commands) != 0 {
		t.Errorf("no commands expected, got %v", runner.Commands)
	}
}

func TestDefaultShellStepDeclined(t *testing.T) {
	runner := run.NewFake()
	bc := newTestContext(t, runner)
	zsh := filepath.Join(bc.Home, "zsh")
	writeFile(t, zsh, "#!/bin/sh\n")
	bc.ZshCandidates = []string{zsh}
	bc.Prompter = &fakePrompter{confirms: []bool{false}}

	res, err := (&DefaultShellStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSkipped {
		t.Errorf("status = %s, want skipped", res.Status)
	}
	if runner.Ran("chsh") {
		t.Error("chsh ran after the user declined")
	}
}

func TestDefaultShellStepChangesShell(t *testing.T) {
	runner := run.NewFake()
	bc := newTestContext(t, runner)
	zsh := filepath.Join(bc.Home, "zsh")
	writeFile(t, zsh, "#!/bin/sh\n")
	writeFile(t, bc.EtcShells, "/bin/sh\n/bin/bash\n")
	bc.ZshCandidates = []string{zsh}
	bc.Prompter = &fakePrompter{confirms: []bool{true}}

	res, err := (&DefaultShellStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed: %s", res.Status, res.Message)
	}
	if !runner.Ran("sudo -n sh -c") {
		t.Errorf("zsh was not registered in %s, got %v", bc.EtcShells, runner.Commands)
	}
	if !runner.Ran("chsh -s " + zsh) {
		t.Errorf("chsh not run, got %v", runner.Commands)
	}
}

func TestDefaultShellStepAlreadyZsh(t *testing.T) {
	runner := run.NewFake()
	bc := newTestContext(t, runner)
	zsh := filepath.Join(bc.Home, "zsh")
	writeFile(t, zsh, "#!/bin/sh\n")
	bc.ZshCandidates = []string{zsh}
	bc.CurrentShell = "/usr/bin/zsh"

	res, err := (&DefaultShellStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSatisfied {
		t.Errorf("status = %s, want satisfied", res.Status)
	}
}

func TestNixStepAlreadyInstalled(t *testing.T) {
	runner := run.NewFake("nix")
	bc := newTestContext(t, runner)

	res, err := (&NixStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSatisfied {
		t.Errorf("status = %s, want satisfied", res.Status)
	}
}

func TestNixStepInstalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("#!/bin/sh\necho install\n"))
	}))
	defer srv.Close()

	runner := run.NewFake("curl", "xz")
	bc := newTestContext(t, runner)
	bc.Config.InstallerURL = srv.URL

	res, err := (&NixStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed: %s", res.Status, res.Message)
	}
	// Sudo available, so the daemon install is chosen.
	last := runner.Commands[len(runner.Commands)-1]
	if !strings.HasPrefix(last, "sh ") || !strings.HasSuffix(last, "--daemon") {
		t.Errorf("expected sh <installer> --daemon, got %q", last)
	}
}

func TestNixStepMissingPrereqs(t *testing.T) {
	runner := run.NewFake() // no curl, no xz
	bc := newTestContext(t, runner)
	bc.Facts.PackageManager = system.PkgUnknown

	_, err := (&NixStep{}).Run(context.Background(), bc)
	if !errors.Is(err, nixuperrors.ErrPrerequisites) {
		t.Fatalf("expected ErrPrerequisites, got %v", err)
	}
}

func TestEnsurePrereqsUsesPackageName(t *testing.T) {
	runner := run.NewFake("curl")
	bc := newTestContext(t, runner)

	// xz stays missing after the install, so the re-check reports it.
	err := ensurePrereqs(context.Background(), bc, "curl", "xz")
	if !errors.Is(err, nixuperrors.ErrPrerequisites) {
		t.Fatalf("expected ErrPrerequisites, got %v", err)
	}
	if !runner.Ran("sudo -n apt-get install -y xz-utils") {
		t.Errorf("apt-get package name not mapped, got %v", runner.Commands)
	}
}

func TestFlakesStepSystemConfOnlyMessage(t *testing.T) {
	runner := run.NewFake()
	bc := newTestContext(t, runner)
	writeFile(t, bc.NixUserConf, FlakesLine+"\n")

	res, err := (&FlakesStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed", res.Status)
	}
	// Only the system conf changed; the message must name it, not the
	// untouched user conf.
	if !strings.Contains(res.Message, bc.NixSystemConf) {
		t.Errorf("message %q does not name %s", res.Message, bc.NixSystemConf)
	}
	if strings.Contains(res.Message, bc.NixUserConf) {
		t.Errorf("message %q names the unchanged %s", res.Message, bc.NixUserConf)
	}
}

func TestFlakesStepWritesBothConfs(t *testing.T) {
	runner := run.NewFake()
	bc := newTestContext(t, runner)

	res, err := (&FlakesStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed", res.Status)
	}

	data, err := os.ReadFile(bc.NixUserConf)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != FlakesLine+"\n" {
		t.Errorf("nix.conf = %q", data)
	}
	// Privileged run also appends to the system conf through sudo.
	if !runner.Ran("sudo -n sh -c") {
		t.Errorf("system conf not written, got %v", runner.Commands)
	}

	// Second run finds both lines and changes nothing.
	writeFile(t, bc.NixSystemConf, FlakesLine+"\n")
	res, err = (&FlakesStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSatisfied {
		t.Errorf("rerun status = %s, want satisfied", res.Status)
	}
}

func TestFlakesStepUserOnlyWithoutSudo(t *testing.T) {
	runner := run.NewFake()
	bc := newTestContext(t, runner)
	bc.Facts.Sudo = false

	res, err := (&FlakesStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed", res.Status)
	}
	if len(runner.Commands) != 0 {
		t.Errorf("no commands expected without sudo, got %v", runner.Commands)
	}

	res, err = (&FlakesStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSatisfied {
		t.Errorf("rerun status = %s, want satisfied", res.Status)
	}
}

func TestDirenvStepFallsBackToNix(t *testing.T) {
	runner := run.NewFake("nix")
	runner.Fail["sudo -n apt-get"] = run.ErrScripted
	bc := newTestContext(t, runner)

	res, err := (&DirenvStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed: %s", res.Status, res.Message)
	}
	if !runner.Ran("nix profile install nixpkgs#direnv") {
		t.Errorf("nix fallback not used, got %v", runner.Commands)
	}
}

func TestHooksStepAddsLineOnce(t *testing.T) {
	bc := newTestContext(t, run.NewFake())
	writeFile(t, bc.BashRC, "# existing bashrc\n")

	res, err := (&HooksStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed", res.Status)
	}

	// Re-run: both files already hooked.
	res, err = (&HooksStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSatisfied {
		t.Errorf("rerun status = %s, want satisfied", res.Status)
	}

	for path, line := range map[string]string{bc.ZshRC: ZshHookLine, bc.BashRC: BashHookLine} {
		n, err := fileutil.CountLine(path, line)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("%s contains hook line %d times, want 1", path, n)
		}
	}
}

func TestHooksStepBacksUpExistingRC(t *testing.T) {
	bc := newTestContext(t, run.NewFake())
	writeFile(t, bc.ZshRC, "# my customizations\n")
	backups := filepath.Join(bc.Home, "backups")
	bc.Backup = backup.NewManager(backup.WithDir(backups))

	if _, err := (&HooksStep{}).Run(context.Background(), bc); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(backups)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(backups, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# my customizations\n" {
		t.Errorf("backup content = %q", data)
	}
}

func TestHooksStepCreatesMissingRCFiles(t *testing.T) {
	bc := newTestContext(t, run.NewFake())

	res, err := (&HooksStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed", res.Status)
	}

	// Neither rc file existed; both get created with their hook line.
	for path, line := range map[string]string{bc.ZshRC: ZshHookLine, bc.BashRC: BashHookLine} {
		n, err := fileutil.CountLine(path, line)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if n != 1 {
			t.Errorf("%s contains hook line %d times, want 1", path, n)
		}
	}
}

func TestProjectDirStepMenu(t *testing.T) {
	bc := newTestContext(t, run.NewFake())
	bc.Prompter = &fakePrompter{selects: []int{1}} // Documents

	res, err := (&ProjectDirStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed", res.Status)
	}

	want := filepath.Join(bc.Home, "Documents", "devenv")
	if bc.TargetDir != want {
		t.Errorf("TargetDir = %s, want %s", bc.TargetDir, want)
	}
	if info, err := os.Stat(bc.TargetDir); err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}

func TestProjectDirStepCustomPath(t *testing.T) {
	bc := newTestContext(t, run.NewFake())
	base := t.TempDir()
	bc.Prompter = &fakePrompter{selects: []int{3}, inputs: []string{base}}

	if _, err := (&ProjectDirStep{}).Run(context.Background(), bc); err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(base, "devenv"); bc.TargetDir != want {
		t.Errorf("TargetDir = %s, want %s", bc.TargetDir, want)
	}
}

func TestProjectDirStepDeclinedReuse(t *testing.T) {
	bc := newTestContext(t, run.NewFake())
	bc.TargetDir = filepath.Join(bc.Home, "existing")
	if err := os.MkdirAll(bc.TargetDir, 0o755); err != nil {
		t.Fatal(err)
	}
	bc.Prompter = &fakePrompter{confirms: []bool{false}}

	_, err := (&ProjectDirStep{}).Run(context.Background(), bc)
	if !errors.Is(err, nixuperrors.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
}

func TestFetchFlakeStepWritesFile(t *testing.T) {
	const flake = "{ description = \"dev env\"; }\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(flake))
	}))
	defer srv.Close()

	bc := newTestContext(t, run.NewFake())
	bc.TargetDir = t.TempDir()
	bc.Profile.FlakeURL = srv.URL

	res, err := (&FetchFlakeStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed: %s", res.Status, res.Message)
	}

	data, err := os.ReadFile(filepath.Join(bc.TargetDir, "flake.nix"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != flake {
		t.Errorf("flake.nix = %q, want %q", data, flake)
	}
}

func TestFetchFlakeStepDeclinedOverwrite(t *testing.T) {
	bc := newTestContext(t, run.NewFake())
	bc.TargetDir = t.TempDir()
	existing := filepath.Join(bc.TargetDir, "flake.nix")
	writeFile(t, existing, "my precious customizations\n")
	bc.Prompter = &fakePrompter{confirms: []bool{false}}

	res, err := (&FetchFlakeStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSatisfied {
		t.Fatalf("status = %s, want satisfied", res.Status)
	}

	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "my precious customizations\n" {
		t.Errorf("existing flake.nix was modified: %q", data)
	}
}

func TestFetchFlakeStepConfigOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("override\n"))
	}))
	defer srv.Close()

	bc := newTestContext(t, run.NewFake())
	bc.TargetDir = t.TempDir()
	bc.Config.FlakeURL = srv.URL
	bc.Profile.FlakeURL = "http://unreachable.invalid/flake.nix"

	if _, err := (&FetchFlakeStep{}).Run(context.Background(), bc); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(bc.TargetDir, "flake.nix"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "override\n" {
		t.Errorf("config override not used: %q", data)
	}
}

func TestEnvrcStep(t *testing.T) {
	bc := newTestContext(t, run.NewFake())
	bc.TargetDir = t.TempDir()

	res, err := (&EnvrcStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusChanged {
		t.Fatalf("status = %s, want changed", res.Status)
	}

	data, err := os.ReadFile(filepath.Join(bc.TargetDir, ".envrc"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != EnvrcLine+"\n" {
		t.Errorf(".envrc = %q", data)
	}

	res, err = (&EnvrcStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSatisfied {
		t.Errorf("rerun status = %s, want satisfied", res.Status)
	}
}

func TestActivateStep(t *testing.T) {
	runner := run.NewFake("direnv", "nix")
	bc := newTestContext(t, runner)
	bc.TargetDir = "/tmp/devenv"

	res, err := (&ActivateStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSatisfied {
		t.Fatalf("status = %s, want satisfied: %s", res.Status, res.Message)
	}
	if !runner.Ran("direnv allow /tmp/devenv") {
		t.Errorf("direnv allow not run: %v", runner.Commands)
	}
	if !runner.Ran("nix develop /tmp/devenv --command true") {
		t.Errorf("smoke test not run: %v", runner.Commands)
	}
}

func TestActivateStepSmokeTestFails(t *testing.T) {
	runner := run.NewFake("direnv", "nix")
	runner.Fail["nix develop"] = run.ErrScripted
	bc := newTestContext(t, runner)
	bc.TargetDir = "/tmp/devenv"

	res, err := (&ActivateStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusFailed {
		t.Errorf("status = %s, want failed", res.Status)
	}
}

func TestActivateStepToolsMissing(t *testing.T) {
	bc := newTestContext(t, run.NewFake("direnv")) // nix absent

	res, err := (&ActivateStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSkipped {
		t.Errorf("status = %s, want skipped", res.Status)
	}
}

func TestProjectDirStepTildeBase(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	bc := newTestContext(t, run.NewFake())
	bc.DryRun = true // resolve the path without creating it
	bc.Prompter = &fakePrompter{selects: []int{3}, inputs: []string{"~/work"}}

	res, err := (&ProjectDirStep{}).Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSkipped {
		t.Fatalf("status = %s, want skipped", res.Status)
	}
	if want := filepath.Join(home, "work", "devenv"); bc.TargetDir != want {
		t.Errorf("TargetDir = %s, want %s", bc.TargetDir, want)
	}
}

func TestRerunOnBootstrappedHostAllSatisfied(t *testing.T) {
	runner := run.NewFake("sudo", "apt-get", "nix", "direnv")
	bc := newTestContext(t, runner)
	bc.Detector = system.NewDetectorForTest("linux", "", runner)

	// Everything the pipeline ensures is already in place.
	zsh := filepath.Join(bc.Home, "zsh")
	writeFile(t, zsh, "#!/bin/sh\n")
	bc.ZshCandidates = []string{zsh}
	bc.CurrentShell = "/usr/bin/zsh"
	writeFile(t, bc.NixUserConf, FlakesLine+"\n")
	writeFile(t, bc.NixSystemConf, FlakesLine+"\n")
	writeFile(t, bc.ZshRC, ZshHookLine+"\n")
	writeFile(t, bc.BashRC, BashHookLine+"\n")
	bc.TargetDir = filepath.Join(bc.Home, "devenv")
	writeFile(t, filepath.Join(bc.TargetDir, "flake.nix"), "{ }\n")
	writeFile(t, filepath.Join(bc.TargetDir, ".envrc"), EnvrcLine+"\n")

	// Reuse the directory, keep the existing flake.nix.
	bc.Prompter = &fakePrompter{confirms: []bool{true, false}}

	report, err := New().Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}
	if !report.AllSatisfied() {
		for _, res := range report.Results {
			t.Logf("%s: %s %s", res.Name, res.Status, res.Message)
		}
		t.Error("re-run on a bootstrapped host should be all satisfied")
	}
}

func TestDryRunMutatesNothing(t *testing.T) {
	runner := run.NewFake("sudo")
	bc := newTestContext(t, runner)
	bc.Detector = system.NewDetectorForTest("linux", "", runner)
	bc.DryRun = true
	bc.TargetDir = filepath.Join(bc.Home, "devenv")

	report, err := New().Run(context.Background(), bc)
	if err != nil {
		t.Fatal(err)
	}

	for _, cmd := range runner.Commands {
		if cmd != "sudo -n true" {
			t.Errorf("dry run executed %q", cmd)
		}
	}
	for _, path := range []string{bc.TargetDir, bc.ZshRC, bc.NixUserConf} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("dry run created %s", path)
		}
	}
	if report.Summary.Changed != 0 {
		t.Errorf("dry run reported changes: %+v", report.Summary)
	}
}
