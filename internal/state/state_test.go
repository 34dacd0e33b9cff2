package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/nixup/internal/system"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nixup", FileName)

	in := &Report{
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Version:   "0.1.0",
		Facts: system.Facts{
			Platform:       system.PlatformLinux,
			PackageManager: system.PkgAptGet,
			Sudo:           true,
		},
		Steps: []StepRecord{
			{Name: "detect-platform", Status: "satisfied", Message: "linux"},
			{Name: "ensure-nix", Status: "changed", Message: "installed via official installer"},
		},
	}

	if err := Save(path, in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if out == nil {
		t.Fatal("Load() returned nil report")
	}
	if !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("Timestamp = %v", out.Timestamp)
	}
	if out.Facts.PackageManager != system.PkgAptGet {
		t.Errorf("Facts.PackageManager = %v", out.Facts.PackageManager)
	}
	if len(out.Steps) != 2 || out.Steps[1].Status != "changed" {
		t.Errorf("Steps = %+v", out.Steps)
	}
}

func TestSaveOverwritesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	first := &Report{
		Timestamp: time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC),
		Profile:   "default",
		TargetDir: "/home/u/devenv",
		Steps:     []StepRecord{{Name: "ensure-nix", Status: "changed"}},
	}
	require.NoError(t, Save(path, first))

	second := &Report{
		Timestamp: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		Profile:   "default",
		TargetDir: "/home/u/devenv",
		Steps:     []StepRecord{{Name: "ensure-nix", Status: "satisfied"}},
	}
	require.NoError(t, Save(path, second))

	out, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.True(t, out.Timestamp.Equal(second.Timestamp))
	require.Equal(t, "/home/u/devenv", out.TargetDir)
	require.Len(t, out.Steps, 1)
	require.Equal(t, "satisfied", out.Steps[0].Status)
}

func TestLoad_Missing(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing report should not error: %v", err)
	}
	if r != nil {
		t.Error("missing report should be nil")
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("\t:not yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
