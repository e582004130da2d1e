package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "governor.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultProfileValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default profile invalid: %v", err)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOverridesOnlyWhatFileSets(t *testing.T) {
	path := writeConfig(t, `
profile: strict
profiles:
  strict:
    thresholds:
      proceed_min: 0.2
    adaptive:
      retune_every: 3
    dt: 0.05
`)
	p, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if p.Thresholds.ProceedMin != 0.2 {
		t.Fatalf("ProceedMin = %v, want 0.2", p.Thresholds.ProceedMin)
	}
	if p.Adaptive.RetuneEvery != 3 {
		t.Fatalf("RetuneEvery = %d, want 3", p.Adaptive.RetuneEvery)
	}
	if p.DT != 0.05 {
		t.Fatalf("DT = %v, want 0.05", p.DT)
	}

	// Untouched keys keep their shipped values.
	def := Default()
	if p.Thresholds.ContinueMin != def.Thresholds.ContinueMin {
		t.Fatalf("ContinueMin drifted to %v", p.Thresholds.ContinueMin)
	}
	if p.Params != def.Params {
		t.Fatalf("dynamics params drifted: %+v", p.Params)
	}
}

func TestLoadExplicitNameBeatsFileSelector(t *testing.T) {
	path := writeConfig(t, `
profile: strict
profiles:
  strict:
    dt: 0.05
  relaxed:
    dt: 0.2
`)
	p, err := Load(path, "relaxed")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.DT != 0.2 {
		t.Fatalf("DT = %v, want 0.2 from relaxed profile", p.DT)
	}
}

func TestLoadUnknownProfileFails(t *testing.T) {
	path := writeConfig(t, "profiles:\n  strict:\n    dt: 0.05\n")
	_, err := Load(path, "missing")
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected unknown-profile error, got %v", err)
	}
}

func TestLoadRejectsUnorderedThresholds(t *testing.T) {
	path := writeConfig(t, `
profiles:
  broken:
    thresholds:
      proceed_min: -0.5
      continue_min: 0.1
`)
	if _, err := Load(path, "broken"); err == nil {
		t.Fatal("expected validation error for unordered thresholds")
	}
}
