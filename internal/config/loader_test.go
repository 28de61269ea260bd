package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "junction.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
version: "1"
simulation:
  cars: 40
  breakdown_probability: 0
  rotation:
    timeout: 500ms
modules:
  report.csv:
    path: ./out.csv
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default().Simulation
	want.Cars = 40
	want.BreakdownProbability = 0
	want.Rotation.Timeout = 500 * time.Millisecond

	if diff := cmp.Diff(want, cfg.Simulation); diff != "" {
		t.Errorf("simulation mismatch (-want +got):\n%s", diff)
	}
	if _, ok := cfg.Modules["report.csv"]; !ok {
		t.Error("expected report.csv module entry")
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("JUNCTION_TEST_CARS", "7")
	path := writeConfig(t, `
version: "1"
simulation:
  cars: ${JUNCTION_TEST_CARS}
  seed: ${JUNCTION_TEST_SEED:-42}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Cars != 7 {
		t.Errorf("Cars = %d, want 7", cfg.Simulation.Cars)
	}
	if cfg.Simulation.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Simulation.Seed)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  gateway.http:
    auth:
      bearer_token: ${JUNCTION_TEST_SURELY_UNSET}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unresolved variable")
	}
	if !strings.Contains(err.Error(), "JUNCTION_TEST_SURELY_UNSET") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "version: [unterminated")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	cfg, err = LoadOrDefault("")
	if err != nil || cfg.Simulation.Cars != 12 {
		t.Errorf("empty path: cfg=%+v err=%v", cfg, err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
