package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flemzord/junction/internal/config"
	"github.com/flemzord/junction/internal/telemetry"
)

const fastConfig = `version: "1"
simulation:
  cars: 6
  seed: 7
  breakdown_probability: 0.5
  travel_time: {min: 0s, max: 5ms, step: 1ms}
  rotation: {threshold: 3, timeout: 20ms, pacing: 0s}
  breakdown: {penalty: 0s, hold_lock: true}
modules:
  report.csv: {}
  report.sqlite: {}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "junction.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveConfigPath_XDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "junction")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	cfgPath := filepath.Join(cfgDir, "junction.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("version: \"1\""), 0o644))

	t.Setenv("XDG_CONFIG_HOME", dir)

	assert.Equal(t, cfgPath, ResolveConfigPath())
}

func TestResolveConfigPath_NotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent/path")
	t.Chdir(t.TempDir())

	assert.Empty(t, ResolveConfigPath())
}

func TestDefaultDataDir_XDGDataHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/junction", DefaultDataDir())
}

func TestOverrides_Apply(t *testing.T) {
	t.Parallel()

	s := config.Default().Simulation
	Overrides{Cars: 40, Seed: 9, SeedSet: true, NoBreakdownLock: true}.Apply(&s)
	assert.Equal(t, 40, s.Cars)
	assert.Equal(t, uint64(9), s.Seed)
	assert.False(t, s.Breakdown.HoldLock)

	s = config.Default().Simulation
	Overrides{}.Apply(&s)
	assert.Equal(t, config.Default().Simulation, s)
}

func TestSimulationConfig(t *testing.T) {
	t.Parallel()

	s := config.Default().Simulation
	got := SimulationConfig(s, nil)
	assert.Equal(t, s.Cars, got.Cars)
	assert.Equal(t, s.TravelTime.Max, got.TravelMax)
	assert.Equal(t, s.TravelTime.Step, got.TravelStep)
	assert.Equal(t, s.Rotation.Timeout, got.Timeout)
	assert.Equal(t, s.Breakdown.Penalty, got.BreakdownPenalty)
	assert.True(t, got.HoldLock)
}

func TestRun_InvalidConfigContent(t *testing.T) {
	path := writeConfig(t, "not: valid: yaml: [")

	_, err := Run(context.Background(), RunParams{ConfigPath: path, DataDir: t.TempDir()})
	assert.Error(t, err)
}

func TestRun_ValidationFailure(t *testing.T) {
	path := writeConfig(t, "modules:\n  foo.bar: {}")

	_, err := Run(context.Background(), RunParams{ConfigPath: path, DataDir: t.TempDir()})
	assert.Error(t, err)
}

func TestRun_OverrideValidated(t *testing.T) {
	path := writeConfig(t, fastConfig)

	_, err := Run(context.Background(), RunParams{
		ConfigPath: path,
		DataDir:    t.TempDir(),
		Overrides:  Overrides{Cars: -1},
	})
	assert.Error(t, err)
}

func TestRun_EndToEnd(t *testing.T) {
	dataDir := t.TempDir()
	var stdout, stderr bytes.Buffer

	rep, err := Run(context.Background(), RunParams{
		ConfigPath: writeConfig(t, fastConfig),
		DataDir:    dataDir,
		Stdout:     &stdout,
		Stderr:     &stderr,
		Probe:      telemetry.StaticProbe{Value: telemetry.Sample{CPUPercent: 10, MemoryUsedMB: 512}},
	})
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Equal(t, 6, rep.Cars)
	assert.Equal(t, uint64(7), rep.Seed)
	assert.Len(t, rep.Vehicles, 6)
	assert.Equal(t, 6, rep.Stats.Passed)

	out := stdout.String()
	assert.Equal(t, 6, strings.Count(out, "came from"))
	assert.Contains(t, out, "Performance Report:")
	assert.Contains(t, out, "CPU Usage: 10.0%")

	rows, err := os.ReadFile(filepath.Join(dataDir, "vehicles.csv"))
	require.NoError(t, err)
	assert.Equal(t, 7, strings.Count(string(rows), "\n"), "header and one row per vehicle")
	assert.FileExists(t, filepath.Join(dataDir, "runs.db"))
}

func TestRun_CancelledStillReports(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	rep, err := Run(ctx, RunParams{
		ConfigPath: writeConfig(t, strings.Replace(fastConfig, "max: 5ms", "max: 1h", 1)),
		DataDir:    t.TempDir(),
		Stdout:     &stdout,
		Stderr:     &bytes.Buffer{},
		Probe:      telemetry.StaticProbe{},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, rep)
	assert.Contains(t, stdout.String(), "Performance Report:")
}
