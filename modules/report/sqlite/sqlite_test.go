package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/intersection"
	"github.com/flemzord/junction/internal/report"
)

func newTestModule(t *testing.T) *Module {
	t.Helper()

	dir := t.TempDir()
	m := &Module{config: Config{Path: filepath.Join(dir, "test.db")}}

	if err := m.Provision(core.NewAppContext(slog.Default(), dir)); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	t.Cleanup(func() { _ = m.Stop(context.Background()) })
	return m
}

func sampleReport(runID string, started time.Time) *report.Report {
	vehicles := []intersection.Record{
		{Seq: 1, ID: 3, Arrival: intersection.North, Departure: intersection.East, WaitedSeconds: 2,
			LightWait: 2 * time.Second, Passed: true, Congested: true},
		{Seq: 2, ID: 1, Arrival: intersection.West, Departure: intersection.South, WaitedSeconds: 4,
			LightWait: 2 * time.Second, Penalty: 2 * time.Second, BrokenDown: true, Passed: true},
		{Seq: 3, ID: 2, Arrival: intersection.South, Departure: intersection.North},
	}
	return &report.Report{
		RunID:      runID,
		Seed:       42,
		Cars:       len(vehicles),
		Started:    started,
		Duration:   1500 * time.Millisecond,
		Rotations:  5,
		CPUPercent: 12.5,
		MemoryMB:   256,
		Vehicles:   vehicles,
		Stats:      report.ComputeStats(vehicles),
	}
}

func TestArchive_WriteAndList(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	older := sampleReport("run-a", base)
	newer := sampleReport("run-b", base.Add(time.Minute))
	for _, r := range []*report.Report{older, newer} {
		if err := m.Archive().WriteReport(ctx, r); err != nil {
			t.Fatalf("WriteReport(%s): %v", r.RunID, err)
		}
	}

	runs, err := m.Archive().ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-b" || runs[1].RunID != "run-a" {
		t.Fatalf("runs = %+v, want run-b then run-a", runs)
	}

	got := runs[1]
	want := RunSummary{
		RunID:      "run-a",
		Seed:       42,
		Cars:       3,
		Started:    base,
		Duration:   1500 * time.Millisecond,
		Rotations:  5,
		Passed:     2,
		Congested:  1,
		BrokenDown: 1,
		MeanWait:   older.Stats.MeanWait,
		MaxWait:    older.Stats.MaxWait,
		CPUPercent: 12.5,
		MemoryMB:   256,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	limited, err := m.Archive().ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns(1): %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("len(limited) = %d, want 1", len(limited))
	}
}

func TestArchive_VehiclesRoundTrip(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()
	r := sampleReport("run-v", time.Now())

	if err := m.Archive().WriteReport(ctx, r); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	// A second write replaces the run instead of duplicating vehicles.
	if err := m.Archive().WriteReport(ctx, r); err != nil {
		t.Fatalf("WriteReport again: %v", err)
	}

	got, err := m.Archive().Vehicles(ctx, "run-v")
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}
	if diff := cmp.Diff(r.Vehicles, got); diff != "" {
		t.Errorf("vehicles mismatch (-want +got):\n%s", diff)
	}
}

func TestArchive_UnknownRun(t *testing.T) {
	m := newTestModule(t)

	_, err := m.Archive().Vehicles(context.Background(), "nope")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestModule_RegistersSink(t *testing.T) {
	dir := t.TempDir()
	appCtx := core.NewAppContext(slog.Default(), dir)

	m := &Module{}
	if err := m.Provision(appCtx); err != nil {
		t.Fatalf("provision: %v", err)
	}
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	if m.config.Path != filepath.Join(dir, defaultDBFile) {
		t.Errorf("path = %q, want default under data dir", m.config.Path)
	}

	sinks := report.SinksFrom(appCtx.ServicesByNamespace(report.ServiceNamespace))
	if len(sinks) != 1 || sinks[0].Name() != "sqlite" {
		t.Fatalf("sinks = %v, want the sqlite archive", sinks)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	ctx := context.Background()

	for range 2 {
		a, err := Open(ctx, path, Config{})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		var version int
		if err := a.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
			t.Fatalf("read version: %v", err)
		}
		if version != schemaVersion {
			t.Errorf("version = %d, want %d", version, schemaVersion)
		}
		_ = a.Close()
	}
}

func TestConfig_Validate(t *testing.T) {
	c := Config{BusyTimeout: -1}
	if err := c.validate(); err == nil {
		t.Error("expected error for negative busy_timeout")
	}
}
