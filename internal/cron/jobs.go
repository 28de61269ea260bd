package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/flemzord/junction/internal/intersection"
	"github.com/flemzord/junction/internal/telemetry"
)

// StatusSource is the part of a simulation the status job reads.
// Defined here to avoid a dependency on the simulation package.
type StatusSource interface {
	Snapshot() intersection.Snapshot
}

// StatusLogJob logs a snapshot of the intersection.
type StatusLogJob struct {
	Source       StatusSource
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "@every 5s"
}

// Compile-time interface check.
var _ Job = (*StatusLogJob)(nil)

// Name implements Job.
func (j *StatusLogJob) Name() string { return "status_log" }

// Schedule implements Job.
func (j *StatusLogJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "@every 5s"
}

// Run logs the current snapshot.
func (j *StatusLogJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: status log cancelled: %w", ctx.Err())
	}
	snap := j.Source.Snapshot()
	j.Logger.Info("intersection status",
		"permitted", snap.Permitted,
		"rotations", snap.Rotations,
		"registered", snap.Registered,
		"passed", snap.Passed,
		"passed_since_rotation", snap.PassedSinceRotation,
		"congested", snap.Congested,
		"broken_down", snap.BrokenDown,
	)
	return nil
}

// SampleRecorder receives telemetry samples, typically the metrics collector.
type SampleRecorder interface {
	RecordSample(telemetry.Sample)
}

// TelemetrySampleJob probes host usage and forwards it to Recorder.
type TelemetrySampleJob struct {
	Probe        telemetry.Probe
	Recorder     SampleRecorder // nil = keep the sample only
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "@every 2s"

	mu   sync.Mutex
	last telemetry.Sample
}

// Compile-time interface check.
var _ Job = (*TelemetrySampleJob)(nil)

// Name implements Job.
func (j *TelemetrySampleJob) Name() string { return "telemetry_sample" }

// Schedule implements Job.
func (j *TelemetrySampleJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "@every 2s"
}

// Run takes one sample.
func (j *TelemetrySampleJob) Run(ctx context.Context) error {
	s, err := j.Probe.Sample(ctx)
	if err != nil {
		return fmt.Errorf("cron: telemetry sample: %w", err)
	}

	j.mu.Lock()
	j.last = s
	j.mu.Unlock()

	if j.Recorder != nil {
		j.Recorder.RecordSample(s)
	}
	j.Logger.Debug("telemetry sampled", "cpu_percent", s.CPUPercent, "memory_mb", s.MemoryUsedMB)
	return nil
}

// Last returns the most recent successful sample.
func (j *TelemetrySampleJob) Last() telemetry.Sample {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}
