// Package report turns a finished run into a summary: the per-vehicle
// status lines, aggregate wait statistics, the turning movements, and the
// host's resource usage. Sinks persist it elsewhere.
package report

import (
	"time"

	"github.com/flemzord/junction/internal/intersection"
	"github.com/flemzord/junction/internal/simulation"
	"github.com/flemzord/junction/internal/telemetry"
)

// Report is the outcome of one run.
type Report struct {
	RunID      string                `json:"run_id"`
	Seed       uint64                `json:"seed"`
	Cars       int                   `json:"cars"`
	Started    time.Time             `json:"started"`
	Duration   time.Duration         `json:"duration"`
	Rotations  int                   `json:"rotations"`
	CPUPercent float64               `json:"cpu_percent"`
	MemoryMB   float64               `json:"memory_mb"`
	Vehicles   []intersection.Record `json:"vehicles"`
	Stats      Stats                 `json:"stats"`
	Movements  []Movement            `json:"movements"`
}

// Build assembles the report of res with the resource usage in sample.
func Build(res *simulation.Result, sample telemetry.Sample) *Report {
	return &Report{
		RunID:      res.RunID,
		Seed:       res.Seed,
		Cars:       res.Cars,
		Started:    res.Started,
		Duration:   res.Duration,
		Rotations:  res.Rotations,
		CPUPercent: sample.CPUPercent,
		MemoryMB:   sample.MemoryUsedMB,
		Vehicles:   res.Vehicles,
		Stats:      ComputeStats(res.Vehicles),
		Movements:  Movements(res.Vehicles),
	}
}
