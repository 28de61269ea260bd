// Package telemetry samples the host's CPU and memory usage.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// bytesPerMB converts byte counts to the megabytes used in reports.
const bytesPerMB = 1024 * 1024

// Sample is one reading of the host's resource usage.
type Sample struct {
	CPUPercent   float64   `json:"cpu_percent"`
	MemoryUsedMB float64   `json:"memory_used_mb"`
	At           time.Time `json:"at"`
}

// Probe reads resource usage.
type Probe interface {
	Sample(ctx context.Context) (Sample, error)
}

// SystemProbe reads system-wide usage through gopsutil.
type SystemProbe struct {
	// Interval is the window CPU usage is measured over. Zero compares
	// against the previous call, which makes the first reading meaningless
	// but never blocks.
	Interval time.Duration

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// Compile-time interface check.
var _ Probe = (*SystemProbe)(nil)

// NewSystemProbe returns a probe measuring CPU over interval.
func NewSystemProbe(interval time.Duration) *SystemProbe {
	return &SystemProbe{Interval: interval, Now: time.Now}
}

// Sample implements Probe. A failing half of the reading does not discard
// the other; the errors are joined.
func (p *SystemProbe) Sample(ctx context.Context) (Sample, error) {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	s := Sample{At: now()}

	var errs []error
	percents, err := cpu.PercentWithContext(ctx, p.Interval, false)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("telemetry: reading cpu: %w", err))
	case len(percents) > 0:
		s.CPUPercent = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("telemetry: reading memory: %w", err))
	} else {
		s.MemoryUsedMB = float64(vm.Used) / bytesPerMB
	}

	return s, errors.Join(errs...)
}

// StaticProbe always returns the same sample.
type StaticProbe struct {
	Value Sample
	Err   error
}

// Sample implements Probe.
func (p StaticProbe) Sample(context.Context) (Sample, error) {
	return p.Value, p.Err
}
