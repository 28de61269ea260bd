package cron

import (
	"context"
	"errors"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/simulation"
	"github.com/flemzord/junction/internal/telemetry"
)

func init() {
	core.RegisterModule(&Module{})
}

// Config configures the cron module. Empty schedules use the job defaults;
// "off" disables a job.
type Config struct {
	StatusLog       string        `yaml:"status_log"`
	TelemetrySample string        `yaml:"telemetry_sample"`
	ProbeInterval   time.Duration `yaml:"probe_interval"`
}

const disabled = "off"

// Module runs the periodic jobs of a simulation run.
type Module struct {
	config    Config
	appCtx    *core.AppContext
	scheduler *Scheduler

	// probe is replaced in tests.
	probe telemetry.Probe
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "cron",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	return node.Decode(&m.config)
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.appCtx = ctx
	m.scheduler = NewScheduler(ctx.Logger)
	if m.probe == nil {
		m.probe = telemetry.NewSystemProbe(m.config.ProbeInterval)
	}
	ctx.RegisterService("cron.scheduler", m.scheduler)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	var errs []error
	for _, expr := range []string{m.config.StatusLog, m.config.TelemetrySample} {
		if expr == "" || expr == disabled {
			continue
		}
		errs = append(errs, ParseSchedule(expr))
	}
	if m.config.ProbeInterval < 0 {
		errs = append(errs, errors.New("cron: probe_interval must not be negative"))
	}
	return errors.Join(errs...)
}

// Start implements core.Starter. Jobs whose dependencies are missing are
// not registered.
func (m *Module) Start() error {
	if m.config.StatusLog != disabled {
		if svc, ok := m.appCtx.Service(simulation.ServiceName); ok {
			if src, ok := svc.(StatusSource); ok {
				if err := m.scheduler.RegisterJob(&StatusLogJob{
					Source:       src,
					Logger:       m.appCtx.Logger,
					ScheduleExpr: m.config.StatusLog,
				}); err != nil {
					return err
				}
			}
		}
	}

	if m.config.TelemetrySample != disabled {
		job := &TelemetrySampleJob{
			Probe:        m.probe,
			Logger:       m.appCtx.Logger,
			ScheduleExpr: m.config.TelemetrySample,
		}
		if svc, ok := m.appCtx.Service("metrics.collector"); ok {
			if rec, ok := svc.(SampleRecorder); ok {
				job.Recorder = rec
			}
		}
		if err := m.scheduler.RegisterJob(job); err != nil {
			return err
		}
	}

	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Stop(ctx)
}

// Scheduler returns the module's scheduler.
func (m *Module) Scheduler() *Scheduler { return m.scheduler }
