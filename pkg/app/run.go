// Package app provides the entry point shared by the junction commands:
// it loads the configuration, wires the modules around one simulation run
// and publishes the report.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/flemzord/junction/internal/config"
	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/logging"
	"github.com/flemzord/junction/internal/report"
	"github.com/flemzord/junction/internal/simulation"
	"github.com/flemzord/junction/internal/telemetry"
)

// publishTimeout bounds how long report sinks may take once a run is over.
const publishTimeout = 30 * time.Second

// RunParams configures one simulation run.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called; with no file found the
	// defaults are used.
	ConfigPath string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level

	// Overrides are applied on top of the loaded configuration.
	Overrides Overrides

	// Stdout receives the text report. Default: os.Stdout.
	Stdout io.Writer
	// Stderr receives the logs. Default: os.Stderr.
	Stderr io.Writer

	// Probe samples resource usage for the report. Default: a system probe.
	Probe telemetry.Probe
}

// Overrides are command-line adjustments to the simulation section.
type Overrides struct {
	Cars            int    // zero keeps the configured value
	Seed            uint64 // used when SeedSet
	SeedSet         bool
	NoBreakdownLock bool
}

// Apply writes the overrides into s.
func (o Overrides) Apply(s *config.Simulation) {
	if o.Cars != 0 {
		s.Cars = o.Cars
	}
	if o.SeedSet {
		s.Seed = o.Seed
	}
	if o.NoBreakdownLock {
		s.Breakdown.HoldLock = false
	}
}

// SimulationConfig converts the configuration file section into a
// simulation.Config.
func SimulationConfig(s config.Simulation, logger *slog.Logger) simulation.Config {
	return simulation.Config{
		Cars:                 s.Cars,
		Seed:                 s.Seed,
		BreakdownProbability: s.BreakdownProbability,
		TravelMin:            s.TravelTime.Min,
		TravelMax:            s.TravelTime.Max,
		TravelStep:           s.TravelTime.Step,
		Threshold:            s.Rotation.Threshold,
		Timeout:              s.Rotation.Timeout,
		Pacing:               s.Rotation.Pacing,
		BreakdownPenalty:     s.Breakdown.Penalty,
		HoldLock:             s.Breakdown.HoldLock,
		Logger:               logger,
	}
}

// Run loads configuration, starts the configured modules around one
// simulation, writes the text report and hands it to every report sink.
// SIGINT and SIGTERM cancel the run; the partial report is still produced
// and the cancellation is returned.
func Run(ctx context.Context, params RunParams) (*report.Report, error) {
	stdout, stderr := params.Stdout, params.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	cfgPath := params.ConfigPath
	if cfgPath == "" {
		cfgPath = ResolveConfigPath()
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}
	params.Overrides.Apply(&cfg.Simulation)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	redactor := logging.NewRedactor()
	logger := logging.New(stderr, params.LogLevel, redactor)
	if cfgPath == "" {
		logger.Info("no configuration file found, using defaults")
	}

	sim, err := simulation.New(SimulationConfig(cfg.Simulation, logger))
	if err != nil {
		return nil, err
	}

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	appCtx := core.NewAppContext(logger, dataDir).WithModuleConfigs(cfg.Modules)
	appCtx.RegisterService(logging.ServiceName, redactor)
	appCtx.RegisterService(simulation.ServiceName, sim)
	appCtx.RegisterService("config.path", cfgPath)

	application := core.NewApp(appCtx)
	if err := application.LoadModules(config.Resolve(cfg)); err != nil {
		return nil, err
	}
	if err := application.Start(); err != nil {
		return nil, err
	}
	defer application.Stop()

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, runErr := sim.Run(runCtx)
	if res == nil {
		return nil, runErr
	}

	probe := params.Probe
	if probe == nil {
		probe = telemetry.NewSystemProbe(0)
	}
	sample, err := probe.Sample(context.WithoutCancel(ctx))
	if err != nil {
		logger.Warn("resource usage unavailable", "error", err)
	}

	rep := report.Build(res, sample)
	if err := report.WriteText(stdout, rep); err != nil {
		return rep, errors.Join(runErr, fmt.Errorf("writing report: %w", err))
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	sinks := report.SinksFrom(appCtx.ServicesByNamespace(report.ServiceNamespace))
	if err := report.Publish(pubCtx, rep, sinks); err != nil {
		logger.Error("publishing report", "error", err)
	}

	return rep, runErr
}

// ResolveConfigPath searches for a config file in standard locations and
// returns "" when none exists.
// Search order: $XDG_CONFIG_HOME/junction/junction.yaml → ~/.config/junction/junction.yaml → ./junction.yaml
func ResolveConfigPath() string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "junction", "junction.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "junction", "junction.yaml"))
	}

	candidates = append(candidates, "junction.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/junction if set, otherwise ~/.local/share/junction.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "junction")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "junction")
}
