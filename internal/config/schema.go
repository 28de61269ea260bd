// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for junction.
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Simulation tunes the intersection and the fleet of vehicles.
	Simulation Simulation `yaml:"simulation"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "report.sqlite").
	Modules map[string]yaml.Node `yaml:"modules"`
}

// Simulation holds the parameters of one run.
type Simulation struct {
	// Cars is the number of vehicles created for the run.
	Cars int `yaml:"cars"`

	// Seed feeds the random source. Zero seeds from the clock.
	Seed uint64 `yaml:"seed"`

	// BreakdownProbability is the chance, fixed at creation, that a vehicle
	// breaks down before reaching the light.
	BreakdownProbability float64 `yaml:"breakdown_probability"`

	TravelTime TravelTime `yaml:"travel_time"`
	Rotation   Rotation   `yaml:"rotation"`
	Breakdown  Breakdown  `yaml:"breakdown"`
}

// TravelTime bounds the random delay before a vehicle reaches the light.
// Draws are Min plus a whole number of Steps.
type TravelTime struct {
	Min  time.Duration `yaml:"min"`
	Max  time.Duration `yaml:"max"`
	Step time.Duration `yaml:"step"`
}

// Rotation drives the light scheduler.
type Rotation struct {
	// Threshold is the number of registered vehicles that forces a rotation.
	Threshold int `yaml:"threshold"`

	// Timeout is the longest the scheduler waits for traffic before
	// rotating anyway.
	Timeout time.Duration `yaml:"timeout"`

	// Pacing is the pause between two scheduler decisions.
	Pacing time.Duration `yaml:"pacing"`
}

// Breakdown controls how a broken-down vehicle is delayed.
type Breakdown struct {
	Penalty time.Duration `yaml:"penalty"`

	// HoldLock keeps the intersection locked for the whole penalty, which
	// stalls every other vehicle behind the broken-down one.
	HoldLock bool `yaml:"hold_lock"`
}

// Default returns a configuration with every simulation parameter set to
// its standard value and no modules enabled.
func Default() *Config {
	return &Config{
		Version: "1",
		Simulation: Simulation{
			Cars:                 12,
			BreakdownProbability: 0.1,
			TravelTime:           TravelTime{Min: time.Second, Max: 5 * time.Second, Step: time.Second},
			Rotation:             Rotation{Threshold: 3, Timeout: 3 * time.Second, Pacing: time.Second},
			Breakdown:            Breakdown{Penalty: 2 * time.Second, HoldLock: true},
		},
	}
}
