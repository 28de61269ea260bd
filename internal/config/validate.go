package config

import (
	"errors"
	"fmt"

	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/simulation"
)

// Validate checks the structural validity of a Config: the version field,
// the simulation bounds, and that every configured module ID exists in the
// registry. All problems are reported at once.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	errs = append(errs, validateSimulation(&cfg.Simulation)...)

	return errors.Join(errs...)
}

func validateSimulation(s *Simulation) []error {
	var errs []error

	if s.Cars <= 0 || s.Cars > simulation.MaxVehicles {
		errs = append(errs, fmt.Errorf("config: simulation.cars must be between 1 and %d, got %d", simulation.MaxVehicles, s.Cars))
	}
	if s.BreakdownProbability < 0 || s.BreakdownProbability > 1 {
		errs = append(errs, fmt.Errorf("config: simulation.breakdown_probability must be within [0, 1], got %g", s.BreakdownProbability))
	}
	if s.TravelTime.Min < 0 {
		errs = append(errs, errors.New("config: simulation.travel_time.min must not be negative"))
	}
	if s.TravelTime.Step < 0 {
		errs = append(errs, errors.New("config: simulation.travel_time.step must not be negative"))
	}
	if s.TravelTime.Max < s.TravelTime.Min {
		errs = append(errs, fmt.Errorf("config: simulation.travel_time.max (%s) is below min (%s)", s.TravelTime.Max, s.TravelTime.Min))
	}
	if s.Rotation.Threshold <= 0 {
		errs = append(errs, errors.New("config: simulation.rotation.threshold must be positive"))
	}
	if s.Rotation.Timeout <= 0 {
		errs = append(errs, errors.New("config: simulation.rotation.timeout must be positive"))
	}
	if s.Rotation.Pacing < 0 {
		errs = append(errs, errors.New("config: simulation.rotation.pacing must not be negative"))
	}
	if s.Breakdown.Penalty < 0 {
		errs = append(errs, errors.New("config: simulation.breakdown.penalty must not be negative"))
	}

	return errs
}
