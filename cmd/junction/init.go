package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/junction/internal/config"
	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/simulation"
)

// initAnswers holds the wizard's raw form values.
type initAnswers struct {
	Cars        string
	Probability string
	HoldLock    bool
	Modules     []string
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create a configuration file interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "junction.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			def := config.Default().Simulation
			answers := initAnswers{
				Cars:        strconv.Itoa(def.Cars),
				Probability: strconv.FormatFloat(def.BreakdownProbability, 'g', -1, 64),
				HoldLock:    def.Breakdown.HoldLock,
			}

			accessible, _ := cmd.Flags().GetBool("accessible")
			if err := initForm(&answers).WithAccessible(accessible).Run(); err != nil {
				return err
			}

			raw, err := renderConfig(answers)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, raw, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	cmd.Flags().Bool("accessible", false, "Use plain prompts instead of the terminal UI")
	return cmd
}

func initForm(a *initAnswers) *huh.Form {
	var options []huh.Option[string]
	for _, mod := range core.GetModules() {
		options = append(options, huh.NewOption(string(mod.ID), string(mod.ID)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("How many cars?").
				Value(&a.Cars).
				Validate(validateCars),
			huh.NewInput().
				Title("Breakdown probability (0 to 1)").
				Value(&a.Probability).
				Validate(validateProbability),
			huh.NewConfirm().
				Title("Keep the intersection locked while a car is broken down?").
				Value(&a.HoldLock),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Modules to enable").
				Options(options...).
				Value(&a.Modules),
		),
	)
}

func validateCars(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("enter a whole number")
	}
	if n <= 0 || n > simulation.MaxVehicles {
		return fmt.Errorf("must be between 1 and %d", simulation.MaxVehicles)
	}
	return nil
}

func validateProbability(s string) error {
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New("enter a number")
	}
	if p < 0 || p > 1 {
		return errors.New("must be within [0, 1]")
	}
	return nil
}

// renderConfig turns the wizard answers into a validated YAML document.
func renderConfig(a initAnswers) ([]byte, error) {
	if err := errors.Join(validateCars(a.Cars), validateProbability(a.Probability)); err != nil {
		return nil, err
	}

	cfg := config.Default()
	cfg.Simulation.Cars, _ = strconv.Atoi(a.Cars)
	cfg.Simulation.BreakdownProbability, _ = strconv.ParseFloat(a.Probability, 64)
	cfg.Simulation.Breakdown.HoldLock = a.HoldLock

	if len(a.Modules) > 0 {
		cfg.Modules = make(map[string]yaml.Node, len(a.Modules))
		for _, id := range a.Modules {
			cfg.Modules[id] = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return raw, nil
}
