// Package main is the entry point for the junction CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flemzord/junction/internal/config"
	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/logging"
	"github.com/flemzord/junction/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "junction",
		Short:         "Simulate vehicles crossing a four-way intersection behind a rotating light",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), runCmd(), configCmd(), initCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "junction %s (commit: %s, built: %s)\n", version, commit, date)
			mods := core.GetModules()
			if len(mods) == 0 {
				fmt.Fprintln(out, "\nNo compiled modules.")
				return
			}
			fmt.Fprintln(out, "\nCompiled modules:")
			for _, mod := range mods {
				fmt.Fprintf(out, "  %s\n", mod.ID)
			}
		},
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and print its report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			cfgPath, _ := flags.GetString("config")
			dataDir, _ := flags.GetString("data-dir")
			cars, _ := flags.GetInt("cars")
			seed, _ := flags.GetUint64("seed")
			noLock, _ := flags.GetBool("no-breakdown-lock")
			levelName, _ := flags.GetString("log-level")

			level, err := logging.ParseLevel(levelName)
			if err != nil {
				return err
			}

			_, err = app.Run(cmd.Context(), app.RunParams{
				ConfigPath: cfgPath,
				DataDir:    dataDir,
				LogLevel:   level,
				Overrides: app.Overrides{
					Cars:            cars,
					Seed:            seed,
					SeedSet:         flags.Changed("seed"),
					NoBreakdownLock: noLock,
				},
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
			return err
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().String("data-dir", "", "Directory for run archives and exports")
	cmd.Flags().IntP("cars", "n", 0, "Number of vehicles (overrides the configuration)")
	cmd.Flags().Uint64("seed", 0, "Random seed (overrides the configuration; 0 seeds from the clock)")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
	cmd.Flags().Bool("no-breakdown-lock", false, "Release the intersection while a broken-down vehicle is stalled")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			logger := logging.New(cmd.ErrOrStderr(), slog.LevelWarn, nil)
			// Modules are provisioned for real; keep their files out of the data dir.
			scratch, err := os.MkdirTemp("", "junction-check-*")
			if err != nil {
				return err
			}
			defer func() { _ = os.RemoveAll(scratch) }()
			appCtx := core.NewAppContext(logger, scratch).WithModuleConfigs(cfg.Modules)

			application := core.NewApp(appCtx)
			ids := config.Resolve(cfg)
			if err := application.LoadModules(ids); err != nil {
				return err
			}
			defer application.Stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration OK (%d cars, %d modules)\n", cfg.Simulation.Cars, len(ids))
			for _, id := range ids {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	})
	return cmd
}
