package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/swap-sim/swap-sim/server"
	sim "github.com/swap-sim/swap-sim/sim"
)

var (
	// CLI flags for the simulation scenario
	scenarioPath  string  // Path to a YAML scenario file (optional)
	seed          int64   // Seed for random placement and movement
	durationHours float64 // Simulated horizon in hours
	numScooters   int     // Fleet size when no scenario file is given
	numStations   int     // Station count when no scenario file is given
	logLevel      string  // Log verbosity level

	// CLI flags for the API server
	listenAddr string // HTTP listen address
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "swap-sim",
	Short: "Discrete-event simulator for battery-swap station networks",
}

// buildConfig assembles the simulation config from the scenario file and
// flag overrides. Flags only override scenario values when set explicitly.
func buildConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if scenarioPath != "" {
		loaded, err := LoadScenario(scenarioPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("scooters") {
		cfg.Scooters.Count = numScooters
	}
	if flags.Changed("stations") {
		cfg.NumStations = numStations
	}
	if flags.Changed("seed") || scenarioPath == "" {
		cfg.Seed = seed
	}
	if flags.Changed("duration-hours") {
		cfg.DurationHours = durationHours
	}
	return cfg, nil
}

// runCmd executes a headless simulation to completion and prints metrics
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the swap simulation headless",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("Could not load configuration: %v", err)
		}

		logrus.Infof("Starting simulation: %d scooters, %d stations, horizon=%.1fh, seed=%d",
			cfg.TotalScooters(), cfg.NumStations, cfg.DurationHours, cfg.Seed)

		startTime := time.Now()

		engine, err := sim.NewEngine(cfg)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := engine.Run(); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		engine.Metrics.Print()

		logrus.Infof("Simulation complete: %d events in %v", engine.EventCount(), time.Since(startTime))
	},
}

// serveCmd starts the HTTP control API and websocket stream
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation control API",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("Could not load configuration: %v", err)
		}

		controller, err := sim.NewController()
		if err != nil {
			logrus.Fatalf("Could not build simulation: %v", err)
		}
		if err := controller.Configure(cfg); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		srv := server.New(controller)
		logrus.Infof("Serving simulation API on %s", listenAddr)
		if err := srv.ListenAndServe(listenAddr); err != nil {
			logrus.Fatalf("Server failed: %v", err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, serveCmd} {
		c.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML scenario file")
		c.Flags().Int64Var(&seed, "seed", 42, "Seed for random placement and movement")
		c.Flags().Float64Var(&durationHours, "duration-hours", 24, "Simulated horizon in hours")
		c.Flags().IntVar(&numScooters, "scooters", 50, "Fleet size (ignored with --scenario)")
		c.Flags().IntVar(&numStations, "stations", 5, "Station count (ignored with --scenario)")
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "HTTP listen address")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}
