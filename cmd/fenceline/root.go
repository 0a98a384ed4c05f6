package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yairfalse/fenceline/config"
	"github.com/yairfalse/fenceline/store"
)

var (
	version = "0.1.0"

	cfgFile    string
	eventsFile string
	debug      bool

	cfg *config.Config

	// exitCode lets commands signal schedulers through the process
	// exit status, independent of whether an error occurred
	exitCode int

	rootCmd = &cobra.Command{
		Use:   "fenceline",
		Short: "Enforcement telemetry and effectiveness scoring",
		Long: `Fenceline - Enforcement Telemetry Engine

Fenceline records enforcement events (blocked imports, rule violations,
review bypasses, commit completions) to an append-only log and scores
whether your automated guardrails are actually working.

Query stats, compare trends across weeks, check alert thresholds, and
render a Markdown dashboard - or run watch mode for unattended health
monitoring.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initRuntime()
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`Fenceline {{.Version}} - Enforcement Telemetry Engine
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&eventsFile, "events-file", "", "Path to the events log (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// initRuntime sets up logging and loads configuration
func initRuntime() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if eventsFile != "" {
		cfg.EventsFile = eventsFile
	}

	return nil
}

// openStore opens the configured event store
func openStore() (*store.Store, error) {
	return store.Open(cfg.EventsFile)
}
