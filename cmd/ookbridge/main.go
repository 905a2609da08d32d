// Ookbridge decodes 433 MHz weather sensor transmissions and publishes the
// readings.
//
// A receiver front-end reports the duration of each on-off-keyed pulse over
// a serial line, one decimal microsecond value per line. Ookbridge finds the
// sync pattern of a RainGauge (NX-6331) or F007TP transmission in that
// stream, validates the frame and publishes each reading over MQTT and/or
// Redis. A small HTTP server offers a websocket feed, health and Prometheus
// metrics, and advertises itself over mDNS.
//
// Usage:
//
//	ookbridge [command] [flags]
//
// See 'ookbridge --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/ookbridge/internal/config"
	"github.com/muurk/ookbridge/internal/logging"
	"github.com/muurk/ookbridge/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "ookbridge",
	Short: "433 MHz OOK sensor to MQTT bridge",
	Long: `Ookbridge decodes RainGauge (NX-6331) and F007TP temperature sensor
transmissions from a pulse-timing receiver and publishes the readings.

Pulse durations are read from a serial receiver front-end (or stdin) and
readings are published over MQTT and/or Redis. Run 'ookbridge config init'
to write a starting configuration file.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: $XDG_CONFIG_HOME/ookbridge/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)

	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration selected by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Current()
		fmt.Printf("ookbridge %s (commit: %s, %s, %s)\n", info.Version, info.Commit, info.GoVersion, info.Platform)
	},
}
