package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/ookbridge/internal/config"
	"github.com/muurk/ookbridge/internal/ui"
)

// Config command flags
var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file without asking")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Create, inspect and locate the bridge configuration file.

The file lives at $XDG_CONFIG_HOME/ookbridge/config.yaml unless --config is
given. A missing file means the built-in defaults are used.`,
}

// resolvedConfigPath returns the file --config selects, or the default path.
func resolvedConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Example: `  # Write the default file
  ookbridge config init

  # Write to a custom location, replacing any existing file
  ookbridge config init --config ./bridge.yaml --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := resolvedConfigPath()
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())

	if _, err := os.Stat(path); err == nil && !configForce {
		ok := p.Confirm(cmd.InOrStdin(), "Configuration exists",
			[]string{path + " already exists", "Its settings will be replaced by the defaults"},
			"Overwrite?")
		if !ok {
			return nil
		}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}

	if err := config.Default().Save(path); err != nil {
		return err
	}

	p.PrintSuccess("Configuration written",
		ui.Param{Key: "File", Value: path},
		ui.Param{Key: "Next", Value: "edit radio.input and mqtt.broker, then run 'ookbridge run'"},
	)
	return nil
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration the bridge would run with: the file merged over
the defaults. Passwords are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := resolvedConfigPath()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source := path
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		source = "built-in defaults (" + path + " not found)"
	}

	data, err := cfg.Redacted().Marshal()
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Configuration", "ookbridge config show", ui.Param{Key: "Source", Value: source})
	p.Newline()
	p.Print(string(data))
	return nil
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolvedConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}
