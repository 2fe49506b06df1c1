package main

import (
	"errors"
	"fmt"
	"os"

	"emojiscraper/pkg/config"
	"emojiscraper/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// defaultConfigPath is the first location config.Load looks at.
const defaultConfigPath = ".emojiscraper.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage emojiscraper configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables (EMOJISCRAPER_*)
  - .env files
  - Configuration file
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "1. Adjust the browser and export sections")
	fmt.Fprintln(cmd.OutOrStdout(), "2. Run 'emojiscraper config validate' to check the configuration")
	fmt.Fprintln(cmd.OutOrStdout(), "3. Start collecting with 'emojiscraper collect'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Fprintln(cmd.OutOrStdout(), "\nConfiguration summary:")
	if cfg.Scan.Snapshot != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "  Snapshot: %s\n", cfg.Scan.Snapshot)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "  Page: %s\n", cfg.Browser.URL)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Scan interval: %s\n", cfg.Scan.Interval)
	fmt.Fprintf(cmd.OutOrStdout(), "  Export: %s (%s)\n", cfg.Export.Directory, cfg.Export.Delivery)
	fmt.Fprintf(cmd.OutOrStdout(), "  Downloads: %d parallel, %d requests/minute\n",
		cfg.Download.ConcurrentDownloads, cfg.Download.RequestsPerMinute)
	fmt.Fprintf(cmd.OutOrStdout(), "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
