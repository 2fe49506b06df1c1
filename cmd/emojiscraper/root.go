package main

import (
	"fmt"
	"os"
	"runtime"

	"emojiscraper/pkg/config"
	"emojiscraper/pkg/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	noColor       bool
	notifications bool
	quiet         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "emojiscraper",
	Short: "Collect custom emoji metadata from a chat web app",
	Long: `emojiscraper drives a browser tab of the chat web app, records every custom
emoji button that appears in the emoji picker and exports the result as
emoji-data.json.

Typical workflow:
  emojiscraper workspace init ./emojis
  emojiscraper collect -o ./emojis      # scroll the emoji picker, then press a key
  emojiscraper preview ./emojis         # check include.txt
  emojiscraper download ./emojis        # fetch the selected images
  emojiscraper mosaic text ./emojis cat.png 40 16`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetColor(!noColor)
		if quiet {
			ui.SetQuietMode(true)
		}

		if cmd.Name() == "collect" || cmd.Name() == "download" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.emojiscraper.yaml or ~/.config/emojiscraper/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "send a desktop notification when done")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`emojiscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// changedFlags returns the flags set on the command line, keyed by name, in
// the form config.MergeCommandLineFlags expects.
func changedFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "bool":
			v, _ := cmd.Flags().GetBool(f.Name)
			flags[f.Name] = v
		case "int":
			v, _ := cmd.Flags().GetInt(f.Name)
			flags[f.Name] = v
		case "duration":
			v, _ := cmd.Flags().GetDuration(f.Name)
			flags[f.Name] = v
		case "float64":
			v, _ := cmd.Flags().GetFloat64(f.Name)
			flags[f.Name] = v
		default:
			flags[f.Name] = f.Value.String()
		}
	})
	return flags
}

// loadConfig loads the configuration with the command's flags applied.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, changedFlags(cmd))
	if err != nil {
		return nil, err
	}
	ui.SetColor(cfg.UI.Color && !noColor)
	if cfg.UI.Quiet {
		ui.SetQuietMode(true)
	}
	return cfg, nil
}
