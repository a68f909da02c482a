package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/aretw0/mold/internal/cli"
	"github.com/aretw0/mold/internal/config"
	"github.com/aretw0/mold/internal/presentation/tui"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mold",
	Short: "mold binds request parameters into typed values and serializes them back",
	Long: `mold converts flat, dotted request parameters into typed object graphs and
renders object graphs as JSON, XML or YAML views with include/exclude and
version rules.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("locale") {
			loaded.Locale, _ = cmd.Flags().GetString("locale")
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		logger = cli.CreateLogger(cfg.LogLevel)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, cli.ErrBindFailed) {
			fmt.Fprintln(os.Stderr, tui.Error(err.Error()))
		}
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "mold.yaml", "Configuration file")
	rootCmd.PersistentFlags().String("locale", "", "Locale for parsing and messages (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}
