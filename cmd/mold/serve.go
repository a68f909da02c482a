package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/mold"
	"github.com/aretw0/mold/internal/cli"
	"github.com/aretw0/mold/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP playground",
	Long:  `Starts an HTTP server exposing /bind/{type}, /describe/{type} and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
			cfg.Listen = addr
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		reg := prometheus.NewRegistry()
		m, err := cli.NewMold(ctx, cfg, logger, reg)
		if err != nil {
			return err
		}

		tui.PrintBanner(cmd.ErrOrStderr(), mold.Version)
		if err := cli.Serve(ctx, m, cfg.Listen, reg, logger); err != nil {
			return err
		}
		if sig := ctx.Signal(); sig != nil {
			logger.Info("Playground stopped", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Address to listen on (overrides config)")
}
