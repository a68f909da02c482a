package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/mold/internal/cli"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes bind, describe and types as MCP tools, so AI agents can bind
parameters and inspect types.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = cfg.Listen
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		m, err := cli.NewMold(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}
		if err := cli.ServeMCP(ctx, m, transport, addr, logger); err != nil {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", cli.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().StringP("listen", "l", "", "Address to listen on, sse only (overrides config)")
}
