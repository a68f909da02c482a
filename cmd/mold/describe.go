package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/mold/internal/cli"
	"github.com/aretw0/mold/internal/presentation/tui"
)

var describeCmd = &cobra.Command{
	Use:   "describe [type]",
	Short: "Show the fields and rules of a registered type",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := cli.NewMold(cmd.Context(), cfg, logger, nil)
		if err != nil {
			return err
		}
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		md, err := cli.DescribeMarkdown(m, name)
		if err != nil {
			return err
		}
		return tui.Markdown(cmd.OutOrStdout(), md)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
