package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mold"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mold",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mold version %s\n", mold.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
