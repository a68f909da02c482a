package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/mold/internal/cli"
	"github.com/aretw0/mold/pkg/serialize"
)

var bindCmd = &cobra.Command{
	Use:   "bind <type> [key=value...]",
	Short: "Bind parameters into a registered type and print the result",
	Example: `  mold bind client client.id=7 client.name=Ana client.tags=a client.tags=b --include tags
  mold bind client client.balance=1.234,5 --locale pt-BR --format yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := cfg.Tag()
		if err != nil {
			return err
		}
		m, err := cli.NewMold(cmd.Context(), cfg, logger, nil)
		if err != nil {
			return err
		}

		opts := cli.BindOptions{
			Type:   args[0],
			Args:   args[1:],
			Locale: tag,
		}
		opts.Include, _ = cmd.Flags().GetStringSlice("include")
		opts.Exclude, _ = cmd.Flags().GetStringSlice("exclude")
		opts.Recursive, _ = cmd.Flags().GetBool("recursive")
		if cmd.Flags().Changed("indent") {
			opts.Indented, _ = cmd.Flags().GetBool("indent")
			opts.Compact = !opts.Indented
		}
		if cmd.Flags().Changed("version") {
			opts.Version, _ = cmd.Flags().GetFloat64("version")
			opts.Versioned = true
		}
		if f, _ := cmd.Flags().GetString("format"); f != "" {
			if opts.Format, err = serialize.ParseFormat(f); err != nil {
				return err
			}
		}
		return cli.RunBind(m, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(bindCmd)
	bindCmd.Flags().StringSlice("include", nil, "Fields to include, as dotted paths")
	bindCmd.Flags().StringSlice("exclude", nil, "Fields to exclude, as dotted paths")
	bindCmd.Flags().Bool("recursive", false, "Include every nested object")
	bindCmd.Flags().Bool("indent", false, "Pretty print the output")
	bindCmd.Flags().Float64("version", 0, "Active version for since rules")
	bindCmd.Flags().StringP("format", "f", "", "Output format: json, xml or yaml")
}
