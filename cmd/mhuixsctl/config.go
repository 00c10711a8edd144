package main

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective engine configuration",
		Long: `The config command prints the configuration the engines would run with:
built-in defaults, overlaid by --config and MHUIXS_* environment variables.

Example:
  mhuixsctl config
  mhuixsctl config --config mhuixs.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig()
		},
	}
}

func runConfig() error {
	if jsonOut {
		return printJSON(cfg)
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
