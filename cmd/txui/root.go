package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/txui"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "txui",
		Short:         "txui serves transaction-bound component pages",
		Long:          `txui runs the demo application and inspects the transactions it stores.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "txui.yaml", "Path to the YAML configuration file")

	root.AddCommand(
		newServeCmd(),
		newConfigCmd(),
		newTxCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*txui.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return txui.LoadConfig(path)
}
