package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/txui"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of txui",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "txui version %s\n", txui.Version)
		},
	}
}
