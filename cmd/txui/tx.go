package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pthm/txui"
)

func newTxCmd() *cobra.Command {
	tx := &cobra.Command{
		Use:   "tx",
		Short: "Inspect and manage stored transactions",
		Long:  `Reads transactions from the configured store backend.`,
	}
	tx.AddCommand(newTxShowCmd(), newTxForkCmd(), newTxRmCmd())
	return tx
}

// openStore builds the configured store. The caller closes the backend.
func openStore(cmd *cobra.Command) (*txui.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cfg.OpenStore()
}

func newTxShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <tid>",
		Short: "Print a stored transaction as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Backend().Close()

			info, err := store.Inspect(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load transaction %q: %w", args[0], err)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(info); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func newTxForkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fork <tid>",
		Short: "Copy a transaction under a new id",
		Long: `Copies the transaction under a fresh id whose parent is <tid>. With
--empty the new transaction only records the parent and the route.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Backend().Close()

			tx, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load transaction %q: %w", args[0], err)
			}

			var id string
			if empty, _ := cmd.Flags().GetBool("empty"); empty {
				fork := store.Fork(tx)
				id = fork.ID()
				tx = fork
			} else {
				id = store.MarkForNewID(tx)
			}
			if err := store.Commit(cmd.Context(), tx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().Bool("empty", false, "Create an empty child transaction instead of a copy")
	return cmd
}

func newTxRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <tid>...",
		Short: "Remove one or more transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Backend().Close()

			for _, tid := range args {
				if err := store.Delete(cmd.Context(), tid); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed transaction '%s'\n", tid)
			}
			return nil
		},
	}
}
