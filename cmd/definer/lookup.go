package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/definer/internal/cli"
)

func newLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <word>...",
		Short: "Look words up in the dictionary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			records := newDictionaryClient(cfg, slog.Default()).LookupAll(cmd.Context(), args)
			cli.NewPrinter(cmd.OutOrStdout()).PrintRecords(records)
			return nil
		},
	}
}
