package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/definer/internal/cli"
)

func newPopupCommand() *cobra.Command {
	var plain bool
	command := &cobra.Command{
		Use:   "popup",
		Short: "Define the words currently selected in a running watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client := cli.NewMessageClient(messageServerURL(cfg))
			defer func() {
				_ = client.Close()
			}()

			ctx := cmd.Context()
			result, err := cli.LoadPopup(ctx, client, newDictionaryClient(cfg, slog.Default()))
			if err != nil {
				return fmt.Errorf("cli.LoadPopup > %w", err)
			}

			if plain {
				cli.NewPrinter(cmd.OutOrStdout()).PrintPopup(result)
				return nil
			}
			return cli.RunPopup(ctx, result, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	command.Flags().BoolVar(&plain, "plain", false, "Print the definitions instead of opening the interactive popup")
	return command
}
