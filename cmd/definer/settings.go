package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/definer/internal/settings"
)

func newSettingsCommand() *cobra.Command {
	settingsCommand := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the auto-define settings",
	}
	settingsCommand.AddCommand(
		newSettingsShowCommand(),
		newSettingsSetCommand(),
	)
	return settingsCommand
}

func newSettingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:  "show",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, s, err := loadSettings(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(s)
			if err != nil {
				return fmt.Errorf("yaml.Marshal > %w", err)
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", store.Path(), out); err != nil {
				return fmt.Errorf("fmt.Fprintf > %w", err)
			}
			return nil
		},
	}
}

func newSettingsSetCommand() *cobra.Command {
	var autoDefine bool
	position := settings.PositionAuto
	command := &cobra.Command{
		Use:  "set",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("auto-define") && !flags.Changed("position") {
				return fmt.Errorf("nothing to set: pass --auto-define or --position")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, s, err := loadSettings(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			if flags.Changed("auto-define") {
				s.AutoDefineEnabled = autoDefine
			}
			if flags.Changed("position") {
				s.PopoverPosition = position
			}
			if err := store.Save(cmd.Context(), s); err != nil {
				return fmt.Errorf("store.Save > %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", store.Path())
			return nil
		},
	}
	command.Flags().BoolVar(&autoDefine, "auto-define", true, "Show definitions automatically when the selection changes")
	command.Flags().Var(&position, "position", fmt.Sprintf("Where the overlay is placed. Possible values are %s, %s", settings.PositionAuto, settings.PositionTopRight))
	return command
}
