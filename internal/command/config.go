package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command group for synced preferences.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage synced preferences",
	}
	cmd.AddCommand(newConfigThemeCmd(), newConfigLanguageCmd(), newConfigShowCmd())
	return cmd
}

func newConfigThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "theme <dark|light|system>",
		Short: "Set the theme mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Library.SetTheme(cmd.Context(), args[0])
		},
	}
}

func newConfigLanguageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "language <tag|system>",
		Short: "Set the display language (BCP 47 tag, or system to follow the locale)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Library.SetLanguage(cmd.Context(), args[0])
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			settings, err := a.Repos.Settings.Load(cmd.Context())
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
