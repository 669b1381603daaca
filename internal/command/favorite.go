package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFavoriteCmd creates the favorite command group.
func NewFavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite",
		Short: "Manage favorites",
	}
	cmd.AddCommand(newFavoriteAddCmd(), newFavoriteRmCmd(), newFavoriteLsCmd())
	return cmd
}

func newFavoriteAddCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "add <movie|show> <id>",
		Short: "Mark a media item as favorite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, id, err := parseMediaRef(args[0], args[1])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Library.SetFavorite(cmd.Context(), t, id, title)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "title used when the media is not cached locally yet")
	return cmd
}

func newFavoriteRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <movie|show> <id>",
		Short: "Remove a favorite (recorded as a tombstone for sync)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, id, err := parseMediaRef(args[0], args[1])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Library.RemoveFavorite(cmd.Context(), t, id)
		},
	}
}

func newFavoriteLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			favorites, err := a.Repos.Media.FindFavorites(cmd.Context())
			if err != nil {
				return err
			}

			for i := range favorites {
				m := &favorites[i]
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d\t%s (%d)\n", m.Type, m.ExternalID, m.Title, m.Year)
			}
			return nil
		},
	}
}
