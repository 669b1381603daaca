package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCmd creates the list command group.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage lists",
	}
	cmd.AddCommand(
		newListCreateCmd(),
		newListRmCmd(),
		newListAddCmd(),
		newListRemoveItemCmd(),
		newListLsCmd(),
		newListItemsCmd(),
	)
	return cmd
}

func newListCreateCmd() *cobra.Command {
	var isDefault bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.Library.CreateList(cmd.Context(), args[0], isDefault)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created list %s (%s)\n", list.Name, list.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&isDefault, "default", false, "mark as the default list")
	return cmd
}

func newListRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name-or-id>",
		Short: "Delete a list and its items (recorded as tombstones for sync)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Library.DeleteList(cmd.Context(), args[0])
		},
	}
}

func newListAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name-or-id> <movie|show> <id>",
		Short: "Add a media item to a list",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, id, err := parseMediaRef(args[1], args[2])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Library.AddListItem(cmd.Context(), args[0], t, id)
		},
	}
}

func newListRemoveItemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name-or-id> <movie|show> <id>",
		Short: "Remove a media item from a list (recorded as a tombstone for sync)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, id, err := parseMediaRef(args[1], args[2])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Library.RemoveListItem(cmd.Context(), args[0], t, id)
		},
	}
}

func newListLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			lists, err := a.Repos.Lists.All(cmd.Context())
			if err != nil {
				return err
			}

			for i := range lists {
				l := &lists[i]
				marker := ""
				if l.IsDefault {
					marker = " (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s%s\n", l.ID, l.Name, marker)
			}
			return nil
		},
	}
}

func newListItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "items <name-or-id>",
		Short: "Show the items of a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			list, err := a.Library.ResolveList(ctx, args[0])
			if err != nil {
				return err
			}
			items, err := a.Repos.ListItems.FindByList(ctx, list.ID)
			if err != nil {
				return err
			}

			for i := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", items[i].Type, items[i].ExternalID)
			}
			return nil
		},
	}
}
