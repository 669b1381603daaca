package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync bookkeeping and collection counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			deviceID, err := a.Repos.Meta.DeviceID(ctx)
			if err != nil {
				return err
			}
			info, err := a.Repos.Meta.Info(ctx)
			if err != nil {
				return err
			}
			medias, err := a.Repos.Media.All(ctx)
			if err != nil {
				return err
			}
			favorites, err := a.Repos.Media.FindFavorites(ctx)
			if err != nil {
				return err
			}
			progress, err := a.Repos.Progress.All(ctx)
			if err != nil {
				return err
			}
			lists, err := a.Repos.Lists.All(ctx)
			if err != nil {
				return err
			}
			items, err := a.Repos.ListItems.All(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "device:        %s\n", deviceID)
			fmt.Fprintf(out, "last export:   %s\n", formatTimestamp(info.LastExportedAt))
			fmt.Fprintf(out, "last import:   %s\n", formatTimestamp(info.LastImportedAt))
			if info.ImportCheckpoint != "" {
				fmt.Fprintf(out, "warning:       previous import stopped after %q; re-import the same file to finish\n", info.ImportCheckpoint)
			}
			fmt.Fprintf(out, "media:         %d\n", len(medias))
			fmt.Fprintf(out, "favorites:     %d\n", len(favorites))
			fmt.Fprintf(out, "progress:      %d\n", len(progress))
			fmt.Fprintf(out, "lists:         %d\n", len(lists))
			fmt.Fprintf(out, "list items:    %d\n", len(items))
			return nil
		},
	}
}

func formatTimestamp(ts int64) string {
	if ts == 0 {
		return "never"
	}
	return time.UnixMilli(ts).UTC().Format(time.RFC3339)
}
