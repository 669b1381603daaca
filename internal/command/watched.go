package command

import (
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	"github.com/spf13/cobra"
)

// NewWatchedCmd creates the watched command group for playback progress.
func NewWatchedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watched",
		Short: "Manage watch progress",
	}
	cmd.AddCommand(newWatchedSetCmd(), newWatchedClearCmd(), newWatchedLsCmd())
	return cmd
}

func newWatchedSetCmd() *cobra.Command {
	var (
		position  int64
		duration  int64
		season    int64
		episode   int64
		completed bool
	)

	cmd := &cobra.Command{
		Use:   "set <movie|show> <id>",
		Short: "Record a playback position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, id, err := parseMediaRef(args[0], args[1])
			if err != nil {
				return err
			}

			progress := &domain.Progress{
				ExternalID: id,
				Type:       t,
				Position:   position,
				Duration:   duration,
				Completed:  completed,
			}
			if cmd.Flags().Changed("season") {
				progress.Season = &season
			}
			if cmd.Flags().Changed("episode") {
				progress.Episode = &episode
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Library.SaveProgress(cmd.Context(), progress)
		},
	}

	cmd.Flags().Int64Var(&position, "position", 0, "playback position in seconds")
	cmd.Flags().Int64Var(&duration, "duration", 0, "media duration in seconds")
	cmd.Flags().Int64Var(&season, "season", 0, "season number (shows)")
	cmd.Flags().Int64Var(&episode, "episode", 0, "episode number (shows)")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark as watched to completion")
	return cmd
}

func newWatchedClearCmd() *cobra.Command {
	var (
		season  int64
		episode int64
	)

	cmd := &cobra.Command{
		Use:   "clear <movie|show> <id>",
		Short: "Remove a progress entry (recorded as a tombstone for sync)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, id, err := parseMediaRef(args[0], args[1])
			if err != nil {
				return err
			}

			var seasonPtr, episodePtr *int64
			if cmd.Flags().Changed("season") {
				seasonPtr = &season
			}
			if cmd.Flags().Changed("episode") {
				episodePtr = &episode
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Library.ClearProgress(cmd.Context(), t, id, seasonPtr, episodePtr)
		},
	}

	cmd.Flags().Int64Var(&season, "season", 0, "season number (shows)")
	cmd.Flags().Int64Var(&episode, "episode", 0, "episode number (shows)")
	return cmd
}

func newWatchedLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List progress entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Repos.Progress.All(cmd.Context())
			if err != nil {
				return err
			}

			for i := range entries {
				p := &entries[i]
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d/%ds\tcompleted=%t\n", p.Key(), p.Position, p.Duration, p.Completed)
			}
			return nil
		},
	}
}
