package command

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a snapshot of local state for another device",
		Long: `Build a snapshot payload from the local store and pending tombstones
and write it to a file (or stdout with -o -). Only media referenced by a
favorite, progress entry or list item is included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			payload, err := a.Snapshot.Build(cmd.Context())
			if err != nil {
				return fmt.Errorf("building snapshot: %w", err)
			}

			data, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding snapshot: %w", err)
			}
			data = append(data, '\n')

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "syncarr-snapshot.json", "output file, or - for stdout")
	return cmd
}
