package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/amaumene/syncarr/internal/domain"
	"github.com/spf13/cobra"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a snapshot exported by another device",
		Long: `Read a snapshot file and merge it into the local store. Conflicts are
resolved last-write-wins per record; deletions carried as tombstones are
applied when they are newer than the local copy. Importing the same file
twice is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading snapshot: %w", err)
			}

			var payload domain.Payload
			if err := json.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Reconcile.Apply(cmd.Context(), &payload); err != nil {
				if errors.Is(err, domain.ErrUnsupportedSchema) {
					return fmt.Errorf("snapshot was produced by an incompatible version: %w", err)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "snapshot from device %s merged\n", payload.DeviceID)
			return nil
		},
	}
}
