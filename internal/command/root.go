// Package command wires the syncarr CLI.
package command

import (
	"fmt"
	"strconv"

	"github.com/amaumene/syncarr/internal/app"
	"github.com/amaumene/syncarr/internal/domain"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "syncarr",
		Short:        "Offline-first media library with snapshot-based device sync",
		Long: `syncarr keeps a local store of favorites, watch progress, lists and
preferences, and reconciles two installations by exchanging snapshot
files. Exports and imports are last-write-wins merges: deletions
propagate via tombstones and lists are matched across devices by name.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		NewExportCmd(),
		NewImportCmd(),
		NewServeCmd(),
		NewStatusCmd(),
		NewFavoriteCmd(),
		NewWatchedCmd(),
		NewListCmd(),
		NewConfigCmd(),
	)
	return cmd
}

func openApp() (*app.App, error) {
	a, err := app.New()
	if err != nil {
		return nil, fmt.Errorf("starting syncarr: %w", err)
	}
	return a, nil
}

func parseMediaRef(typeArg, idArg string) (domain.MediaType, int64, error) {
	t, err := domain.ParseMediaType(typeArg)
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("invalid media id %q", idArg)
	}
	return t, id, nil
}
