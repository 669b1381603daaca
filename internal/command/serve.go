package command

import (
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP surface and snapshot scheduler",
		Long: `Start the HTTP endpoints (/export, /import, /status, /health) used by a
companion UI, and the periodic snapshot backup scheduler. Runs until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
}
