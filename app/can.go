package app

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/erpdesk/sessiond/internal/daemon"
)

// ErrDenied is returned when the checked permission is not granted.
var ErrDenied = errors.New("permission denied")

var canCmd = &cobra.Command{
	Use:   "can <module> <action>",
	Short: "Check whether the signed in user holds a permission",
	Example: `  sessiond can sales view
  sessiond can crm.commission update`,
	Args: cobra.ExactArgs(2), //nolint:mnd
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
			if _, err := restore(ctx, d); err != nil {
				return err
			}

			if err := d.Access().Permissions().Wait(ctx); err != nil {
				return err //nolint:wrapcheck
			}

			if !d.Access().HasPermission(args[0], args[1]) {
				cmd.Println("denied")
				return ErrDenied
			}

			cmd.Println("allowed")

			return nil
		})
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(canCmd)
}
