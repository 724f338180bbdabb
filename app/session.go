package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erpdesk/sessiond/internal/daemon"
	"github.com/erpdesk/sessiond/internal/identity"
)

// EnvPassword is read when --password is not given.
const EnvPassword = "SESSIOND_PASSWORD"

// ErrNotSignedIn is returned by commands that need a stored session.
var ErrNotSignedIn = errors.New("not signed in")

var (
	loginEmail    string
	loginPassword string

	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := loginPassword
			if password == "" {
				password = os.Getenv(EnvPassword)
			}

			return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
				u, err := d.Access().LoginWithCredentials(ctx, identity.Credentials{Email: loginEmail, Password: password})
				if err != nil {
					return err //nolint:wrapcheck
				}

				cmd.Printf("signed in as %s (%s)\n", u.DisplayName(), u.Role)

				if u.MustChangePassword {
					cmd.Println("a password change is required before continuing")
				}

				return nil
			})
		},
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the stored session tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
				if err := d.Bootstrap(ctx); err != nil {
					cmd.PrintErrf("session could not be restored: %v\n", err)
				}

				if err := d.Access().Logout(ctx); err != nil {
					return err //nolint:wrapcheck
				}

				cmd.Println("signed out")

				return nil
			})
		},
	}

	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity of the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
				u, err := restore(ctx, d)
				if err != nil {
					return err
				}

				org := "-"
				if u.OrganizationID != nil {
					org = fmt.Sprint(*u.OrganizationID)
				}

				cmd.Printf("id:           %d\n", u.ID)
				cmd.Printf("name:         %s\n", u.DisplayName())
				cmd.Printf("email:        %s\n", u.Email)
				cmd.Printf("role:         %s\n", u.Role)
				cmd.Printf("super admin:  %t\n", u.IsSuperAdmin)
				cmd.Printf("organization: %s\n", org)

				return nil
			})
		},
	}
)

func init() { //nolint: gochecknoinits
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (default $"+EnvPassword+")")
	_ = loginCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

// restore bootstraps the stored session and returns its identity.
func restore(ctx context.Context, d *daemon.Daemon) (*identity.User, error) {
	if err := d.Bootstrap(ctx); err != nil {
		return nil, err //nolint:wrapcheck
	}

	u := d.Access().User()
	if u == nil {
		return nil, ErrNotSignedIn
	}

	return u, nil
}
