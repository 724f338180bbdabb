// Package app implements the main application commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/erpdesk/sessiond/internal/config"
	"github.com/erpdesk/sessiond/internal/daemon"
	"github.com/erpdesk/sessiond/internal/logger"
)

const commandTimeout = time.Minute

var (
	configPath string // Directory of main.toml
	devMode    bool

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "sessiond",
		Short: "sessiond keeps an authenticated ERP session and answers permission checks",
		Long: `sessiond restores and maintains an authenticated session against the ERP
identity API, computes the effective permissions of the signed in user and
exposes both through a small JSON status API and this command line.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error

			if cfg, err = config.ReadConfig(configPath); err != nil {
				return fmt.Errorf("read config %s: %w", configPath, err)
			}

			if devMode {
				cfg.DevMode = true
			}

			return logger.Init(cfg.Log) //nolint:wrapcheck
		},
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Directory holding main.toml")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable dev mode")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// withDaemon builds the session core for a one shot command and releases it afterwards.
func withDaemon(cmd *cobra.Command, fn func(ctx context.Context, d *daemon.Daemon) error) error {
	d, err := daemon.New(&cfg)
	if err != nil {
		return err //nolint:wrapcheck
	}

	defer func() { _ = d.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	return fn(ctx, d)
}
