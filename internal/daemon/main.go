// Package daemon wires the session core together and runs it.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/erpdesk/sessiond/internal/access"
	"github.com/erpdesk/sessiond/internal/config"
	"github.com/erpdesk/sessiond/internal/identity"
	"github.com/erpdesk/sessiond/internal/session"
	"github.com/erpdesk/sessiond/internal/tokenstore"
	"github.com/erpdesk/sessiond/internal/web"
)

const sweepInterval = 10 * time.Minute

// ErrConfigNil is returned by New without config.
var ErrConfigNil = errors.New("config is nil")

// Daemon owns the token store, the identity client and the session core.
type Daemon struct {
	cfg    *config.Config
	store  *tokenstore.Store
	client *identity.Client
	access *access.Context
}

// New opens the token store and builds the session core. Nothing touches the
// network until Bootstrap.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	backend, err := tokenstore.OpenBackend(cfg.TokenStore, cfg.DevMode)
	if err != nil {
		return nil, fmt.Errorf("token store: %w", err)
	}

	store := tokenstore.New(backend)
	client := identity.New(cfg.API, store)

	opts := session.OptionsFromConfig(cfg.Session)
	opts.Navigator = session.NewMemoryNavigator(cfg.Session.LoginPath)

	m := session.NewManager(client, store, opts)
	perms := access.NewProvider(client, cfg.Permission.FetchTimeout)

	return &Daemon{
		cfg:    cfg,
		store:  store,
		client: client,
		access: access.NewContext(m, perms, client),
	}, nil
}

// Access returns the permission context.
func (d *Daemon) Access() *access.Context {
	return d.access
}

// Bootstrap loads the permission format and restores the stored session.
func (d *Daemon) Bootstrap(ctx context.Context) error {
	d.access.Permissions().Mount(ctx)

	return d.access.Session().Bootstrap(ctx) //nolint:wrapcheck
}

// Start bootstraps the session and serves the status API until SIGINT or SIGTERM.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.Bootstrap(ctx); err != nil {
		log.Warn().Err(err).Msg("no session restored")
	}

	if !d.cfg.Webserver.Enabled {
		log.Info().Msg("webserver disabled, nothing to serve")
		return nil
	}

	svc, err := web.New(d.cfg, d.access)
	if err != nil {
		return fmt.Errorf("web: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + strconv.Itoa(d.cfg.Webserver.Port)
		log.Info().Str("addr", addr).Str("url", d.cfg.Webserver.URL).Msg("status api listening")

		defer cancel()

		return svc.Start(addr)
	})

	g.Go(func() error {
		d.sweep(gctx)
		return nil
	})

	g.Go(func() error {
		svc.WaitShutdown(gctx)
		cancel()

		return nil
	})

	return g.Wait() //nolint:wrapcheck
}

// sweep removes expired token store entries until ctx is done.
func (d *Daemon) sweep(ctx context.Context) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := d.store.Sweep()
			if err != nil {
				log.Warn().Err(err).Msg("token store sweep failed")
				continue
			}

			if n > 0 {
				log.Debug().Int64("removed", n).Msg("token store swept")
			}
		}
	}
}

// Close stops pending permission work and releases the token store.
func (d *Daemon) Close() error {
	d.access.Close()

	return d.store.Close() //nolint:wrapcheck
}
