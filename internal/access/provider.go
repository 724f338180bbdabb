// Package access combines the session manager with the permission service into
// the permission context consumed by hosts.
package access

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/erpdesk/sessiond/internal/identity"
	"github.com/erpdesk/sessiond/internal/logger"
	"github.com/erpdesk/sessiond/internal/metrics"
	"github.com/erpdesk/sessiond/internal/permission"
)

// PermissionAPI is the part of the identity client the provider needs.
type PermissionAPI interface {
	UserPermissions(ctx context.Context, userID int64) (*permission.Payload, error)
	UserServiceRoles(ctx context.Context, userID int64) ([]permission.RoleRecord, error)
	PermissionFormat(ctx context.Context) (permission.FormatConfig, error)
}

// Provider keeps the effective permission set of the current identity.
//
// Each identity change starts a new generation. Only the newest generation
// may publish, older computations are cancelled.
type Provider struct {
	api     PermissionAPI
	timeout time.Duration
	log     zerolog.Logger

	format   atomic.Pointer[permission.FormatConfig]
	resolver atomic.Pointer[permission.Resolver]

	mu      sync.Mutex
	gen     uint64
	user    identity.User
	hasUser bool
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewProvider creates a provider. fetchTimeout bounds one computation; 0 disables it.
func NewProvider(api PermissionAPI, fetchTimeout time.Duration) *Provider {
	p := &Provider{
		api:     api,
		timeout: fetchTimeout,
		log:     logger.Component("access"),
		done:    closedChan(),
	}

	def := permission.DefaultFormatConfig()
	p.format.Store(&def)

	return p
}

// Mount loads the permission format config. Failures keep the default config.
// A permission set already published is recomputed under the loaded config.
func (p *Provider) Mount(ctx context.Context) permission.FormatConfig {
	cfg, err := p.api.PermissionFormat(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("permission format unavailable, using default")

		cfg = permission.DefaultFormatConfig()
	}

	p.format.Store(&cfg)
	p.log.Debug().Str("primary", string(cfg.PrimaryFormat)).Bool("compatibility", cfg.Compatibility).Msg("permission format loaded")

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasUser {
		if r := p.resolver.Load(); r != nil {
			p.resolver.Store(permission.NewResolver(r.Set(), cfg, r.IsSuperAdmin()))
		}

		p.startLocked(p.user)
	}

	return cfg
}

// OnIdentity reacts to identity changes. It is keyed on the user id: updates
// that keep the id do not recompute. The network work runs on its own goroutine.
func (p *Provider) OnIdentity(u *identity.User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if u == nil {
		if !p.hasUser {
			return
		}

		p.nextGenLocked()
		p.hasUser = false
		p.user = identity.User{}
		p.resolver.Store(nil)
		release(p.done)

		return
	}

	if p.hasUser && p.user.ID == u.ID {
		p.user = *u
		return
	}

	p.hasUser = true
	p.user = *u
	p.resolver.Store(permission.NewResolver(permission.Fallback(u.ParsedRole()), *p.format.Load(), u.IsSuperAdmin))
	p.startLocked(*u)
}

// Refresh recomputes the permission set of the current identity. The published
// set stays in place until the new one replaces it.
func (p *Provider) Refresh() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.hasUser {
		return ErrNoIdentity
	}

	p.startLocked(p.user)

	return nil
}

// startLocked opens a new generation and computes the set for u in the background.
func (p *Provider) startLocked(u identity.User) {
	gen := p.nextGenLocked()
	format := *p.format.Load()

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)

	if p.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), p.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	p.cancel = cancel
	done := p.done

	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		defer cancel()

		p.compute(ctx, gen, u, format, done)
	}()
}

// nextGenLocked cancels the running computation and opens a new generation.
func (p *Provider) nextGenLocked() uint64 {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	release(p.done)

	p.gen++
	p.done = make(chan struct{})

	return p.gen
}

func (p *Provider) compute(ctx context.Context, gen uint64, u identity.User, format permission.FormatConfig, done chan struct{}) {
	start := time.Now()
	fallback := permission.Fallback(u.ParsedRole())

	set, err := p.fetch(ctx, u.ID, format)

	result := fallback
	outcome := metrics.OutcomeServer

	if err != nil {
		outcome = metrics.OutcomeFallback
		p.log.Warn().Err(err).Int64("user_id", u.ID).Msg("using role fallback permissions")
	} else {
		result = permission.Merge(fallback, set)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen != gen {
		metrics.PermissionComputations.WithLabelValues(metrics.OutcomeSuperseded).Inc()
		p.log.Debug().Int64("user_id", u.ID).Msg("superseded permission result discarded")

		return
	}

	p.resolver.Store(permission.NewResolver(result, format, u.IsSuperAdmin))
	p.cancel = nil
	release(done)

	metrics.PermissionComputations.WithLabelValues(outcome).Inc()
	metrics.PermissionComputeSeconds.Observe(time.Since(start).Seconds())
	p.log.Debug().Int64("user_id", u.ID).Int("permissions", len(result.Permissions)).Str("source", outcome).Msg("permissions computed")
}

// fetch loads permissions and service roles concurrently. A failed roles call
// only drops the roles; a failed permissions call fails the whole fetch.
func (p *Provider) fetch(ctx context.Context, userID int64, format permission.FormatConfig) (permission.Set, error) {
	var (
		payload *permission.Payload
		roles   []permission.RoleRecord
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		payload, err = p.api.UserPermissions(gctx, userID)

		return err //nolint:wrapcheck
	})

	g.Go(func() error {
		var err error

		roles, err = p.api.UserServiceRoles(gctx, userID)
		if err != nil && gctx.Err() == nil {
			p.log.Info().Err(err).Int64("user_id", userID).Msg("service roles unavailable")

			roles, err = nil, nil
		}

		return err //nolint:wrapcheck
	})

	if err := g.Wait(); err != nil {
		return permission.Set{}, fmt.Errorf("%w: %w", ErrPermissionFetchFailed, err)
	}

	set := permission.FromPayload(payload, format)
	set.Roles = roles

	return set, nil
}

// Wait blocks until the current generation published or ctx is done.
func (p *Provider) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the running computation and waits for it.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Loading reports whether a computation for the current identity is still running.
func (p *Provider) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Resolver returns the current snapshot, nil without identity.
func (p *Provider) Resolver() *permission.Resolver {
	return p.resolver.Load()
}

// PermissionFormat returns the active format config.
func (p *Provider) PermissionFormat() permission.FormatConfig {
	return *p.format.Load()
}

// HasPermission checks module/action against the current snapshot.
func (p *Provider) HasPermission(module, action string) bool {
	r := p.resolver.Load()
	return r != nil && r.HasPermission(module, action)
}

// HasAnyPermission is true when at least one permission is granted.
func (p *Provider) HasAnyPermission(perms ...string) bool {
	r := p.resolver.Load()
	return r != nil && r.HasAnyPermission(perms...)
}

// HasAllPermissions is true when every permission is granted.
func (p *Provider) HasAllPermissions(perms ...string) bool {
	r := p.resolver.Load()
	return r != nil && r.HasAllPermissions(perms...)
}

// IsSuperAdmin reports the super-admin flag of the current snapshot.
func (p *Provider) IsSuperAdmin() bool {
	r := p.resolver.Load()
	return r != nil && r.IsSuperAdmin()
}

// release closes c unless it is already closed. Callers hold p.mu.
func release(c chan struct{}) {
	select {
	case <-c:
	default:
		close(c)
	}
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)

	return c
}
