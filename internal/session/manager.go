// Package session implements the authentication session state machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/erpdesk/sessiond/internal/identity"
	"github.com/erpdesk/sessiond/internal/logger"
	"github.com/erpdesk/sessiond/internal/metrics"
	"github.com/erpdesk/sessiond/internal/retry"
	"github.com/erpdesk/sessiond/internal/tokenstore"
)

// Listener observes identity changes. user is nil once the identity is cleared.
// Listeners run synchronously on the goroutine that changed the identity.
type Listener func(user *identity.User)

// Manager owns the session lifecycle and the current identity.
//
// Every login, logout and bootstrap timeout starts a new epoch. Results of
// work started under an older epoch are discarded, and token writes that
// depend on the epoch happen under mu.
type Manager struct {
	api    IdentityAPI
	tokens Tokens
	opts   Options
	log    zerolog.Logger

	inFlight atomic.Bool

	mu      sync.RWMutex
	state   State
	user    *identity.User
	lastErr error
	epoch   uint64

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int
}

// NewManager creates an idle manager.
func NewManager(api IdentityAPI, tokens Tokens, opts Options) *Manager {
	return &Manager{
		api:       api,
		tokens:    tokens,
		opts:      opts.withDefaults(),
		log:       logger.Component("session"),
		listeners: make(map[int]Listener),
	}
}

// Bootstrap restores the session from the token store.
// It returns nil when there is no token and the classified failure when the session could not be established.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.opts.Lifecycle.Reset()

	token, err := m.storedToken()
	if err != nil || token == "" {
		return err
	}

	if exp, ok := tokenstore.Expiry(token); ok && time.Now().After(exp) {
		m.log.Info().Time("exp", exp).Msg("stored access token looks expired, asking the server")
	}

	m.mu.Lock()
	m.setStateLocked(StateBootstrapping)
	m.lastErr = nil
	epoch := m.epoch
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if m.opts.BootstrapTimeout > 0 {
		timer := time.AfterFunc(m.opts.BootstrapTimeout, func() { m.onTimeout(epoch, cancel) })
		defer timer.Stop()
	}

	err = m.fetch(ctx, epoch)
	if errors.Is(err, errStale) {
		return m.LastError()
	}

	return err
}

// RefreshUser re-fetches the current identity. A call while another fetch is in flight is dropped.
// Without a stored access token the session settles as unauthenticated without a network call.
func (m *Manager) RefreshUser(ctx context.Context) error {
	if token, err := m.storedToken(); err != nil || token == "" {
		return err
	}

	m.mu.RLock()
	epoch := m.epoch
	m.mu.RUnlock()

	err := m.fetch(ctx, epoch)
	if errors.Is(err, errStale) {
		return nil
	}

	return err
}

// Login establishes a session from a server issued login payload.
// The payload is validated before anything is persisted; a rejected payload leaves the store untouched.
func (m *Manager) Login(ctx context.Context, p *identity.LoginPayload) error {
	if p == nil {
		return fmt.Errorf("%w: empty login payload", ErrNoToken)
	}

	if err := p.Validate(); err != nil {
		return fmt.Errorf("login rejected: %w", err)
	}

	if !tokenstore.WellFormed(p.AccessToken) {
		return fmt.Errorf("login rejected: %w", ErrInvalidTokenFormat)
	}

	u := p.Identity()

	m.mu.Lock()

	err := m.tokens.Persist(tokenstore.Credentials{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		Role:         p.Role(),
		IsSuperAdmin: u.IsSuperAdmin,
	})
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persist login: %w", err)
	}

	m.epoch++
	epoch := m.epoch
	m.user = &u
	m.lastErr = nil
	m.setStateLocked(StateAuthenticated)
	m.mu.Unlock()

	m.log.Info().Int64("user_id", u.ID).Str("role", u.Role).Msg("logged in")
	metrics.Authenticated.Set(1)
	m.opts.Lifecycle.MarkReady()
	m.identityChanged(&u, false)

	err = m.fetch(ctx, epoch)

	switch {
	case errors.Is(err, errStale):
		return nil
	case err != nil:
		return fmt.Errorf("session verification: %w", err)
	}

	m.mu.RLock()
	current := m.epoch == epoch && m.state == StateAuthenticated
	m.mu.RUnlock()

	if current && !u.MustChangePassword && m.onLoginScreen() {
		m.redirectAfterLogin()
	}

	return nil
}

// Logout ends the session locally and, best effort, on the server.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.epoch++
	had := m.user != nil
	m.setStateLocked(StateLoggingOut)
	m.mu.Unlock()

	if api, ok := m.api.(LogoutAPI); ok && had {
		lctx, cancel := context.WithTimeout(ctx, m.opts.LogoutTimeout)
		if err := api.Logout(lctx); err != nil {
			m.log.Info().Err(err).Msg("server logout failed, continuing locally")
		}

		cancel()
	}

	m.mu.Lock()
	err := m.tokens.Purge()
	m.user = nil
	m.lastErr = nil
	m.setStateLocked(StateUnauthenticated)
	m.mu.Unlock()

	m.log.Info().Msg("logged out")
	metrics.Authenticated.Set(0)
	m.opts.Lifecycle.MarkReady()
	m.emit(nil)

	if !m.onLoginScreen() {
		m.opts.Navigator.Navigate(m.opts.LoginPath)
	}

	if err != nil {
		return fmt.Errorf("purge tokens: %w", err)
	}

	return nil
}

// UpdateUser merges patch into the current identity.
func (m *Manager) UpdateUser(patch identity.Patch) (*identity.User, error) {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return nil, ErrNoIdentity
	}

	u := patch.Apply(*m.user)
	m.user = &u
	m.mu.Unlock()

	m.identityChanged(&u, false)

	out := u

	return &out, nil
}

// AuthHeaders returns the headers for an authenticated API call.
// Without a stored token only the content type is set.
func (m *Manager) AuthHeaders() (map[string]string, error) {
	headers := map[string]string{"Content-Type": "application/json"}

	access, err := m.tokens.AccessToken()
	if err != nil {
		return headers, fmt.Errorf("read access token: %w", err)
	}

	if access == "" {
		return headers, nil
	}

	tok := oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	headers["Authorization"] = tok.Type() + " " + tok.AccessToken

	return headers, nil
}

// StashReturnURL records where the next successful login should lead.
func (m *Manager) StashReturnURL(url string, form map[string]string) error {
	return m.tokens.StashReturnURL(url, form)
}

// Subscribe registers l for identity changes and returns its removal func.
func (m *Manager) Subscribe(l Listener) func() {
	m.listenersMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.listenersMu.Unlock()

	return func() {
		m.listenersMu.Lock()
		delete(m.listeners, id)
		m.listenersMu.Unlock()
	}
}

// User returns a copy of the current identity, nil when unauthenticated.
func (m *Manager) User() *identity.User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil {
		return nil
	}

	u := *m.user

	return &u
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state
}

// LastError returns the cause of the last failed bootstrap or fetch.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastErr
}

// Loading reports whether the session is still settling.
func (m *Manager) Loading() bool {
	return !m.opts.Lifecycle.Ready()
}

// Lifecycle returns the ready signal shared with the host.
func (m *Manager) Lifecycle() *Lifecycle {
	return m.opts.Lifecycle
}

// Location returns the current location of the navigator.
func (m *Manager) Location() string {
	return m.opts.Navigator.Location()
}

// fetch runs the identity fetch under the retry policy. It is single-flight:
// a call while another is running returns nil without touching the network.
func (m *Manager) fetch(ctx context.Context, epoch uint64) error {
	if !m.inFlight.CompareAndSwap(false, true) {
		m.log.Debug().Msg("identity fetch already in flight, dropped")
		return nil
	}
	defer m.inFlight.Store(false)

	var user *identity.User

	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: m.opts.MaxAttempts,
		Backoff:     retry.Exponential(m.opts.BaseBackoff),
		Classify:    m.classifier(epoch),
		Sleep:       m.opts.Sleep,
	}, func(ctx context.Context, attempt int) error {
		u, err := m.api.CurrentUser(ctx)
		if err == nil {
			err = u.Validate()
		}

		metrics.IdentityFetches.WithLabelValues(outcome(err)).Inc()

		if err != nil {
			m.log.Debug().Err(err).Int("attempt", attempt+1).Msg("identity fetch failed")
			return err
		}

		user = u

		return nil
	})
	if err != nil {
		return m.fail(epoch, classify(err))
	}

	return m.apply(epoch, *user)
}

func (m *Manager) classifier(epoch uint64) retry.ClassifyFunc {
	return func(ctx context.Context, err error, attempt int) retry.Decision {
		switch {
		case ctx.Err() != nil, errors.Is(err, ErrOrganizationContextMissing):
			return retry.Stop
		case identity.IsAuthRejected(err):
			if attempt > 0 {
				return retry.Stop
			}

			if rerr := m.refresh(ctx, epoch); rerr != nil {
				m.log.Info().Err(rerr).Msg("token refresh failed")
				return retry.Stop
			}

			return retry.Immediately
		default:
			return retry.Backoff
		}
	}
}

// refresh exchanges the stored refresh token and stores the new pair if epoch is still current.
func (m *Manager) refresh(ctx context.Context, epoch uint64) error {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return errStale
	}

	prev := m.state
	m.setStateLocked(StateRefreshingToken)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		if m.epoch == epoch && m.state == StateRefreshingToken {
			m.setStateLocked(prev)
		}
		m.mu.Unlock()
	}()

	refreshToken, err := m.tokens.RefreshToken()
	if err != nil {
		return fmt.Errorf("read refresh token: %w", err)
	}

	if refreshToken == "" {
		metrics.TokenRefreshes.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return identity.ErrNoRefreshToken
	}

	if m.opts.RefreshTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, m.opts.RefreshTimeout)
		defer cancel()
	}

	tok, err := m.api.Refresh(ctx, refreshToken)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues(outcome(err)).Inc()
		return err //nolint:wrapcheck
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.epoch != epoch {
		return errStale
	}

	if err = m.tokens.SetTokens(tok.AccessToken, tok.RefreshToken); err != nil {
		return fmt.Errorf("store refreshed tokens: %w", err)
	}

	metrics.TokenRefreshes.WithLabelValues(metrics.OutcomeSuccess).Inc()
	m.log.Debug().Msg("access token refreshed")

	return nil
}

func (m *Manager) apply(epoch uint64, u identity.User) error {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		m.log.Debug().Int64("user_id", u.ID).Msg("stale identity discarded")

		return errStale
	}

	m.user = &u
	m.lastErr = nil
	m.setStateLocked(StateAuthenticated)
	m.mu.Unlock()

	metrics.Authenticated.Set(1)
	m.opts.Lifecycle.MarkReady()
	m.identityChanged(&u, true)

	return nil
}

// fail tears the session down after a terminal fetch failure.
func (m *Manager) fail(epoch uint64, cause error) error {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return errStale
	}

	had := m.user != nil
	m.user = nil
	m.lastErr = cause
	m.setStateLocked(StateUnauthenticated)
	m.purgeLocked()
	m.mu.Unlock()

	m.log.Warn().Err(cause).Msg("session could not be established")
	metrics.Authenticated.Set(0)
	m.opts.Lifecycle.MarkReady()
	m.notify(NotifyAuthFailure, "Your session has ended. Please sign in again.", cause)

	if had {
		m.emit(nil)
	}

	if !m.onLoginScreen() {
		if loc := m.opts.Navigator.Location(); loc != "" {
			if err := m.tokens.StashReturnURL(loc, nil); err != nil {
				m.log.Warn().Err(err).Msg("could not stash return location")
			}
		}

		m.opts.Navigator.Navigate(m.opts.LoginPath)
	}

	return cause
}

func (m *Manager) onTimeout(epoch uint64, cancel context.CancelFunc) {
	m.mu.Lock()
	if m.epoch != epoch || !m.state.busy() {
		m.mu.Unlock()
		return
	}

	m.epoch++
	m.lastErr = ErrTimeout
	m.setStateLocked(StateUnauthenticated)
	m.mu.Unlock()

	m.log.Warn().Dur("after", m.opts.BootstrapTimeout).Msg("session bootstrap timed out")
	m.opts.Lifecycle.MarkReady()
	m.notify(NotifyTimeout, "Signing in is taking longer than expected.", ErrTimeout)
	cancel()
}

// storedToken returns the stored access token when it is usable. Otherwise the
// session is settled as unauthenticated and the token is empty: a missing token
// is an expected state, a malformed one is purged and reported.
func (m *Manager) storedToken() (string, error) {
	token, err := m.tokens.AccessToken()
	if err != nil {
		m.settle(StateUnauthenticated, err)
		return "", fmt.Errorf("read access token: %w", err)
	}

	if token == "" {
		m.log.Debug().Msg("no stored access token")
		m.settle(StateUnauthenticated, nil)

		return "", nil
	}

	if !tokenstore.WellFormed(token) {
		m.log.Warn().Msg("stored access token is malformed, purging")

		m.mu.Lock()
		m.purgeLocked()
		m.mu.Unlock()

		m.settle(StateUnauthenticated, ErrInvalidTokenFormat)
		m.notify(NotifyAuthFailure, "Your session is invalid. Please sign in again.", ErrInvalidTokenFormat)

		return "", ErrInvalidTokenFormat
	}

	return token, nil
}

// settle ends the session without an identity. Listeners learn about a cleared identity.
func (m *Manager) settle(state State, cause error) {
	m.mu.Lock()
	had := m.user != nil
	m.user = nil
	m.lastErr = cause
	m.setStateLocked(state)
	m.mu.Unlock()

	metrics.Authenticated.Set(0)
	m.opts.Lifecycle.MarkReady()

	if had {
		m.emit(nil)
	}
}

// identityChanged notifies listeners, then enforces the password change and,
// when asked to, leaves the login screen.
func (m *Manager) identityChanged(u *identity.User, redirect bool) {
	m.emit(u)

	if m.enforcePasswordChange(*u) {
		return
	}

	if redirect && m.onLoginScreen() {
		m.redirectAfterLogin()
	}
}

func (m *Manager) enforcePasswordChange(u identity.User) bool {
	if !u.MustChangePassword || m.opts.PasswordResetPath == "" {
		return false
	}

	if !samePath(m.opts.Navigator.Location(), m.opts.PasswordResetPath) {
		m.log.Info().Int64("user_id", u.ID).Msg("password change required")
		m.opts.Navigator.Navigate(m.opts.PasswordResetPath)
	}

	return true
}

func (m *Manager) redirectAfterLogin() {
	url, form, err := m.tokens.ConsumeReturnURL()
	if err != nil {
		m.log.Warn().Err(err).Msg("could not read return location")

		url = ""
	}

	if url == "" || samePath(url, m.opts.LoginPath) {
		m.opts.Navigator.Navigate(m.opts.LandingPath)
		return
	}

	m.opts.Navigator.Navigate(url)

	if len(form) == 0 || m.opts.FormRestorer == nil {
		return
	}

	if err = m.opts.FormRestorer.RestoreForm(url, form); err != nil {
		m.log.Info().Err(err).Str("url", url).Msg("form values could not be restored")
	}
}

func (m *Manager) emit(u *identity.User) {
	m.listenersMu.RLock()
	ls := make([]Listener, 0, len(m.listeners))

	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	m.listenersMu.RUnlock()

	for _, l := range ls {
		if u == nil {
			l(nil)
			continue
		}

		cp := *u
		l(&cp)
	}
}

func (m *Manager) notify(kind NotificationKind, msg string, err error) {
	m.opts.Notifier.Notify(Notification{Kind: kind, Message: msg, Err: err})
}

func (m *Manager) purgeLocked() {
	if err := m.tokens.Purge(); err != nil {
		m.log.Error().Err(err).Msg("could not purge tokens")
	}
}

func (m *Manager) onLoginScreen() bool {
	return samePath(m.opts.Navigator.Location(), m.opts.LoginPath)
}

func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}

	m.log.Debug().Stringer("from", m.state).Stringer("to", s).Msg("session transition")
	m.state = s
	metrics.SessionTransitions.WithLabelValues(s.String()).Inc()
}

// samePath compares two locations ignoring query and trailing slash.
func samePath(a, b string) bool {
	return trimLocation(a) == trimLocation(b)
}

func trimLocation(loc string) string {
	if i := strings.IndexAny(loc, "?#"); i >= 0 {
		loc = loc[:i]
	}

	if len(loc) > 1 {
		loc = strings.TrimRight(loc, "/")
	}

	return loc
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case identity.IsAuthRejected(err):
		return metrics.OutcomeAuthRejected
	case errors.Is(err, ErrOrganizationContextMissing):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
