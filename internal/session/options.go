package session

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/erpdesk/sessiond/internal/config"
	"github.com/erpdesk/sessiond/internal/identity"
	"github.com/erpdesk/sessiond/internal/retry"
	"github.com/erpdesk/sessiond/internal/tokenstore"
)

// IdentityAPI is the part of the identity client the manager needs.
type IdentityAPI interface {
	CurrentUser(ctx context.Context) (*identity.User, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// LogoutAPI is implemented by identity clients that can revoke a session server side.
type LogoutAPI interface {
	Logout(ctx context.Context) error
}

// Tokens is the persistent session storage.
type Tokens interface {
	AccessToken() (string, error)
	RefreshToken() (string, error)
	SetTokens(access, refresh string) error
	Persist(c tokenstore.Credentials) error
	Purge() error
	StashReturnURL(url string, form map[string]string) error
	ConsumeReturnURL() (string, map[string]string, error)
}

// Options configures a Manager.
type Options struct {
	LoginPath         string
	LandingPath       string
	PasswordResetPath string

	// BootstrapTimeout bounds Bootstrap; 0 disables the guard.
	BootstrapTimeout time.Duration
	// RefreshTimeout bounds a single token refresh; 0 leaves it to the transport.
	RefreshTimeout time.Duration
	// LogoutTimeout bounds the best-effort server logout.
	LogoutTimeout time.Duration

	MaxAttempts int
	BaseBackoff time.Duration
	// Sleep overrides the backoff wait, mainly for tests.
	Sleep retry.SleepFunc

	Navigator    Navigator
	Notifier     Notifier
	FormRestorer FormRestorer
	Lifecycle    *Lifecycle
}

// OptionsFromConfig maps the session config section onto Options.
func OptionsFromConfig(cfg config.Session) Options {
	return Options{
		LoginPath:         cfg.LoginPath,
		LandingPath:       cfg.LandingPath,
		PasswordResetPath: cfg.PasswordResetPath,
		BootstrapTimeout:  cfg.BootstrapTimeout,
		RefreshTimeout:    cfg.RefreshTimeout,
		MaxAttempts:       cfg.MaxAttempts,
		BaseBackoff:       cfg.BaseBackoff,
	}
}

func (o Options) withDefaults() Options {
	if o.LoginPath == "" {
		o.LoginPath = "/login"
	}

	if o.LandingPath == "" {
		o.LandingPath = "/dashboard"
	}

	if o.MaxAttempts < 1 {
		o.MaxAttempts = 3
	}

	if o.BaseBackoff <= 0 {
		o.BaseBackoff = time.Second
	}

	if o.LogoutTimeout <= 0 {
		o.LogoutTimeout = 5 * time.Second
	}

	if o.Navigator == nil {
		o.Navigator = NewMemoryNavigator(o.LoginPath)
	}

	if o.Notifier == nil {
		o.Notifier = LogNotifier{}
	}

	if o.Lifecycle == nil {
		o.Lifecycle = NewLifecycle()
	}

	return o
}
