package access

import (
	"context"
	"fmt"

	"github.com/erpdesk/sessiond/internal/identity"
	"github.com/erpdesk/sessiond/internal/permission"
	"github.com/erpdesk/sessiond/internal/session"
)

// Authenticator exchanges credentials for a login payload.
type Authenticator interface {
	Login(ctx context.Context, creds identity.Credentials) (*identity.LoginPayload, error)
}

// Context is the outbound interface of the session core: identity, session
// actions and permission queries in one place.
type Context struct {
	session     *session.Manager
	perms       *Provider
	auth        Authenticator
	unsubscribe func()
}

// NewContext wires perms to the identity changes of m. auth may be nil.
func NewContext(m *session.Manager, perms *Provider, auth Authenticator) *Context {
	return &Context{
		session:     m,
		perms:       perms,
		auth:        auth,
		unsubscribe: m.Subscribe(perms.OnIdentity),
	}
}

// Close detaches the provider and stops its pending work.
func (c *Context) Close() {
	c.unsubscribe()
	c.perms.Close()
}

// Session returns the session manager.
func (c *Context) Session() *session.Manager { return c.session }

// Permissions returns the permission provider.
func (c *Context) Permissions() *Provider { return c.perms }

// User returns a copy of the current identity, nil when signed out.
func (c *Context) User() *identity.User { return c.session.User() }

// State returns the session state.
func (c *Context) State() session.State { return c.session.State() }

// Loading reports whether the session bootstrap is still settling.
func (c *Context) Loading() bool { return c.session.Loading() }

// PermissionsLoading reports whether the permission set is still being computed.
func (c *Context) PermissionsLoading() bool { return c.perms.Loading() }

// Login establishes the session from a login payload.
func (c *Context) Login(ctx context.Context, p *identity.LoginPayload) error {
	return c.session.Login(ctx, p)
}

// LoginWithCredentials posts creds to the login endpoint and establishes the session.
func (c *Context) LoginWithCredentials(ctx context.Context, creds identity.Credentials) (*identity.User, error) {
	if c.auth == nil {
		return nil, ErrNoAuthenticator
	}

	payload, err := c.auth.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if err = c.session.Login(ctx, payload); err != nil {
		return nil, err
	}

	return c.session.User(), nil
}

// Logout ends the session.
func (c *Context) Logout(ctx context.Context) error { return c.session.Logout(ctx) }

// RefreshUser re-fetches the current identity.
func (c *Context) RefreshUser(ctx context.Context) error { return c.session.RefreshUser(ctx) }

// RefreshPermissions recomputes the permission set of the current identity.
func (c *Context) RefreshPermissions() error { return c.perms.Refresh() }

// UpdateUser merges patch into the current identity.
func (c *Context) UpdateUser(patch identity.Patch) (*identity.User, error) {
	return c.session.UpdateUser(patch)
}

// AuthHeaders returns the headers for authenticated API calls.
func (c *Context) AuthHeaders() (map[string]string, error) { return c.session.AuthHeaders() }

// HasPermission checks module and action.
func (c *Context) HasPermission(module, action string) bool {
	return c.perms.HasPermission(module, action)
}

// HasAnyPermission is true when at least one of perms is granted.
func (c *Context) HasAnyPermission(perms ...string) bool { return c.perms.HasAnyPermission(perms...) }

// HasAllPermissions is true when every one of perms is granted.
func (c *Context) HasAllPermissions(perms ...string) bool { return c.perms.HasAllPermissions(perms...) }

// IsSuperAdmin uses the identity flag, so it is correct before permissions settle.
func (c *Context) IsSuperAdmin() bool {
	u := c.session.User()
	return u != nil && u.IsSuperAdmin
}

// PermissionFormat returns the active permission format config.
func (c *Context) PermissionFormat() permission.FormatConfig { return c.perms.PermissionFormat() }
