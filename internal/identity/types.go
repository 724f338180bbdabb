package identity

import (
	"strings"

	"github.com/erpdesk/sessiond/internal/permission"
)

// User is the authenticated principal as returned by GET /current-user.
type User struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	IsSuperAdmin       bool   `json:"is_super_admin"`
	OrganizationID     *int64 `json:"organization_id"`
	MustChangePassword bool   `json:"must_change_password"`
	FirstName          string `json:"first_name,omitempty"`
	LastName           string `json:"last_name,omitempty"`
}

// Validate enforces that every non super-admin belongs to an organization.
func (u *User) Validate() error {
	if !u.IsSuperAdmin && u.OrganizationID == nil {
		return ErrOrganizationContextMissing
	}

	return nil
}

// ParsedRole maps the wire role onto the closed role enumeration.
func (u *User) ParsedRole() permission.Role {
	return permission.ParseRole(u.Role)
}

// DisplayName returns the full name, falling back to the email.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}

	return name
}

// Patch is a partial user update. Nil fields are left untouched.
type Patch struct {
	Email              *string `json:"email,omitempty"`
	FirstName          *string `json:"first_name,omitempty"`
	LastName           *string `json:"last_name,omitempty"`
	MustChangePassword *bool   `json:"must_change_password,omitempty"`
}

// Apply returns a copy of u with the non-nil fields of p applied.
func (p Patch) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}

	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}

	if p.LastName != nil {
		u.LastName = *p.LastName
	}

	if p.MustChangePassword != nil {
		u.MustChangePassword = *p.MustChangePassword
	}

	return u
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginPayload is the server response to a successful login.
type LoginPayload struct {
	AccessToken        string `json:"access_token"`
	RefreshToken       string `json:"refresh_token,omitempty"`
	UserRole           string `json:"user_role,omitempty"`
	User               User   `json:"user"`
	OrganizationID     *int64 `json:"organization_id"`
	MustChangePassword bool   `json:"must_change_password"`
}

// Identity builds the user from the payload. Top level organization and
// password flags take precedence over the nested user; user_role fills an empty role.
func (p *LoginPayload) Identity() User {
	u := p.User

	if p.OrganizationID != nil {
		u.OrganizationID = p.OrganizationID
	}

	if p.MustChangePassword {
		u.MustChangePassword = true
	}

	if u.Role == "" {
		u.Role = p.UserRole
	}

	return u
}

// Role returns the role to cache alongside the tokens.
func (p *LoginPayload) Role() string {
	if p.UserRole != "" {
		return p.UserRole
	}

	return p.User.Role
}

// Validate checks the payload before anything of it is persisted.
func (p *LoginPayload) Validate() error {
	if p.AccessToken == "" {
		return ErrMissingAccessToken
	}

	u := p.Identity()

	return u.Validate()
}

// RefreshRequest is the body of POST /token/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse is the body returned by POST /token/refresh.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}
