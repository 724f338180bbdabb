// Package identity is the REST client of the identity and permission service.
package identity

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/erpdesk/sessiond/internal/config"
	"github.com/erpdesk/sessiond/internal/permission"
)

// API paths.
const (
	PathCurrentUser      = "/current-user"
	PathTokenRefresh     = "/token/refresh"
	PathLogin            = "/auth/login"
	PathLogout           = "/auth/logout"
	PathUserPermissions  = "/permissions/users/{id}"
	PathUserServiceRoles = "/permissions/users/{id}/roles"
	PathPermissionFormat = "/system/permission-format"

	// HeaderRequestID carries a per request correlation id.
	HeaderRequestID = "X-Request-ID"
)

// TokenSource yields the current access token, "" when there is none.
type TokenSource interface {
	AccessToken() (string, error)
}

// Client talks to the identity API. Retries are owned by the caller, resty never retries.
type Client struct {
	http      *resty.Client
	tokens    TokenSource
	validator *validator.Validate
}

// New creates a client for cfg. tokens may be nil for anonymous use.
func New(cfg config.API, tokens TokenSource) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.UserAgent != "" {
		http.SetHeader("User-Agent", cfg.UserAgent)
	}

	http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader(HeaderRequestID, uuid.NewString())
		return nil
	})

	http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Dur("took", resp.Time()).
			Str("request_id", resp.Request.Header.Get(HeaderRequestID)).
			Msg("identity api call")

		return nil
	})

	return &Client{http: http, tokens: tokens, validator: validator.New()}
}

func (c *Client) request(ctx context.Context, authenticated bool) (*resty.Request, error) {
	r := c.http.R().SetContext(ctx)

	if !authenticated || c.tokens == nil {
		return r, nil
	}

	token, err := c.tokens.AccessToken()
	if err != nil {
		return nil, fmt.Errorf("read access token: %w", err)
	}

	if token != "" {
		r.SetAuthToken(token)
	}

	return r, nil
}

// check turns a transport error or a non 2xx answer into an error.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp.IsError() {
		return &StatusError{
			Method:     resp.Request.Method,
			Path:       resp.Request.URL,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return nil
}

// CurrentUser fetches the identity behind the stored access token.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	r, err := c.request(ctx, true)
	if err != nil {
		return nil, err
	}

	var u User
	if err = check(r.SetResult(&u).Get(PathCurrentUser)); err != nil {
		return nil, err
	}

	return &u, nil
}

// Refresh exchanges refreshToken for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	r, err := c.request(ctx, false)
	if err != nil {
		return nil, err
	}

	var out RefreshResponse

	err = check(r.SetBody(RefreshRequest{RefreshToken: refreshToken}).SetResult(&out).Post(PathTokenRefresh))
	if err != nil {
		return nil, err
	}

	if out.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	tok := &oauth2.Token{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		TokenType:    out.TokenType,
		ExpiresIn:    out.ExpiresIn,
	}

	if out.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}

	return tok, nil
}

// Login posts credentials and returns the login payload unvalidated.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginPayload, error) {
	if err := c.validator.Struct(creds); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	r, err := c.request(ctx, false)
	if err != nil {
		return nil, err
	}

	var out LoginPayload
	if err = check(r.SetBody(creds).SetResult(&out).Post(PathLogin)); err != nil {
		return nil, err
	}

	return &out, nil
}

// Logout invalidates the current token server side.
func (c *Client) Logout(ctx context.Context) error {
	r, err := c.request(ctx, true)
	if err != nil {
		return err
	}

	return check(r.Post(PathLogout))
}

// UserPermissions fetches the explicit grants of userID.
func (c *Client) UserPermissions(ctx context.Context, userID int64) (*permission.Payload, error) {
	r, err := c.request(ctx, true)
	if err != nil {
		return nil, err
	}

	var out permission.Payload

	err = check(r.SetPathParam("id", strconv.FormatInt(userID, 10)).SetResult(&out).Get(PathUserPermissions))
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// UserServiceRoles fetches the role assignments of userID.
func (c *Client) UserServiceRoles(ctx context.Context, userID int64) ([]permission.RoleRecord, error) {
	r, err := c.request(ctx, true)
	if err != nil {
		return nil, err
	}

	var out []permission.RoleRecord

	err = check(r.SetPathParam("id", strconv.FormatInt(userID, 10)).SetResult(&out).Get(PathUserServiceRoles))
	if err != nil {
		return nil, err
	}

	return out, nil
}

// PermissionFormat fetches the server permission format configuration.
func (c *Client) PermissionFormat(ctx context.Context) (permission.FormatConfig, error) {
	r, err := c.request(ctx, true)
	if err != nil {
		return permission.FormatConfig{}, err
	}

	var out permission.FormatConfig
	if err = check(r.SetResult(&out).Get(PathPermissionFormat)); err != nil {
		return permission.FormatConfig{}, err
	}

	return out.Sanitize(), nil
}
