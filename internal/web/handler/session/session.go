// Package session exposes the session state and actions of the status API.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/erpdesk/sessiond/internal/access"
	"github.com/erpdesk/sessiond/internal/config"
	"github.com/erpdesk/sessiond/internal/identity"
	"github.com/erpdesk/sessiond/internal/permission"
	sess "github.com/erpdesk/sessiond/internal/session"
	"github.com/erpdesk/sessiond/internal/web/handler"
	"github.com/erpdesk/sessiond/internal/web/middleware/guard"
)

const (
	// Path is the route group of the session endpoints.
	Path = "/session"

	actionTimeout = 30 * time.Second
)

// Service is the session handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	ac  *access.Context
}

// Handler is the session handler.
var Handler = Service{}

// View is the body of GET /session.
type View struct {
	State              sess.State              `json:"state"`
	Loading            bool                    `json:"loading"`
	PermissionsLoading bool                    `json:"permissions_loading"`
	User               *identity.User          `json:"user"`
	IsSuperAdmin       bool                    `json:"is_super_admin"`
	Location           string                  `json:"location"`
	PermissionFormat   permission.FormatConfig `json:"permission_format"`
	LastError          string                  `json:"last_error,omitempty"`
}

// Init registers the session routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, ac *access.Context) error {
	if app == nil || cfg == nil || ac == nil {
		return handler.ErrNilACC
	}

	s.cfg = cfg
	s.ac = ac

	router := app.Group(Path)
	router.Get(handler.RootPath, s.Get)
	router.Post("/login", s.Login)
	router.Post("/logout", s.Logout)
	router.Post("/refresh", guard.RequireSession(ac), s.Refresh)

	return nil
}

// Get returns the current session view.
func (s *Service) Get(c fiber.Ctx) error {
	return c.JSON(s.view())
}

// Login exchanges credentials for a session.
func (s *Service) Login(c fiber.Ctx) error {
	var creds identity.Credentials
	if err := c.Bind().Body(&creds); err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, identity.ErrInvalidCredentials)
	}

	ctx, cancel := context.WithTimeout(c.Context(), actionTimeout)
	defer cancel()

	if _, err := s.ac.LoginWithCredentials(ctx, creds); err != nil {
		status := loginStatus(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Msg("login failed")
		}

		return handler.SendError(c, status, err)
	}

	return c.JSON(s.view())
}

// Logout ends the session.
func (s *Service) Logout(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), actionTimeout)
	defer cancel()

	if err := s.ac.Logout(ctx); err != nil {
		log.Error().Err(err).Msg("logout failed")
		return handler.SendError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(s.view())
}

// Refresh re-fetches the identity. A refresh while another fetch runs is a no-op.
func (s *Service) Refresh(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), actionTimeout)
	defer cancel()

	if err := s.ac.RefreshUser(ctx); err != nil {
		return handler.SendError(c, refreshStatus(err), err)
	}

	return c.JSON(s.view())
}

func (s *Service) view() View {
	v := View{
		State:              s.ac.State(),
		Loading:            s.ac.Loading(),
		PermissionsLoading: s.ac.PermissionsLoading(),
		User:               s.ac.User(),
		IsSuperAdmin:       s.ac.IsSuperAdmin(),
		Location:           s.ac.Session().Location(),
		PermissionFormat:   s.ac.PermissionFormat(),
	}

	if err := s.ac.Session().LastError(); err != nil {
		v.LastError = err.Error()
	}

	return v
}

func loginStatus(err error) int {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrMissingAccessToken):
		return fiber.StatusBadRequest
	case errors.Is(err, sess.ErrOrganizationContextMissing):
		return fiber.StatusUnprocessableEntity
	case identity.IsAuthRejected(err), errors.Is(err, sess.ErrAuthRejected), errors.Is(err, sess.ErrInvalidTokenFormat):
		return fiber.StatusUnauthorized
	case errors.Is(err, access.ErrNoAuthenticator):
		return fiber.StatusNotImplemented
	default:
		return fiber.StatusBadGateway
	}
}

func refreshStatus(err error) int {
	switch {
	case errors.Is(err, sess.ErrAuthRejected):
		return fiber.StatusUnauthorized
	case errors.Is(err, sess.ErrOrganizationContextMissing):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusBadGateway
	}
}
