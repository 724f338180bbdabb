// Package guard rejects status API requests that need an authenticated session.
package guard

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/erpdesk/sessiond/internal/identity"
	"github.com/erpdesk/sessiond/internal/web/handler"
)

// LocalsUser is the fiber.Locals key of the current identity.
const LocalsUser = "CurrentUser"

// ErrUnauthorized is returned without an authenticated identity.
var ErrUnauthorized = errors.New("no authenticated session")

// Identity yields the current user, nil when unauthenticated.
type Identity interface {
	User() *identity.User
}

// RequireSession stores the identity in c.Locals or answers 401.
func RequireSession(s Identity) fiber.Handler {
	return func(c fiber.Ctx) error {
		u := s.User()
		if u == nil {
			return handler.SendError(c, fiber.StatusUnauthorized, ErrUnauthorized)
		}

		c.Locals(LocalsUser, u)

		return c.Next()
	}
}

// CurrentUser returns the identity stored by RequireSession.
func CurrentUser(c fiber.Ctx) *identity.User {
	u, _ := c.Locals(LocalsUser).(*identity.User)
	return u
}
