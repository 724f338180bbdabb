package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/sessiond/internal/identity"
)

type staticIdentity struct{ u *identity.User }

func (s staticIdentity) User() *identity.User { return s.u }

func TestRequireSession(t *testing.T) {
	testCases := []struct {
		name       string
		user       *identity.User
		wantStatus int
	}{
		{name: "no session", user: nil, wantStatus: http.StatusUnauthorized},
		{name: "session", user: &identity.User{ID: 3}, wantStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", RequireSession(staticIdentity{tc.user}), func(c fiber.Ctx) error {
				return c.JSON(CurrentUser(c))
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}
