// Package permissions answers permission checks against the current session.
package permissions

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/erpdesk/sessiond/internal/access"
	"github.com/erpdesk/sessiond/internal/config"
	"github.com/erpdesk/sessiond/internal/permission"
	"github.com/erpdesk/sessiond/internal/web/handler"
	"github.com/erpdesk/sessiond/internal/web/middleware/guard"
)

const (
	// Path is the route of the effective permission set.
	Path = "/permissions"
	// CheckPath is the route of the permission checks.
	CheckPath = Path + "/check"
	// RefreshPath recomputes the permission set of the current identity.
	RefreshPath = Path + "/refresh"
)

var (
	// ErrModuleActionMissing is returned when a GET check lacks module or action.
	ErrModuleActionMissing = errors.New("module and action are required")
	// ErrAmbiguousCheck is returned when a POST check names both or neither of any and all.
	ErrAmbiguousCheck = errors.New("exactly one of any or all is required")
)

// Service is the permission check handler service.
type Service struct {
	handler.Service
	ac *access.Context
}

// Handler is the permission check handler.
var Handler = Service{}

// Check is the body of POST /permissions/check.
type Check struct {
	Any []string `json:"any"`
	All []string `json:"all"`
}

// Effective is the body of GET /permissions.
type Effective struct {
	Role         string                  `json:"role"`
	IsSuperAdmin bool                    `json:"is_super_admin"`
	Loading      bool                    `json:"loading"`
	Permissions  []string                `json:"permissions"`
	Modules      []string                `json:"modules"`
	Submodules   map[string][]string     `json:"submodules"`
	Roles        []permission.RoleRecord `json:"roles"`
}

// Result is the answer to a check.
type Result struct {
	Allowed bool `json:"allowed"`
}

// Init registers the permission routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, ac *access.Context) error {
	if app == nil || cfg == nil || ac == nil {
		return handler.ErrNilACC
	}

	s.ac = ac

	app.Get(Path, guard.RequireSession(ac), s.List)
	app.Get(CheckPath, s.Get)
	app.Post(CheckPath, s.Post)
	app.Post(RefreshPath, guard.RequireSession(ac), s.Refresh)

	return nil
}

// List returns the effective permission set of the current identity.
func (s *Service) List(c fiber.Ctx) error {
	out := Effective{
		IsSuperAdmin: s.ac.IsSuperAdmin(),
		Loading:      s.ac.PermissionsLoading(),
		Permissions:  []string{},
		Modules:      []string{},
		Submodules:   map[string][]string{},
		Roles:        []permission.RoleRecord{},
	}

	if r := s.ac.Permissions().Resolver(); r != nil {
		set := r.Set()
		out.Role = set.Role
		out.Permissions = set.PermissionList()
		out.Modules = set.ModuleList()
		out.Submodules = set.SubmoduleList()

		if set.Roles != nil {
			out.Roles = set.Roles
		}
	}

	return c.JSON(out)
}

// Refresh starts a recomputation and answers with the set published so far.
func (s *Service) Refresh(c fiber.Ctx) error {
	if err := s.ac.RefreshPermissions(); err != nil {
		return handler.SendError(c, fiber.StatusUnauthorized, err)
	}

	return s.List(c)
}

// Get checks ?module=&action=.
func (s *Service) Get(c fiber.Ctx) error {
	module, action := c.Query("module"), c.Query("action")
	if module == "" || action == "" {
		return handler.SendError(c, fiber.StatusBadRequest, ErrModuleActionMissing)
	}

	return c.JSON(Result{Allowed: s.ac.HasPermission(module, action)})
}

// Post checks a list of permissions, any or all of them.
func (s *Service) Post(c fiber.Ctx) error {
	var body Check
	if err := c.Bind().Body(&body); err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, err)
	}

	switch {
	case body.Any != nil && body.All == nil:
		return c.JSON(Result{Allowed: s.ac.HasAnyPermission(body.Any...)})
	case body.All != nil && body.Any == nil:
		return c.JSON(Result{Allowed: s.ac.HasAllPermissions(body.All...)})
	default:
		return handler.SendError(c, fiber.StatusBadRequest, ErrAmbiguousCheck)
	}
}
