package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/erpdesk/sessiond/internal/access"
	"github.com/erpdesk/sessiond/internal/config"
)

// Service is the interface for a status API handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, ac *access.Context) error
}
