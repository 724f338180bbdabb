package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
)

// ErrNilACC is returned when app, cfg or the access context is nil.
var ErrNilACC = errors.New("app, cfg or access context is nil")

// Error is the JSON body of every failed request.
type Error struct {
	Error string `json:"error"`
}

// SendError writes status with err as JSON body.
func SendError(c fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(Error{Error: err.Error()})
}
