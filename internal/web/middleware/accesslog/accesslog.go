// Package accesslog is a zerolog access logging middleware for fiber.
package accesslog

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
)

// Config of the middleware.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c fiber.Ctx) bool

	// Output receives one JSON line per request. Nil disables logging but
	// keeps the performance header.
	Output io.Writer

	// SkipURI is not logged, usually the check alive endpoint.
	SkipURI string
}

// HeaderPerformance carries the handler time in seconds.
const HeaderPerformance = "X-Performance"

// New creates the middleware.
func New(cfg Config) fiber.Handler {
	var accessLogger *zerolog.Logger

	if cfg.Output != nil {
		l := zerolog.New(cfg.Output).With().Timestamp().Logger().Level(zerolog.NoLevel)
		accessLogger = &l
	}

	return func(c fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()
		chainErr := c.Next()
		elapsed := time.Since(start).Seconds()

		c.Set(HeaderPerformance, fmt.Sprintf("%f", elapsed))

		if accessLogger == nil || (cfg.SkipURI != "" && c.Path() == cfg.SkipURI) {
			return chainErr
		}

		status := c.Response().StatusCode()
		if chainErr != nil {
			status = fiber.StatusInternalServerError

			var fe *fiber.Error
			if errors.As(chainErr, &fe) {
				status = fe.Code
			}
		}

		// the original URL keeps the path as sent, fasthttp normalises c.Path()
		ev := accessLogger.Log().
			Str("IP", c.IP()).
			Int("status", status).
			Float64(HeaderPerformance, elapsed).
			Str("URI", c.OriginalURL()).
			Str("method", c.Method()).
			Str("host", c.Hostname()).
			Str(fiber.HeaderXForwardedFor, c.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, c.Get(fiber.HeaderUserAgent)).
			Str(fiber.HeaderXRequestID, c.Get(fiber.HeaderXRequestID))

		if chainErr != nil {
			ev.Err(chainErr)
		}

		ev.Send()

		return chainErr
	}
}
