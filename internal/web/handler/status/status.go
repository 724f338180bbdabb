// Package status serves the check alive and metrics endpoints.
package status

import (
	"sync/atomic"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// CheckAlivePath answers load balancer probes.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes the prometheus registry.
	MetricsPath = "/metrics"
)

// Register mounts the status routes. alive turns /checkalive into 503 once false.
func Register(app *fiber.App, alive *atomic.Bool) {
	app.Get(CheckAlivePath, func(c fiber.Ctx) error {
		if !alive.Load() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
		}

		return c.SendString("OK")
	})

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))
}
