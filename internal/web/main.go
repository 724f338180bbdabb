// Package web is the JSON status API of the session core.
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/erpdesk/sessiond/internal/access"
	"github.com/erpdesk/sessiond/internal/config"
	"github.com/erpdesk/sessiond/internal/logger"
	"github.com/erpdesk/sessiond/internal/web/handler"
	"github.com/erpdesk/sessiond/internal/web/handler/permissions"
	"github.com/erpdesk/sessiond/internal/web/handler/session"
	"github.com/erpdesk/sessiond/internal/web/handler/status"
	"github.com/erpdesk/sessiond/internal/web/middleware/accesslog"
)

// ErrNilConfig is returned by New without config or access context.
var ErrNilConfig = errors.New("config and access context are required")

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start listens on addr until the app is shut down.
func (s *Service) Start(addr string) error {
	s.alive.Store(true)

	err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err //nolint:wrapcheck
	}

	return nil
}

// WaitShutdown blocks until SIGINT, SIGTERM or the end of ctx and stops the app gracefully.
func (s *Service) WaitShutdown(ctx context.Context) {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(irqSig)

	select {
	case sig := <-irqSig:
		log.Info().Msgf("shutdown request (signal: %v)", sig)
	case <-ctx.Done():
		log.Info().Msg("shutdown request (context done)")
	}

	s.Shutdown()
}

// Shutdown reports not alive for ShutDownTime seconds so load balancers can
// drain, then stops the http server.
func (s *Service) Shutdown() {
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service and registers every route.
func New(cfg *config.Config, ac *access.Context) (*Service, error) {
	if cfg == nil || ac == nil {
		return nil, ErrNilConfig
	}

	accessOut, err := logger.NewAccessWriter(cfg.Log)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	app := fiber.New(fiber.Config{
		AppName:       cfg.Title,
		CaseSensitive: true,
		Immutable:     true,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}

			return handler.SendError(c, code, err)
		},
	})

	if !cfg.Webserver.DisableRecover {
		app.Use(recoverer.New())
	}

	skip := ""
	if cfg.Log.DisableCheckAlive {
		skip = status.CheckAlivePath
	}

	app.Use(accesslog.New(accesslog.Config{Output: accessOut, SkipURI: skip}))

	service := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: cfg.DevMode || cfg.Webserver.ShutDownTime == 0,
	}
	service.alive.Store(true)

	status.Register(app, &service.alive)

	for _, h := range []handler.Service{&session.Handler, &permissions.Handler} {
		if err = h.Init(app, cfg, ac); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	return service, nil
}
