package tokenstore

import (
	"errors"
	"fmt"

	"github.com/gofiber/storage/mysql/v2"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/erpdesk/sessiond/internal/config"
	"github.com/erpdesk/sessiond/internal/db"
	"github.com/erpdesk/sessiond/internal/db/dsn"
)

// RedisKeyPrefix namespaces the redis engine keys.
const RedisKeyPrefix = "sessiond:"

// ErrUnknownEngine is returned for an engine name OpenBackend does not know.
var ErrUnknownEngine = errors.New("unknown token store engine")

// OpenBackend builds the Backend selected by cfg.Engine.
func OpenBackend(cfg config.TokenStore, devMode bool) (Backend, error) {
	var (
		backend Backend
		err     error
	)

	switch cfg.Engine {
	case config.EngineMemory, "":
		backend = NewMemoryBackend()
	case config.EngineSQLite, config.EngineMySQL, config.EnginePostgres:
		gdb, oerr := db.Open(cfg.Engine, cfg.DB, devMode)
		if oerr != nil {
			return nil, oerr //nolint:wrapcheck
		}

		backend = NewGormBackend(gdb)
	case config.EngineRedis:
		opts, perr := redis.ParseURL(cfg.RedisURL)
		if perr != nil {
			return nil, fmt.Errorf("redis: invalid URL: %w", perr)
		}

		backend = NewRedisBackend(redis.NewClient(opts), RedisKeyPrefix)
	case config.EngineFiberPostgres:
		backend = postgres.New(postgres.Config{
			ConnectionURI: dsn.Create(cfg.Engine, cfg.DB),
			Table:         cfg.Table,
		})
	case config.EngineFiberMySQL:
		backend = mysql.New(mysql.Config{
			ConnectionURI: dsn.Create(cfg.Engine, cfg.DB),
			Table:         cfg.Table,
		})
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}

	if err != nil {
		return nil, err
	}

	log.Info().Str("engine", cfg.Engine).Msg("token store backend opened")

	return backend, nil
}
