// Package db opens the gorm connection backing the persistent token store.
package db

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/erpdesk/sessiond/internal/config"
	"github.com/erpdesk/sessiond/internal/db/dsn"
	"github.com/erpdesk/sessiond/internal/db/models"
)

// ErrUnsupportedEngine is returned for engines not backed by gorm.
var ErrUnsupportedEngine = errors.New("unsupported gorm engine")

// Open connects to the database for engine and migrates the entry table.
func Open(engine string, cfg config.DB, devMode bool) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch engine {
	case config.EngineSQLite:
		dialector = sqlite.Open(dsn.Create(engine, cfg))
	case config.EngineMySQL:
		dialector = mysql.Open(dsn.Create(engine, cfg))
	case config.EnginePostgres:
		dialector = postgres.Open(dsn.Create(engine, cfg))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEngine, engine)
	}

	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	if devMode {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", engine, err)
	}

	// sqlite allows one writer, and every :memory: connection is its own database
	if engine == config.EngineSQLite {
		sqlDB, derr := db.DB()
		if derr != nil {
			return nil, fmt.Errorf("open %s database: %w", engine, derr)
		}

		sqlDB.SetMaxOpenConns(1)
	}

	if err = db.AutoMigrate(&models.Entry{}); err != nil {
		return nil, fmt.Errorf("migrate %s database: %w", engine, err)
	}

	log.Debug().Str("engine", engine).Msg("token store database ready")

	return db, nil
}
