package config

import (
	"time"

	"github.com/erpdesk/sessiond/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode    bool // enable dev mode for development
	Title      string
	Log        logger.Log
	API        API
	Session    Session
	Permission Permission
	TokenStore TokenStore
	Webserver  Webserver
}

// API points at the identity and permission REST service.
type API struct {
	BaseURL   string        `validate:"required,url"`
	Timeout   time.Duration `validate:"gte=0"`
	UserAgent string
}

// Session holds the bootstrap and redirect settings of the session manager.
type Session struct {
	LoginPath         string        `validate:"required,startswith=/"`
	LandingPath       string        `validate:"required,startswith=/"`
	PasswordResetPath string        `validate:"omitempty,startswith=/"`
	BootstrapTimeout  time.Duration `validate:"gte=0"` // global guard around bootstrap, 0 disables it
	MaxAttempts       int           `validate:"gte=1,lte=10"`
	BaseBackoff       time.Duration `validate:"gte=0"`
	RefreshTimeout    time.Duration `validate:"gte=0"`
}

// Permission holds the permission provider settings.
type Permission struct {
	FetchTimeout time.Duration `validate:"gte=0"`
}

// TokenStore selects and configures the persistent key/value backend.
type TokenStore struct {
	Engine   string `validate:"oneof=memory sqlite mysql postgres redis fiber-postgres fiber-mysql"`
	DB       DB
	RedisURL string `validate:"required_if=Engine redis"`
	Table    string // table used by the fiber storage engines
}

// DB holds the database configuration settings.
type DB struct {
	Path     string // sqlite file, ":memory:" for an in-memory database
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Extras   string
}

// Webserver implements the status API settings.
type Webserver struct {
	Enabled        bool
	Port           int    `validate:"required_if=Enabled true"`
	URL            string `validate:"required_if=Enabled true"`
	ShutDownTime   int    // seconds to wait for shutdown
	DisableRecover bool   // disable recover middleware
}
