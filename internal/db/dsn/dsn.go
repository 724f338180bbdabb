// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/erpdesk/sessiond/internal/config"
)

// Create builds the gorm driver DSN for engine.
// Unknown engines yield an empty string.
func Create(engine string, db config.DB) string {
	switch engine {
	case config.EngineSQLite:
		return db.Path
	case config.EngineMySQL, config.EngineFiberMySQL:
		return MySQL(db)
	case config.EnginePostgres:
		return Postgres(db)
	case config.EngineFiberPostgres:
		return PostgresURI(db)
	default:
		return ""
	}
}

// MySQL builds a go-sql-driver DSN: user:password@tcp(host:port)/name?extras.
func MySQL(db config.DB) string {
	out := fmt.Sprintf("%s:%s@tcp(%s)/%s",
		db.User,
		db.Password,
		net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		db.Name,
	)

	if db.Extras != "" {
		out += "?" + db.Extras
	}

	return out
}

// Postgres builds a libpq keyword/value DSN. Extras are appended verbatim.
func Postgres(db config.DB) string {
	parts := []string{
		"host=" + db.Host,
		"port=" + strconv.Itoa(db.Port),
		"user=" + db.User,
		"dbname=" + db.Name,
	}

	if db.Password != "" {
		parts = append(parts, "password="+db.Password)
	}

	if db.Extras != "" {
		parts = append(parts, db.Extras)
	}

	return strings.Join(parts, " ")
}

// PostgresURI builds a postgres:// connection URI. Extras become the raw query.
func PostgresURI(db config.DB) string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:     "/" + db.Name,
		RawQuery: db.Extras,
	}

	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	} else if db.User != "" {
		u.User = url.User(db.User)
	}

	return u.String()
}
