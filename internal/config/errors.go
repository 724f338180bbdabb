package config

import (
	"errors"
)

var (
	// ErrLandingIsLogin is returned if session.LandingPath equals session.LoginPath.
	ErrLandingIsLogin = errors.New("toml config session.landingPath can not be the login path")

	// ErrDBPathEmpty is returned if the sqlite engine has no database path.
	ErrDBPathEmpty = errors.New("toml config tokenStore.db.path can not be empty for sqlite")

	// ErrDBNameEmpty is returned if a server database engine has no database name.
	ErrDBNameEmpty = errors.New("toml config tokenStore.db.name can not be empty")
)
