// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Token store engines.
const (
	EngineMemory        = "memory"
	EngineSQLite        = "sqlite"
	EngineMySQL         = "mysql"
	EnginePostgres      = "postgres"
	EngineRedis         = "redis"
	EngineFiberPostgres = "fiber-postgres"
	EngineFiberMySQL    = "fiber-mysql"
)

const (
	// EnvPrefix prefixes per key environment overrides, e.g. SESSIOND_API_BASEURL.
	EnvPrefix = "SESSIOND"
	// EnvConfigJSON holds a JSON document merged over the file configuration.
	EnvConfigJSON = "SESSIOND_CONFIG_JSON"

	mainFile = "main.toml"
)

var validate = validator.New() //nolint:gochecknoglobals

// ReadConfig from config file.
// Precedence is defaults, then main.toml, then SESSIOND_* variables, then SESSIOND_CONFIG_JSON.
func ReadConfig(path string) (Config, error) {
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(filepath.Join(path, mainFile))
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	if js := os.Getenv(EnvConfigJSON); js != "" {
		var err error

		if c, err = decodeAndMergeConfig(c, js); err != nil {
			return c, err
		}
	}

	return c, Validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "sessiond")
	v.SetDefault("log.loglevel", "info")
	v.SetDefault("log.appname", "sessiond")
	v.SetDefault("log.servicename", "sessiond")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("session.loginpath", "/login")
	v.SetDefault("session.landingpath", "/dashboard")
	v.SetDefault("session.passwordresetpath", "/reset-password")
	v.SetDefault("session.bootstraptimeout", 10*time.Second)
	v.SetDefault("session.maxattempts", 3)
	v.SetDefault("session.basebackoff", time.Second)
	v.SetDefault("session.refreshtimeout", 10*time.Second)
	v.SetDefault("permission.fetchtimeout", 15*time.Second)
	v.SetDefault("tokenstore.engine", EngineMemory)
	v.SetDefault("tokenstore.table", "sessiond_storage")
	v.SetDefault("webserver.shutdowntime", 5)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	if err := json.Unmarshal([]byte(configAsJSON), &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
	}

	return c, nil
}

// Validate checks struct tags and the cross field rules of c.
func Validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, invalidErrMessage)
	}

	if c.Session.LandingPath == c.Session.LoginPath {
		return errors.Wrap(ErrLandingIsLogin, invalidErrMessage)
	}

	switch c.TokenStore.Engine {
	case EngineSQLite:
		if c.TokenStore.DB.Path == "" {
			return errors.Wrap(ErrDBPathEmpty, invalidErrMessage)
		}
	case EngineMySQL, EnginePostgres, EngineFiberMySQL, EngineFiberPostgres:
		if c.TokenStore.DB.Name == "" {
			return errors.Wrap(ErrDBNameEmpty, invalidErrMessage)
		}
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5
	}

	return nil
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer

	enc := toml.NewEncoder(&buffer)
	enc.SetIndentTables(true)

	if err := enc.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}
