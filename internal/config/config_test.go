package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectConfigPath(t *testing.T) string {
	t.Helper()

	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func validConfig() Config {
	return Config{
		API: API{BaseURL: "http://localhost:8000/api"},
		Session: Session{
			LoginPath:   "/login",
			LandingPath: "/dashboard",
			MaxAttempts: 3,
		},
		TokenStore: TokenStore{Engine: EngineMemory},
		Webserver:  Webserver{Enabled: true, Port: 8090, URL: "http://localhost:8090"},
	}
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.Equal(t, "/login", cfg.Session.LoginPath)
	assert.Equal(t, 3, cfg.Session.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Session.BaseBackoff)
	assert.Equal(t, 10*time.Second, cfg.Session.BootstrapTimeout)
	assert.Equal(t, 15*time.Second, cfg.Permission.FetchTimeout)
	assert.Equal(t, EngineSQLite, cfg.TokenStore.Engine)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.Equal(t, "error.log", cfg.Log.File.Error.Name)
}

func TestReadConfig_MissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestReadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SESSIOND_API_BASEURL", "https://erp.example.com/api")
	t.Setenv("SESSIOND_SESSION_MAXATTEMPTS", "5")

	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.Equal(t, "https://erp.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.Session.MaxAttempts)
}

func TestReadConfig_JSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":"Test Override","Webserver":{"Port":9090}}`)

	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
	assert.Equal(t, "/login", cfg.Session.LoginPath, "keys absent from the JSON keep their file value")

	t.Setenv(EnvConfigJSON, `{not json`)

	_, err = ReadConfig(projectConfigPath(t))
	assert.Error(t, err)
}

func TestReadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.toml"), []byte(`
[API]
BaseURL = "http://localhost:8000"
`), 0o600))

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, EngineMemory, cfg.TokenStore.Engine)
	assert.Equal(t, "/dashboard", cfg.Session.LandingPath)
	assert.Equal(t, 10*time.Second, cfg.Session.RefreshTimeout)
	assert.Equal(t, 5, cfg.Webserver.ShutDownTime)
	assert.False(t, cfg.Webserver.Enabled)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		invalid bool
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			invalid: true,
		},
		{
			name:    "relative login path",
			mutate:  func(c *Config) { c.Session.LoginPath = "login" },
			invalid: true,
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Session.MaxAttempts = 0 },
			invalid: true,
		},
		{
			name:    "landing equals login",
			mutate:  func(c *Config) { c.Session.LandingPath = "/login" },
			wantErr: ErrLandingIsLogin,
		},
		{
			name:    "unknown engine",
			mutate:  func(c *Config) { c.TokenStore.Engine = "etcd" },
			invalid: true,
		},
		{
			name:    "redis without url",
			mutate:  func(c *Config) { c.TokenStore.Engine = EngineRedis },
			invalid: true,
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.TokenStore.Engine = EngineSQLite },
			wantErr: ErrDBPathEmpty,
		},
		{
			name:    "postgres without name",
			mutate:  func(c *Config) { c.TokenStore.Engine = EnginePostgres },
			wantErr: ErrDBNameEmpty,
		},
		{
			name:    "webserver enabled without port",
			mutate:  func(c *Config) { c.Webserver.Port = 0 },
			invalid: true,
		},
		{
			name: "webserver disabled without port",
			mutate: func(c *Config) {
				c.Webserver = Webserver{}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(&c)

			err := Validate(&c)

			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.invalid:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
				assert.Equal(t, 5, c.Webserver.ShutDownTime)
			}
		})
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Title = "Dumped"

	out, err := DumpConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Dumped")
	assert.Contains(t, out, "[Session]")

	js, err := DumpConfigJSON(cfg)
	require.NoError(t, err)
	assert.Contains(t, js, `"Title": "Dumped"`)
	assert.Contains(t, js, `"LoginPath": "/login"`)
}
