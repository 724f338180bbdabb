package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/sessiond/internal/config"
	"github.com/erpdesk/sessiond/internal/identity"
	"github.com/erpdesk/sessiond/internal/permission"
	"github.com/erpdesk/sessiond/internal/tokenstore"
)

const token = "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.c2ln"

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		API: config.API{BaseURL: baseURL, Timeout: time.Second},
		Session: config.Session{
			LoginPath:   "/login",
			LandingPath: "/dashboard",
			MaxAttempts: 3,
			BaseBackoff: time.Millisecond,
		},
		Permission: config.Permission{FetchTimeout: time.Second},
		TokenStore: config.TokenStore{Engine: config.EngineMemory},
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrConfigNil)

	cfg := testConfig("http://localhost")
	cfg.TokenStore.Engine = "etcd"

	_, err = New(cfg)
	require.ErrorIs(t, err, tokenstore.ErrUnknownEngine)
}

func TestDaemon_LoginAndPermissions(t *testing.T) {
	org := int64(3)
	user := identity.User{ID: 5, Email: "hr@example.com", Role: "hr_manager", OrganizationID: &org}

	reply := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, identity.LoginPayload{AccessToken: token, User: user})
	})
	mux.HandleFunc("GET /current-user", func(w http.ResponseWriter, _ *http.Request) { reply(w, user) })
	mux.HandleFunc("GET /permissions/users/5", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, permission.Payload{Permissions: []string{"finance:view"}})
	})
	mux.HandleFunc("GET /permissions/users/5/roles", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, []permission.RoleRecord{{ID: 2, Name: "HR"}})
	})
	mux.HandleFunc("GET /system/permission-format", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	d, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	defer func() { assert.NoError(t, d.Close()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, d.Bootstrap(ctx))
	assert.Nil(t, d.Access().User())
	assert.Equal(t, permission.DefaultFormatConfig(), d.Access().PermissionFormat())

	u, err := d.Access().LoginWithCredentials(ctx, identity.Credentials{Email: "hr@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.ID)

	require.NoError(t, d.Access().Permissions().Wait(ctx))
	assert.True(t, d.Access().HasPermission("hr", "delete"))
	assert.True(t, d.Access().HasPermission("finance", "view"))
	assert.False(t, d.Access().HasPermission("finance", "update"))
	assert.Equal(t, "/dashboard", d.Access().Session().Location())
}
