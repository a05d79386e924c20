package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/config"
	"github.com/dmitrijs2005/gophgate/internal/server/refreshtokens"
	"github.com/dmitrijs2005/gophgate/internal/server/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = testSecret

	repo := users.NewMemoryRepository()
	_, err := repo.Create(context.Background(), users.NewUser("demo", []byte("demo")))
	require.NoError(t, err)

	svc := users.NewService(repo, refreshtokens.NewMemoryRepository(), cfg)
	srv := httptest.NewServer(NewHandler(svc, logging.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body, token string) (int, map[string]string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerValue(token))
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]string{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func login(t *testing.T, srv *httptest.Server) (string, string) {
	t.Helper()
	code, out := do(t, http.MethodPost, srv.URL+"/login",
		`{"username":"demo","password":"demo","clientId":"gophgate-cli"}`, "")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, out["accessToken"])
	require.NotEmpty(t, out["refreshToken"])
	return out["accessToken"], out["refreshToken"]
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	login(t, srv)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad password", `{"username":"demo","password":"x","clientId":"gophgate-cli"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"bob","password":"demo","clientId":"gophgate-cli"}`, http.StatusUnauthorized},
		{"unknown client", `{"username":"demo","password":"demo","clientId":"other"}`, http.StatusUnauthorized},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := do(t, http.MethodPost, srv.URL+"/login", tt.body, "")
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestToken(t *testing.T) {
	srv := newTestServer(t)
	_, refresh := login(t, srv)

	code, out := do(t, http.MethodPost, srv.URL+"/token",
		`{"refreshToken":"`+refresh+`","clientId":"gophgate-cli"}`, "")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, out["accessToken"])

	code, _ = do(t, http.MethodGet, srv.URL+"/api/whoami", "", out["accessToken"])
	assert.Equal(t, http.StatusOK, code)

	code, out = do(t, http.MethodPost, srv.URL+"/token", `{"refreshToken":"nope","clientId":"gophgate-cli"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, common.ErrInvalidToken.Error(), out["error"])

	code, _ = do(t, http.MethodPost, srv.URL+"/token", `{"clientId":"gophgate-cli"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, http.MethodPost, srv.URL+"/token", `not json`, "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	_, refresh := login(t, srv)

	code, _ := do(t, http.MethodGet, srv.URL+"/logout?refreshToken="+refresh, "", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, http.MethodPost, srv.URL+"/token",
		`{"refreshToken":"`+refresh+`","clientId":"gophgate-cli"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, http.MethodGet, srv.URL+"/logout", "", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestAPI_RequiresAccessToken(t *testing.T) {
	srv := newTestServer(t)
	access, _ := login(t, srv)

	code, out := do(t, http.MethodGet, srv.URL+"/api/whoami", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "missing token", out["error"])

	code, _ = do(t, http.MethodGet, srv.URL+"/api/whoami", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)

	expired, err := auth.GenerateToken("u1", "gophgate-cli", []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	code, _ = do(t, http.MethodGet, srv.URL+"/api/whoami", "", expired)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, out = do(t, http.MethodGet, srv.URL+"/api/whoami", "", access)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, out["userId"])
}

func TestAPI_Echo(t *testing.T) {
	srv := newTestServer(t)
	access, _ := login(t, srv)

	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(m, func(t *testing.T) {
			code, out := do(t, m, srv.URL+"/api/items/7?x=1", `{"a":1}`, access)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, m, out["method"])
			assert.Equal(t, "/api/items/7", out["path"])
			assert.Equal(t, "x=1", out["query"])
			assert.Equal(t, `{"a":1}`, out["body"])
		})
	}
}

type brokenUsers struct{ UserService }

func (brokenUsers) Logout(context.Context, string) error { return errors.New("db down") }

func TestLogout_InternalError(t *testing.T) {
	srv := httptest.NewServer(NewHandler(brokenUsers{}, logging.NewNop()))
	defer srv.Close()

	code, out := do(t, http.MethodGet, srv.URL+"/logout?refreshToken=x", "", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, common.ErrorInternal.Error(), out["error"])
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bear", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set(common.AuthorizationHeader, tt.header)
		}
		assert.Equal(t, tt.want, bearerToken(r), tt.header)
	}
}
