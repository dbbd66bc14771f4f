package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pos-till/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", Env: "test"},
		Store:  config.StoreConfig{Backend: backend, Prefix: "srv_"},
		JWT:    config.JWTConfig{Secret: "server-test-secret", AccessExpiry: 15, RefreshExpiry: 1},
		POS: config.POSConfig{
			DefaultTaxRate: decimal.RequireFromString("0.21"),
			NodeID:         1,
			DisplayChannel: "test_display",
		},
		RateLimit: config.RateLimitConfig{LoginRequests: 3, WindowSeconds: 60},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	logger := zap.NewNop()
	infra, err := OpenInfra(context.Background(), cfg, logger)
	require.NoError(t, err)
	srv, err := NewServer(cfg, logger, infra)
	require.NoError(t, err)
	require.NoError(t, srv.SeedDefaults(context.Background()))
	t.Cleanup(func() { srv.Close() })
	return srv
}

func login(srv *Server, email, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:4000"
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, testConfig(config.StoreMemory))

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","store":"memory"}`, w.Body.String())

	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSeededAccountsCanLogIn(t *testing.T) {
	srv := newTestServer(t, testConfig(config.StoreMemory))

	w := login(srv, "admin@pos.com", "admin123")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "admin", resp.User.Role)
}

func TestLoginIsRateLimited(t *testing.T) {
	srv := newTestServer(t, testConfig(config.StoreMemory))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusUnauthorized, login(srv, "cashier@pos.com", "wrong").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, login(srv, "cashier@pos.com", "cashier123").Code)
}

func TestNonJSONBodiesAreRejected(t *testing.T) {
	srv := newTestServer(t, testConfig(config.StoreMemory))

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewBufferString("email=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(config.StoreRedis)
	cfg.Redis = config.RedisConfig{Host: mr.Host(), Port: mr.Port()}

	srv := newTestServer(t, cfg)
	require.NotNil(t, srv.infra.Redis)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","store":"redis","redis":"up"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, login(srv, "manager@pos.com", "manager123").Code)
	assert.True(t, mr.Exists("srv_users"), "accounts are stored in redis")
}

func TestNewServerRequiresSecret(t *testing.T) {
	cfg := testConfig(config.StoreMemory)
	cfg.JWT.Secret = ""
	infra, err := OpenInfra(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer infra.Close()

	_, err = NewServer(cfg, zap.NewNop(), infra)
	assert.Error(t, err)
}

func TestUnknownBackend(t *testing.T) {
	_, err := OpenInfra(context.Background(), testConfig("etcd"), zap.NewNop())
	assert.Error(t, err)
}
