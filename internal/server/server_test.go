package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/cabot-property-api/internal/config"
	"github.com/hongminglow/cabot-property-api/internal/logging"
	"github.com/hongminglow/cabot-property-api/internal/notify"
	"github.com/hongminglow/cabot-property-api/internal/obs"
	"github.com/hongminglow/cabot-property-api/internal/storage/fixture"
)

func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		Env:            "test",
		Version:        "1.2.3",
		AuthBackend:    config.BackendFixture,
		JWTSecret:      "server-test-secret",
		JWTIssuer:      "cabot-test",
		JWTTTL:         24 * time.Hour,
		CORSOrigins:    []string{"*"},
		LoginRateBurst: 1,
	}
}

func newTestHandler(t *testing.T, cfg config.Config) (http.Handler, *obs.Metrics) {
	t.Helper()
	store, err := fixture.New("password123", bcrypt.MinCost)
	require.NoError(t, err)
	metrics := obs.NewMetrics()
	log := logging.Discard()
	h := NewHandler(cfg, Deps{
		Users:      store,
		WorkOrders: store,
		Hooks:      notify.NewHooks(nil, log, metrics),
		Metrics:    metrics,
		Log:        log,
	})
	return h, metrics
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPreflightOnEveryRoute(t *testing.T) {
	h, _ := newTestHandler(t, testConfig())

	for _, path := range []string{"/auth/login", "/health", "/workorders", "/workorders/1/status", "/anything"} {
		rr := do(h, http.MethodOptions, path, "", "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Empty(t, rr.Body.String(), path)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"), path)
		assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Methods"), path)
		assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Headers"), path)
	}
}

func TestLoginThenListWorkOrders(t *testing.T) {
	h, _ := newTestHandler(t, testConfig())

	rr := do(h, http.MethodPost, "/auth/login", "", `{"username":"tenant1","password":"password123"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	var login struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	assert.Equal(t, "tenant", login.User.Role)

	rr = do(h, http.MethodGet, "/workorders", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, rr.Body.String())

	rr = do(h, http.MethodGet, "/workorders", login.Token, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(h, http.MethodPost, "/workorders", login.Token, `{"title":"Sink","description":"Leak","problemCategory":"Standard"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		AutomationTriggered bool `json:"automationTriggered"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.False(t, created.AutomationTriggered)
}

func TestHealthDoesNotNeedDirectory(t *testing.T) {
	cfg := testConfig()
	h := NewHandler(cfg, Deps{})

	rr := do(h, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"OK"`)
	assert.Contains(t, rr.Body.String(), `"version":"1.2.3"`)
}

func TestMetricsExposeRoutePatterns(t *testing.T) {
	h, _ := newTestHandler(t, testConfig())

	do(h, http.MethodGet, "/health", "", "")
	rr := do(h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, bytes.Contains(rr.Body.Bytes(), []byte(`route="/health"`)), rr.Body.String())
}

func TestLoginRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRatePerMinute = 1
	h, _ := newTestHandler(t, cfg)

	body := `{"username":"tenant1","password":"wrong"}`
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, "/auth/login", "", body).Code)
}

func TestReadyWithInMemoryBackend(t *testing.T) {
	h, _ := newTestHandler(t, testConfig())

	rr := do(h, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rr.Body.String())
}
