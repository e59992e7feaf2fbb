package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/cabot-property-api/internal/auth"
	"github.com/hongminglow/cabot-property-api/internal/logging"
	"github.com/hongminglow/cabot-property-api/internal/models"
	"github.com/hongminglow/cabot-property-api/internal/notify"
	"github.com/hongminglow/cabot-property-api/internal/storage/fixture"
)

const testSecret = "handlers-test-secret"

type recordedEvent struct {
	kind string
	wo   models.WorkOrder
	from models.WorkOrderStatus
	by   notify.Actor
}

type recordingHooks struct {
	enabled bool
	mu      sync.Mutex
	events  []recordedEvent
}

func (h *recordingHooks) Enabled() bool { return h.enabled }

func (h *recordingHooks) OnWorkOrderCreated(_ context.Context, wo models.WorkOrder, tenant notify.Actor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, recordedEvent{kind: "created", wo: wo, by: tenant})
}

func (h *recordingHooks) OnWorkOrderStatusChanged(_ context.Context, wo models.WorkOrder, from models.WorkOrderStatus, by notify.Actor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, recordedEvent{kind: "status", wo: wo, from: from, by: by})
}

func (h *recordingHooks) recorded() []recordedEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]recordedEvent(nil), h.events...)
}

type testEnv struct {
	mux    *http.ServeMux
	store  *fixture.Store
	tokens *auth.TokenManager
	hooks  *recordingHooks
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := fixture.New("password123", bcrypt.MinCost)
	require.NoError(t, err)

	tokens := auth.NewTokenManager(testSecret, "cabot-test", 24*time.Hour)
	hooks := &recordingHooks{enabled: true}
	log := logging.Discard()

	mux := http.NewServeMux()
	NewAuthHandler(auth.NewVerifier(store), tokens, log, nil, nil).Register(mux)
	NewHealthHandler(time.Now(), "1.0.0", "test").Register(mux)
	NewWorkOrderHandler(store, tokens, hooks, log).Register(mux)

	return &testEnv{mux: mux, store: store, tokens: tokens, hooks: hooks}
}

// tokenFor issues a token for one of the fixture principals.
func (e *testEnv) tokenFor(t *testing.T, username string) string {
	t.Helper()
	for _, u := range fixture.Principals() {
		if u.Username == username {
			token, err := e.tokens.Issue(u)
			require.NoError(t, err)
			return token
		}
	}
	t.Fatalf("unknown fixture principal %q", username)
	return ""
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, e.mux, method, path, token, body)
}

func serve(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch v := body.(type) {
		case string:
			buf.WriteString(v)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(v))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	return out
}

func discardLog() logging.Logger {
	return logging.Discard()
}

func serveWithHeader(t *testing.T, env *testEnv, method, path, authorization string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	env.mux.ServeHTTP(rr, req)
	return rr
}
