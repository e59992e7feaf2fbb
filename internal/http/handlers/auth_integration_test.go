package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/cabot-property-api/internal/auth"
	"github.com/hongminglow/cabot-property-api/internal/logging"
	"github.com/hongminglow/cabot-property-api/internal/models"
	"github.com/hongminglow/cabot-property-api/internal/models/dto"
	"github.com/hongminglow/cabot-property-api/internal/storage/postgres"
)

// TestAuthIntegration provisions a principal in a live database, logs in,
// and files a work order with the issued token.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := mustGetEnv(t, "DATABASE_URL")

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	username := fmt.Sprintf("apitest_%d", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user, err := store.CreateUser(ctx, models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		FirstName:    "Api",
		LastName:     "Test",
		Role:         models.RoleTenant,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	tokens := auth.NewTokenManager(fallbackEnv("JWT_SECRET", testSecret), "cabot-integration", time.Hour)
	log := logging.Discard()
	mux := http.NewServeMux()
	NewAuthHandler(auth.NewVerifier(store), tokens, log, nil, nil).Register(mux)
	NewWorkOrderHandler(store, tokens, &recordingHooks{}, log).Register(mux)

	rr := serve(t, mux, http.MethodPost, "/auth/login", "", map[string]string{
		"username": strings.ToUpper(username),
		"password": password,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", rr.Code, rr.Body.String())
	}
	login := decodeBody[dto.LoginResponse](t, rr)
	if login.User.ID != user.ID {
		t.Fatalf("login returned wrong user id: want %d got %d", user.ID, login.User.ID)
	}

	rr = serve(t, mux, http.MethodPost, "/workorders", login.Token, map[string]string{
		"title":           "Integration check",
		"description":     "Created by the integration test",
		"problemCategory": "Routine (2 weeks)",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rr.Code, rr.Body.String())
	}
	created := decodeBody[dto.WorkOrderResponse](t, rr)
	if !strings.HasPrefix(created.WorkOrder.TicketNumber, "WO-") {
		t.Fatalf("unexpected ticket number %q", created.WorkOrder.TicketNumber)
	}

	rr = serve(t, mux, http.MethodGet, "/workorders", login.Token, nil)
	list := decodeBody[dto.WorkOrderListResponse](t, rr)
	if len(list.WorkOrders) != 1 || list.WorkOrders[0].ID != created.WorkOrder.ID {
		t.Fatalf("tenant list = %+v", list.WorkOrders)
	}

	t.Logf("user %s (id=%d) logged in and filed %s", username, user.ID, created.WorkOrder.TicketNumber)
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func fallbackEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
