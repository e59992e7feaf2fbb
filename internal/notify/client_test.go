package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPostSendsEnvelope(t *testing.T) {
	var (
		gotPath  string
		gotAgent string
		gotBody  map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "shh", time.Second, nil)
	if err := c.Post(context.Background(), WorkOrderCreated, map[string]any{"workOrder": map[string]any{"id": 1}}); err != nil {
		t.Fatalf("Post error: %v", err)
	}

	if gotPath != "/webhook/work-order-created" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAgent != "Cabot-Property-Management/1.0" {
		t.Fatalf("user agent = %q", gotAgent)
	}
	if gotBody["secret"] != "shh" || gotBody["source"] != "cabot-property-management" {
		t.Fatalf("envelope fields missing: %v", gotBody)
	}
	if _, ok := gotBody["timestamp"].(string); !ok {
		t.Fatalf("timestamp missing: %v", gotBody)
	}
	if _, ok := gotBody["workOrder"]; !ok {
		t.Fatalf("data not merged: %v", gotBody)
	}
}

func TestPostNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow inactive", http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "s", time.Second, nil).Post(context.Background(), WorkOrderCompleted, nil)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "workflow inactive") {
		t.Fatalf("error lacks status/body: %v", err)
	}
}

func TestPostWithoutBaseURL(t *testing.T) {
	if err := NewClient("", "s", time.Second, nil).Post(context.Background(), WorkOrderUpdated, nil); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
