package handlers

import (
	"net/http"
	"time"

	"github.com/hongminglow/cabot-property-api/internal/http/respond"
)

// HealthHandler reports liveness. It never touches the directory.
type HealthHandler struct {
	startedAt   time.Time
	version     string
	environment string
	now         func() time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, version, environment string) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, version: version, environment: environment, now: time.Now}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handle)
}

type healthResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET, OPTIONS")
		return
	}
	now := h.now()
	respond.JSON(w, http.StatusOK, healthResponse{
		Status:      "OK",
		Message:     "Cabot Property Management API is running",
		Timestamp:   now.UTC().Format(time.RFC3339),
		Version:     h.version,
		Environment: h.environment,
		Uptime:      now.Sub(h.startedAt).Truncate(time.Second).String(),
	})
}
