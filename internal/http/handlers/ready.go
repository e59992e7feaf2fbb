package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/cabot-property-api/internal/http/respond"
	"github.com/hongminglow/cabot-property-api/internal/logging"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyHandler reports whether the directory can serve logins. Unlike
// /health it touches the database, so orchestrators can gate traffic on it.
type ReadyHandler struct {
	pinger Pinger
	log    logging.Logger
}

// NewReadyHandler builds the readiness endpoint. A nil pinger (in-memory
// backend) is always ready.
func NewReadyHandler(pinger Pinger, log logging.Logger) *ReadyHandler {
	return &ReadyHandler{pinger: pinger, log: log}
}

// Register wires the handler into a ServeMux.
func (h *ReadyHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ready", h.handle)
}

type readyResponse struct {
	Status string `json:"status"`
}

func (h *ReadyHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET, OPTIONS")
		return
	}
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			h.log.Warn(r.Context(), "readiness check failed", "error", err)
			respond.JSON(w, http.StatusServiceUnavailable, readyResponse{Status: "unavailable"})
			return
		}
	}
	respond.JSON(w, http.StatusOK, readyResponse{Status: "ready"})
}
