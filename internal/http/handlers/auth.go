package handlers

import (
	"errors"
	"net/http"

	"github.com/hongminglow/cabot-property-api/internal/auth"
	"github.com/hongminglow/cabot-property-api/internal/http/respond"
	"github.com/hongminglow/cabot-property-api/internal/logging"
	"github.com/hongminglow/cabot-property-api/internal/middleware"
	"github.com/hongminglow/cabot-property-api/internal/models/dto"
)

// LoginObserver records login outcomes.
type LoginObserver interface {
	ObserveLogin(outcome string)
}

// AuthHandler owns the login endpoint.
type AuthHandler struct {
	verifier *auth.Verifier
	tokens   *auth.TokenManager
	log      logging.Logger
	observer LoginObserver
	limiter  *middleware.LoginLimiter
}

// NewAuthHandler constructs the handler. observer and limiter may be nil.
func NewAuthHandler(verifier *auth.Verifier, tokens *auth.TokenManager, log logging.Logger, observer LoginObserver, limiter *middleware.LoginLimiter) *AuthHandler {
	return &AuthHandler{verifier: verifier, tokens: tokens, log: log, observer: observer, limiter: limiter}
}

// Register attaches auth routes to the mux. /login is kept for older clients.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	login := h.limiter.Wrap(http.HandlerFunc(h.handleLogin))
	mux.Handle("/auth/login", login)
	mux.Handle("/login", login)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST, OPTIONS")
		return
	}
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.observe("bad_request")
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := req.Validate(); err != nil {
		h.observe("bad_request")
		respond.Error(w, http.StatusBadRequest, "Username or email and password are required")
		return
	}

	user, err := h.verifier.Verify(r.Context(), req.LoginName(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrValidation):
			h.observe("bad_request")
			respond.Error(w, http.StatusBadRequest, "Username or email and password are required")
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.observe("invalid")
			h.log.Info(r.Context(), "login rejected", "login_name", req.LoginName())
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			h.observe("error")
			h.log.Error(r.Context(), "login failed", "login_name", req.LoginName(), "error", err)
			respond.Error(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.observe("error")
		h.log.Error(r.Context(), "issue token failed", "user_id", user.ID, "error", err)
		respond.Error(w, http.StatusInternalServerError, msgInternal)
		return
	}

	h.observe("success")
	h.log.Info(r.Context(), "login succeeded", "user_id", user.ID, "role", string(user.Role))
	respond.JSON(w, http.StatusOK, dto.LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    dto.ProfileFrom(user),
	})
}

func (h *AuthHandler) observe(outcome string) {
	if h.observer != nil {
		h.observer.ObserveLogin(outcome)
	}
}
