package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/cabot-property-api/internal/auth"
	"github.com/hongminglow/cabot-property-api/internal/config"
	"github.com/hongminglow/cabot-property-api/internal/http/handlers"
	"github.com/hongminglow/cabot-property-api/internal/logging"
	"github.com/hongminglow/cabot-property-api/internal/middleware"
	"github.com/hongminglow/cabot-property-api/internal/obs"
	"github.com/hongminglow/cabot-property-api/internal/storage"
)

// Deps are the long-lived collaborators built by main.
type Deps struct {
	Users      storage.UserStore
	WorkOrders storage.WorkOrderStore
	Hooks      handlers.WorkOrderHooks
	// Ready backs GET /ready; nil means always ready.
	Ready      handlers.Pinger
	Metrics    *obs.Metrics
	Log        logging.Logger
	StartedAt  time.Time
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

// NewHandler builds the full middleware chain around the route mux.
func NewHandler(cfg config.Config, deps Deps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = obs.NewMetrics()
	}
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now()
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	var verifierOpts []auth.VerifierOption
	if cfg.InsecureDevPassword != "" && !cfg.IsProduction() {
		verifierOpts = append(verifierOpts, auth.WithInsecureDevSecret(cfg.InsecureDevPassword))
	}
	verifier := auth.NewVerifier(deps.Users, verifierOpts...)
	limiter := middleware.NewLoginLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst,
		middleware.TrustProxyHeaders(cfg.TrustProxyHeaders))

	mux := http.NewServeMux()
	handlers.NewHealthHandler(deps.StartedAt, cfg.Version, cfg.Env).Register(mux)
	handlers.NewReadyHandler(deps.Ready, deps.Log).Register(mux)
	handlers.NewAuthHandler(verifier, tokens, deps.Log, deps.Metrics, limiter).Register(mux)
	handlers.NewWorkOrderHandler(deps.WorkOrders, tokens, deps.Hooks, deps.Log).Register(mux)
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	return middleware.CORS(cfg.CORSOrigins,
		middleware.RequestID(
			middleware.Logging(deps.Log,
				deps.Metrics.Instrument(mux))))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
