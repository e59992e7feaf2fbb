package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/cabot-property-api/internal/config"
	"github.com/hongminglow/cabot-property-api/internal/http/handlers"
	"github.com/hongminglow/cabot-property-api/internal/logging"
	"github.com/hongminglow/cabot-property-api/internal/notify"
	"github.com/hongminglow/cabot-property-api/internal/obs"
	"github.com/hongminglow/cabot-property-api/internal/server"
	"github.com/hongminglow/cabot-property-api/internal/storage"
	"github.com/hongminglow/cabot-property-api/internal/storage/fixture"
	"github.com/hongminglow/cabot-property-api/internal/storage/postgres"
)

type backend interface {
	storage.UserStore
	storage.WorkOrderStore
}

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel).With("service", "cabot-property-api", "env", cfg.Env)
	if err := run(cfg, logger); err != nil {
		logger.Error(context.Background(), "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger logging.Logger) error {
	ctx := context.Background()
	if cfg.JWTSecretDefaulted {
		logger.Warn(ctx, "JWT_SECRET not set; using the built-in default signing secret")
	}

	store, closeStore, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init backend: %w", err)
	}
	defer closeStore()

	metrics := obs.NewMetrics()
	var poster notify.Poster
	if cfg.WebhookBaseURL != "" {
		poster = notify.NewClient(cfg.WebhookBaseURL, cfg.WebhookSecret, cfg.WebhookTimeout, nil)
	} else {
		logger.Info(ctx, "N8N_BASE_URL not set; work order notifications disabled")
	}
	hooks := notify.NewHooks(poster, logger, metrics)
	defer hooks.Wait()

	deps := server.Deps{
		Users:      store,
		WorkOrders: store,
		Hooks:      hooks,
		Metrics:    metrics,
		Log:        logger,
		StartedAt:  time.Now(),
	}
	if pinger, ok := store.(handlers.Pinger); ok {
		deps.Ready = pinger
	}
	srv := server.New(cfg, deps)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "cabot property api listening", "addr", cfg.HTTPAddress(), "backend", string(cfg.AuthBackend))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-sigCh:
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Warn(ctx, "graceful shutdown error", "error", err)
	}
	logger.Info(ctx, "shutdown complete")
	return nil
}

func openBackend(ctx context.Context, cfg config.Config, logger logging.Logger) (backend, func(), error) {
	switch cfg.AuthBackend {
	case config.BackendFixture:
		logger.Warn(ctx, "using in-memory fixture backend", "env", cfg.Env)
		store, err := fixture.New(cfg.SeedPassword, 0)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case config.BackendDatabase:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.MigrateOnStart {
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info(ctx, "database migrations applied")
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend %q", cfg.AuthBackend)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
