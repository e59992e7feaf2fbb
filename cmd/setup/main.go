// Command setup applies the schema and provisions the development principals.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/cabot-property-api/internal/auth"
	"github.com/hongminglow/cabot-property-api/internal/config"
	"github.com/hongminglow/cabot-property-api/internal/logging"
	"github.com/hongminglow/cabot-property-api/internal/storage"
	"github.com/hongminglow/cabot-property-api/internal/storage/fixture"
	"github.com/hongminglow/cabot-property-api/internal/storage/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel).With("command", "setup")
	if err := run(cfg, logger); err != nil {
		logger.Error(context.Background(), "setup failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger logging.Logger) error {
	if cfg.AuthBackend != config.BackendDatabase {
		return fmt.Errorf("setup requires AUTH_BACKEND=%s", config.BackendDatabase)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info(ctx, "migrations applied")

	if err := seed(ctx, store, cfg.SeedPassword, logger); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

func seed(ctx context.Context, users storage.UserProvisioner, password string, logger logging.Logger) error {
	hash, err := auth.HashPassword(password, 0)
	if err != nil {
		return err
	}
	for _, u := range fixture.Principals() {
		u.ID = 0
		u.PasswordHash = hash
		created, err := users.CreateUser(ctx, u)
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			logger.Info(ctx, "principal already present", "username", u.Username)
		case err != nil:
			return err
		default:
			logger.Info(ctx, "principal created", "username", created.Username, "id", created.ID, "role", string(created.Role))
		}
	}
	return nil
}
