package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AuthBackend selects where principals are looked up. It is chosen once at
// startup and never switched per request.
type AuthBackend string

const (
	BackendDatabase AuthBackend = "database"
	BackendFixture  AuthBackend = "fixture"
)

const (
	// DefaultJWTSecret keeps tokens issued by earlier deployments verifiable.
	// Production deployments must override it with JWT_SECRET.
	DefaultJWTSecret = "cabot-property-management-secret-key-2024"
	// DefaultWebhookSecret is the shared secret sent to the automation service
	// when N8N_WEBHOOK_SECRET is not set.
	DefaultWebhookSecret = "cabot-n8n-secret-2024"

	envProduction = "production"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port           string
	Env            string
	Version        string
	LogLevel       string
	AuthBackend    AuthBackend
	DatabaseURL    string
	MigrateOnStart bool

	JWTSecret          string
	JWTSecretDefaulted bool
	JWTIssuer          string
	JWTTTL             time.Duration
	CORSOrigins        []string

	// InsecureDevPassword is accepted for principals without a stored digest.
	// Development only; Load rejects it in production.
	InsecureDevPassword string

	WebhookBaseURL string
	WebhookSecret  string
	WebhookTimeout time.Duration

	LoginRatePerMinute int
	LoginRateBurst     int
	// TrustProxyHeaders makes the login limiter key on X-Forwarded-For.
	// Only set it behind a proxy that always writes that header.
	TrustProxyHeaders bool

	SeedPassword string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:                fallback(os.Getenv("PORT"), "8080"),
		Env:                 strings.ToLower(fallback(os.Getenv("APP_ENV"), envProduction)),
		Version:             fallback(os.Getenv("APP_VERSION"), "1.0.0"),
		LogLevel:            fallback(os.Getenv("LOG_LEVEL"), "info"),
		AuthBackend:         AuthBackend(strings.ToLower(fallback(os.Getenv("AUTH_BACKEND"), string(BackendDatabase)))),
		DatabaseURL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MigrateOnStart:      parseBool(os.Getenv("MIGRATE_ON_START")),
		JWTSecret:           strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:           fallback(os.Getenv("JWT_ISSUER"), "cabot-property-management"),
		JWTTTL:              time.Duration(positiveInt(os.Getenv("JWT_TTL_HOURS"), 24)) * time.Hour,
		CORSOrigins:         parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		InsecureDevPassword: os.Getenv("INSECURE_DEV_PASSWORD"),
		WebhookBaseURL:      strings.TrimRight(strings.TrimSpace(os.Getenv("N8N_BASE_URL")), "/"),
		WebhookSecret:       fallback(os.Getenv("N8N_WEBHOOK_SECRET"), DefaultWebhookSecret),
		WebhookTimeout:      time.Duration(positiveInt(os.Getenv("N8N_TIMEOUT_SECONDS"), 5)) * time.Second,
		LoginRatePerMinute:  nonNegativeInt(os.Getenv("LOGIN_RATE_PER_MINUTE"), 0),
		LoginRateBurst:      positiveInt(os.Getenv("LOGIN_RATE_BURST"), 5),
		TrustProxyHeaders:   parseBool(os.Getenv("TRUST_PROXY_HEADERS")),
		SeedPassword:        fallback(os.Getenv("SEED_PASSWORD"), "password123"),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DefaultJWTSecret
		cfg.JWTSecretDefaulted = true
	}

	switch cfg.AuthBackend {
	case BackendDatabase:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required when AUTH_BACKEND=database")
		}
	case BackendFixture:
		if cfg.IsProduction() {
			return Config{}, errors.New("AUTH_BACKEND=fixture must not be used when APP_ENV=production")
		}
	default:
		return Config{}, fmt.Errorf("unknown AUTH_BACKEND %q", cfg.AuthBackend)
	}

	if cfg.InsecureDevPassword != "" && cfg.IsProduction() {
		return Config{}, errors.New("INSECURE_DEV_PASSWORD must not be set when APP_ENV=production")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// IsProduction reports whether dev-only switches must stay off.
func (c Config) IsProduction() bool {
	return c.Env == envProduction
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}

func positiveInt(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}

func nonNegativeInt(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n >= 0 {
		return n
	}
	return def
}
