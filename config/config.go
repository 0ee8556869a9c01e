package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/upb/gateway-policy-hooks/logging"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	Loki          logging.LokiConfig
	QuotaEngine   QuotaEngineConfig
	Upstream      UpstreamConfig
	CORS          CORSConfig
	Observability ObservabilityConfig
	Environment   string `validate:"required"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int `validate:"min=1,max=65535"`
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig holds bearer token settings
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// QuotaEngineConfig holds the connection to the host's quota counters.
// An empty Addr disables usage lookups.
type QuotaEngineConfig struct {
	Addr      string
	Password  string
	DB        int `validate:"min=0"`
	KeyPrefix string
}

// UpstreamConfig holds the origin requests are forwarded to
type UpstreamConfig struct {
	URL string `validate:"omitempty,url"`
}

// CORSConfig holds CORS settings for the HTTP surface
type CORSConfig struct {
	AllowedOrigins []string
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string `validate:"required,oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"` // json or console
}

// Default Loki destination
const (
	defaultLokiURL      = "https://logs-prod-eu-west-0.grafana.net/loki/api/v1/push"
	defaultLokiUsername = "283556"
	defaultLokiJob      = "zupo-api-gw"
	defaultLokiFields   = "customer=tomtom"
)

var validate = validator.New()

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	fields, err := parseFields(getEnv("LOKI_FIELDS", defaultLokiFields))
	if err != nil {
		return nil, fmt.Errorf("invalid LOKI_FIELDS: %w", err)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
			JWTIssuer: getEnv("AUTH_JWT_ISSUER", ""),
		},
		Loki: logging.LokiConfig{
			URL:      getEnv("LOKI_URL", defaultLokiURL),
			Username: getEnv("LOKI_USERNAME", defaultLokiUsername),
			Job:      getEnv("LOKI_JOB", defaultLokiJob),
			Password: os.Getenv("LOKI_PASSWORD"),
			Version:  getEnvAsInt("LOKI_VERSION", 2),
			Fields:   fields,
		},
		QuotaEngine: QuotaEngineConfig{
			Addr:      getEnv("REDIS_ADDR", ""),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("QUOTA_KEY_PREFIX", "quota"),
		},
		Upstream: UpstreamConfig{
			URL: getEnv("UPSTREAM_URL", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"https://*", "http://localhost:*"}),
		},
		Observability: ObservabilityConfig{
			LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if err := c.Loki.Validate(); err != nil {
		return err
	}

	// Bearer tokens can only be verified with a secret in production
	if c.IsProduction() {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required in production")
		}
		if c.Loki.Password == "" {
			return fmt.Errorf("LOKI_PASSWORD is required in production")
		}
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// parseFields parses comma-separated key=value pairs
func parseFields(raw string) (map[string]string, error) {
	fields := make(map[string]string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fields, nil
	}

	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("field must follow KEY=VALUE: %q", item)
		}
		fields[key] = strings.TrimSpace(value)
	}

	return fields, nil
}

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
