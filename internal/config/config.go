package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values. Tags like
// `envconfig:"HTTP_SERVER_PORT"` name the environment variable,
// `default` supplies a fallback and `required:"true"` makes it
// mandatory.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPServer ServerConfig
	Postgres   PostgresConfig
	Auth       AuthConfig
	Provider   ProviderConfig
	Admin      AdminConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// PostgresConfig holds PostgreSQL connection details.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBName   string `envconfig:"POSTGRES_DBNAME" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// DSN constructs the Data Source Name for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName, pc.SSLMode)
}

// AuthConfig holds token signing settings. Issued tokens carry the
// identity provider's subject as their sub claim.
type AuthConfig struct {
	JWTSecret       string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"30m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`
}

// ProviderConfig points at the external identity provider that owns
// credentials, password resets and email verification.
type ProviderConfig struct {
	BaseURL        string        `envconfig:"AUTH_PROVIDER_URL" required:"true"`
	APIKey         string        `envconfig:"AUTH_PROVIDER_KEY" required:"true"`
	ServiceRoleKey string        `envconfig:"AUTH_PROVIDER_SERVICE_KEY" default:""`
	Timeout        time.Duration `envconfig:"AUTH_PROVIDER_TIMEOUT" default:"10s"`
}

// AdminConfig drives the one-time admin bootstrap. SetupSecret gates
// the bootstrap endpoint; an empty value disables it entirely.
type AdminConfig struct {
	Email       string `envconfig:"ADMIN_EMAIL" default:""`
	Password    string `envconfig:"ADMIN_PASSWORD" default:""`
	FullName    string `envconfig:"ADMIN_FULL_NAME" default:"Admin"`
	SetupSecret string `envconfig:"ADMIN_SETUP_SECRET" default:""`
}

// CORSConfig holds the comma-separated list of allowed origins.
type CORSConfig struct {
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// Origins splits the configured origins string into a list.
func (cc *CORSConfig) Origins() []string {
	parts := strings.Split(cc.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Load initializes the configuration from environment variables. It
// should be called once during application startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	return &cfg, nil
}
