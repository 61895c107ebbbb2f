package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"HTTP_SERVER_PORT"` specify the environment variable
// name; `default:""` provides a fallback and `required:"true"` makes a
// variable mandatory.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	HttpServer ServerConfig
	Auth       AuthConfig
	Postgres   PostgresConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"5000"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// AuthConfig holds role-gate settings. RoleHeader names the request header
// the browser client uses to assert the caller's role.
type AuthConfig struct {
	RoleHeader string `envconfig:"AUTH_ROLE_HEADER" default:"UserRole"`
}

// PostgresConfig holds PostgreSQL database connection details.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBName   string `envconfig:"POSTGRES_DBNAME" required:"true"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

var cfg Config

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	log.Println("Loading service configuration...")
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	log.Printf("Configuration loaded successfully for APP_ENV: %s", cfg.AppEnv)
	return &cfg, nil
}
