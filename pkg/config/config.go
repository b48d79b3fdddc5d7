package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type AppConfig struct {
	AppName     string
	Environment string

	HTTP      HTTPConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	Telemetry TelemetryConfig

	HealthCheckTimeout time.Duration
	AuthJWTSecret      string
	EnforceHTTPS       bool
}

type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type TelemetryConfig struct {
	MetricsPort  string
	OTLPEndpoint string
}

// Load reads the environment, optionally seeded from a .env file.
func Load() (*AppConfig, error) {
	_ = godotenv.Load(".env")

	cfg := &AppConfig{
		AppName:     getString("APP_NAME", "todoitems"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Port:            getString("PORT", "8080"),
			ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getString("DATABASE_URL", "todoitems.db"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 0),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 0),
			ConnMaxLifetime: getDuration("DB_CONN_LIFETIME", 0),
			LogQueries:      getBool("DB_LOG_QUERIES", false),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Telemetry: TelemetryConfig{
			MetricsPort:  getOptional("METRICS_PORT", "9091"),
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
		HealthCheckTimeout: getDuration("HEALTH_CHECK_TIMEOUT", 2*time.Second),
		AuthJWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
		EnforceHTTPS:       getBool("ENFORCE_HTTPS", false) || os.Getenv("GIN_MODE") == "release",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Database.URL) == "" {
		errs = append(errs, errors.New("DATABASE_URL must not be empty"))
	}

	if c.HTTP.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}

	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 || c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server timeouts must be positive"))
	}

	if c.HealthCheckTimeout <= 0 {
		errs = append(errs, errors.New("HEALTH_CHECK_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// DatabaseDriver picks the store from the DATABASE_URL scheme. Anything that
// is not a postgres URL is treated as a SQLite path or DSN.
func (c *AppConfig) DatabaseDriver() DatabaseDriver {
	url := strings.ToLower(c.Database.URL)

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}

	return DriverSQLite
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getOptional returns fallback only when key is unset; an explicit empty
// value disables the feature.
func getOptional(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
