package config

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	RegisterTestingT(t)

	for _, key := range []string{"PORT", "DATABASE_URL", "HEALTH_CHECK_TIMEOUT", "AUTH_JWT_SECRET", "ENFORCE_HTTPS", "GIN_MODE", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()

	Expect(err).To(BeNil())
	Expect(cfg.HTTP.Port).To(Equal("8080"))
	Expect(cfg.Database.URL).To(Equal("todoitems.db"))
	Expect(cfg.HealthCheckTimeout).To(Equal(2 * time.Second))
	Expect(cfg.HTTP.ShutdownTimeout).To(Equal(10 * time.Second))
	Expect(cfg.AuthJWTSecret).To(BeEmpty())
	Expect(cfg.EnforceHTTPS).To(BeFalse())
	Expect(cfg.DatabaseDriver()).To(Equal(DriverSQLite))
}

func TestLoad_Overrides(t *testing.T) {
	RegisterTestingT(t)

	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/todo")
	t.Setenv("HEALTH_CHECK_TIMEOUT", "500ms")
	t.Setenv("DB_LOG_QUERIES", "true")
	t.Setenv("METRICS_PORT", "")

	cfg, err := Load()

	Expect(err).To(BeNil())
	Expect(cfg.HTTP.Port).To(Equal("9000"))
	Expect(cfg.DatabaseDriver()).To(Equal(DriverPostgres))
	Expect(cfg.HealthCheckTimeout).To(Equal(500 * time.Millisecond))
	Expect(cfg.Database.LogQueries).To(BeTrue())
	Expect(cfg.Telemetry.MetricsPort).To(BeEmpty())
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestValidate(t *testing.T) {
	cfg := &AppConfig{
		HTTP: HTTPConfig{
			Port:            "8080",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Database:           DatabaseConfig{URL: "todoitems.db"},
		HealthCheckTimeout: time.Second,
	}

	t.Run("should accept a complete config", func(t *testing.T) {
		assert.NoError(t, cfg.Validate())
	})

	t.Run("should reject an empty database url", func(t *testing.T) {
		broken := *cfg
		broken.Database.URL = " "

		assert.ErrorContains(t, broken.Validate(), "DATABASE_URL")
	})

	t.Run("should reject a non-positive health check timeout", func(t *testing.T) {
		broken := *cfg
		broken.HealthCheckTimeout = 0

		assert.ErrorContains(t, broken.Validate(), "HEALTH_CHECK_TIMEOUT")
	})
}
