// Package config loads slurmrestd's environment-driven configuration,
// grounded on lib/config.go: one struct, one validator.Struct call,
// env vars read once at startup rather than looked up ad hoc.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config is slurmrestd's full runtime configuration: the listen
// address, the Slurm release/version triple and plugin identity
// stamped into every envelope's meta block (spec.md §6), the reference
// backend's Postgres connection, and the auth boundary's OAuth2/OIDC
// settings.
type Config struct {
	Listen string `validate:"required"`

	PluginType string `validate:"required"`
	PluginName string `validate:"required"`

	SlurmRelease string `validate:"required"`
	SlurmMajor   int    `validate:"gte=0"`
	SlurmMinor   int    `validate:"gte=0"`
	SlurmMicro   int    `validate:"gte=0"`

	PostgresHost     string `validate:"required"`
	PostgresPort     string `validate:"required"`
	PostgresDB       string `validate:"required"`
	PostgresUser     string `validate:"required"`
	PostgresPassword string

	AuthIssuer       string `validate:"required,url"`
	AuthClientID     string `validate:"required"`
	AuthClientSecret string `validate:"required"`
	AuthRedirectURL  string `validate:"required,url"`
	AuthJWKSURL      string `validate:"omitempty,url"`
	AuthSessionKey   string `validate:"required,min=32"`

	RedisAddr string

	TelemetryEndpoint   string
	TelemetrySampleRate float64
}

// DSN renders the PostgreSQL connection string for the reference
// backend, mirroring lib/config.go's DSN() method.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresUser, c.PostgresPassword,
	)
}

// Load reads every setting from the environment under the
// SLURMRESTD_ prefix and validates it, returning an error instead of
// lib/config.go's init()-time panic so cmd/slurmrestd can log and exit
// cleanly.
func Load() (*Config, error) {
	c := &Config{
		Listen: getenv("SLURMRESTD_LISTEN", ":6820"),

		PluginType: getenv("SLURMRESTD_PLUGIN_TYPE", "openapi/v0.0.39"),
		PluginName: getenv("SLURMRESTD_PLUGIN_NAME", "REST v0.0.39"),

		SlurmRelease: getenv("SLURMRESTD_SLURM_RELEASE", "23.11.0"),
		SlurmMajor:   getenvInt("SLURMRESTD_SLURM_MAJOR", 23),
		SlurmMinor:   getenvInt("SLURMRESTD_SLURM_MINOR", 11),
		SlurmMicro:   getenvInt("SLURMRESTD_SLURM_MICRO", 0),

		PostgresHost:     getenv("SLURMRESTD_PG_HOST", "localhost"),
		PostgresPort:     getenv("SLURMRESTD_PG_PORT", "5432"),
		PostgresDB:       os.Getenv("SLURMRESTD_PG_DB"),
		PostgresUser:     os.Getenv("SLURMRESTD_PG_USER"),
		PostgresPassword: os.Getenv("SLURMRESTD_PG_PASSWORD"),

		AuthIssuer:       os.Getenv("SLURMRESTD_AUTH_ISSUER"),
		AuthClientID:     os.Getenv("SLURMRESTD_AUTH_CLIENT_ID"),
		AuthClientSecret: os.Getenv("SLURMRESTD_AUTH_CLIENT_SECRET"),
		AuthRedirectURL:  os.Getenv("SLURMRESTD_AUTH_REDIRECT_URL"),
		AuthJWKSURL:      os.Getenv("SLURMRESTD_AUTH_JWKS_URL"),
		AuthSessionKey:   os.Getenv("SLURMRESTD_AUTH_SESSION_KEY"),

		RedisAddr: os.Getenv("SLURMRESTD_REDIS_ADDR"),

		TelemetryEndpoint:   os.Getenv("SLURMRESTD_TELEMETRY_ENDPOINT"),
		TelemetrySampleRate: getenvFloat("SLURMRESTD_TELEMETRY_SAMPLE_RATE", 1.0),
	}

	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
