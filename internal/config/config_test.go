package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	env := map[string]string{
		"SLURMRESTD_PG_DB":              "slurm_acct_db",
		"SLURMRESTD_PG_USER":            "slurm",
		"SLURMRESTD_AUTH_ISSUER":        "https://auth.example.com/",
		"SLURMRESTD_AUTH_CLIENT_ID":     "client-id",
		"SLURMRESTD_AUTH_CLIENT_SECRET": "client-secret",
		"SLURMRESTD_AUTH_REDIRECT_URL":  "https://facade.example.com/auth/callback",
		"SLURMRESTD_AUTH_SESSION_KEY":   "01234567890123456789012345678901",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("SLURMRESTD_LISTEN")
	os.Unsetenv("SLURMRESTD_SLURM_MAJOR")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Listen != ":6820" {
		t.Fatalf("Listen = %q, want default", c.Listen)
	}
	if c.SlurmMajor != 23 {
		t.Fatalf("SlurmMajor = %d, want default 23", c.SlurmMajor)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SLURMRESTD_LISTEN", ":9999")
	t.Setenv("SLURMRESTD_SLURM_MAJOR", "24")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Listen != ":9999" {
		t.Fatalf("Listen = %q, want :9999", c.Listen)
	}
	if c.SlurmMajor != 24 {
		t.Fatalf("SlurmMajor = %d, want 24", c.SlurmMajor)
	}
}

func TestLoadMissingRequiredFieldFails(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("SLURMRESTD_AUTH_ISSUER")

	if _, err := Load(); err == nil {
		t.Fatal("Load: want error for missing AuthIssuer, got nil")
	}
}

func TestLoadInvalidURLFails(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SLURMRESTD_AUTH_ISSUER", "not-a-url")

	if _, err := Load(); err == nil {
		t.Fatal("Load: want error for non-URL AuthIssuer, got nil")
	}
}

func TestDSNIncludesAllFields(t *testing.T) {
	c := &Config{
		PostgresHost:     "db.example.com",
		PostgresPort:     "5432",
		PostgresDB:       "slurm_acct_db",
		PostgresUser:     "slurm",
		PostgresPassword: "secret",
	}
	dsn := c.DSN()
	want := "host=db.example.com port=5432 dbname=slurm_acct_db user=slurm password=secret sslmode=disable"
	if dsn != want {
		t.Fatalf("DSN = %q, want %q", dsn, want)
	}
}
