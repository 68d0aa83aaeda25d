package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BARRIERBET_CONFIG", "DATABASE_URL", "DATABASE_NAME", "STORAGE_DRIVER", "SQLITE_PATH",
		"HTTP_ADDR", "GRPC_HEALTH_ADDR", "JWT_SECRET", "JWT_TTL", "STARTING_BALANCE",
		"LEDGER_MAX_ATTEMPTS", "SESSION_EXPIRY", "NATS_SERVERS", "OTEL_ENABLED",
		"OTEL_EXPORTER_TYPE", "OTEL_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
		"OTEL_EXPORT_INTERVAL_MS", "LOG_LEVEL", "ENVIRONMENT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, int64(100000), cfg.StartingBalance)
	assert.Equal(t, 8, cfg.LedgerMaxAttempts)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionExpiry)
	assert.Equal(t, "none", cfg.OTelExporterType)
	assert.False(t, cfg.OTelEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432")
	t.Setenv("DATABASE_NAME", "barrierbet")
	t.Setenv("STARTING_BALANCE", "250.50")
	t.Setenv("LEDGER_MAX_ATTEMPTS", "3")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(25050), cfg.StartingBalance)
	assert.Equal(t, 3, cfg.LedgerMaxAttempts)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.OTelEnabled)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://user:pass@db:5432/barrierbet?sslmode=disable", cfg.GetDatabaseURL())
}

func TestLoadFileWithEnvironmentOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "barrierbet.toml")
	content := `
environment = "development"
log_level = "debug"

[database]
driver = "sqlite"
sqlite_path = "/var/lib/barrierbet.db"

[auth]
jwt_secret = "from-file"

[game]
starting_balance = "500"
ledger_max_attempts = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("BARRIERBET_CONFIG", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "/var/lib/barrierbet.db", cfg.SQLitePath)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, int64(50000), cfg.StartingBalance)
	assert.Equal(t, 5, cfg.LedgerMaxAttempts)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing jwt secret",
			env:  map[string]string{"ENVIRONMENT": "production", "DATABASE_URL": "postgres://db"},
		},
		{
			name: "missing database url for postgres",
			env:  map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "x"},
		},
		{
			name: "unknown storage driver",
			env:  map[string]string{"ENVIRONMENT": "test", "STORAGE_DRIVER": "mysql"},
		},
		{
			name: "invalid ledger attempts",
			env:  map[string]string{"ENVIRONMENT": "test", "LEDGER_MAX_ATTEMPTS": "0"},
		},
		{
			name: "invalid starting balance",
			env:  map[string]string{"ENVIRONMENT": "test", "STARTING_BALANCE": "10.001"},
		},
		{
			name: "invalid session expiry",
			env:  map[string]string{"ENVIRONMENT": "test", "SESSION_EXPIRY": "soon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSetTestConfig(t *testing.T) {
	defer ResetConfig()

	testConfig := NewTestConfig()
	testConfig.StartingBalance = 42
	SetTestConfig(testConfig)

	assert.Same(t, testConfig, Get())
	assert.Equal(t, int64(42), Get().StartingBalance)
}
