package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"barrierbet/database"

	"github.com/BurntSushi/toml"
)

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL   string
	DatabaseName  string
	StorageDriver string // "postgres" or "sqlite"
	SQLitePath    string

	// Server configuration
	HTTPAddr       string
	GRPCHealthAddr string // Empty disables the gRPC health endpoint

	// Auth configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Game configuration
	StartingBalance   int64 // In cents
	LedgerMaxAttempts int   // Upper bound on compare-and-swap attempts per ledger operation
	SessionExpiry     time.Duration

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables publishing

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

// fileConfig mirrors Config for the optional TOML file. Environment
// variables take precedence over values read from it.
type fileConfig struct {
	Database struct {
		URL    string `toml:"url"`
		Name   string `toml:"name"`
		Driver string `toml:"driver"`
		SQLite string `toml:"sqlite_path"`
	} `toml:"database"`
	Server struct {
		HTTPAddr       string `toml:"http_addr"`
		GRPCHealthAddr string `toml:"grpc_health_addr"`
	} `toml:"server"`
	Auth struct {
		JWTSecret string `toml:"jwt_secret"`
		JWTTTL    string `toml:"jwt_ttl"`
	} `toml:"auth"`
	Game struct {
		StartingBalance   string `toml:"starting_balance"`
		LedgerMaxAttempts int    `toml:"ledger_max_attempts"`
		SessionExpiry     string `toml:"session_expiry"`
	} `toml:"game"`
	NATS struct {
		Servers string `toml:"servers"`
	} `toml:"nats"`
	OTel struct {
		Enabled          bool   `toml:"enabled"`
		ExporterType     string `toml:"exporter_type"`
		OTLPEndpoint     string `toml:"otlp_endpoint"`
		ServiceName      string `toml:"service_name"`
		ExportIntervalMs int    `toml:"export_interval_ms"`
	} `toml:"otel"`
	LogLevel    string `toml:"log_level"`
	Environment string `toml:"environment"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load reads configuration without touching the global instance
func Load() (*Config, error) {
	return load()
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from the optional TOML file and environment variables
func load() (*Config, error) {
	var file fileConfig
	if path := os.Getenv("BARRIERBET_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	config := &Config{
		// Database
		DatabaseURL:   getEnvWithDefault("DATABASE_URL", file.Database.URL),
		DatabaseName:  getEnvWithDefault("DATABASE_NAME", file.Database.Name),
		StorageDriver: getEnvWithDefault("STORAGE_DRIVER", orDefault(file.Database.Driver, StorageDriverPostgres)),
		SQLitePath:    getEnvWithDefault("SQLITE_PATH", orDefault(file.Database.SQLite, "barrierbet.db")),

		// Server
		HTTPAddr:       getEnvWithDefault("HTTP_ADDR", orDefault(file.Server.HTTPAddr, ":8080")),
		GRPCHealthAddr: getEnvWithDefault("GRPC_HEALTH_ADDR", file.Server.GRPCHealthAddr),

		// Auth
		JWTSecret: getEnvWithDefault("JWT_SECRET", file.Auth.JWTSecret),
		JWTTTL:    7 * 24 * time.Hour,

		// Game
		StartingBalance:   100000, // 1000.00
		LedgerMaxAttempts: orDefaultInt(file.Game.LedgerMaxAttempts, 8),
		SessionExpiry:     24 * time.Hour,

		// NATS
		NATSServers: getEnvWithDefault("NATS_SERVERS", file.NATS.Servers),

		// OpenTelemetry
		OTelEnabled:              file.OTel.Enabled,
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", orDefault(file.OTel.ExporterType, "none")),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", orDefault(file.OTel.OTLPEndpoint, "localhost:4317")),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", orDefault(file.OTel.ServiceName, "barrierbet")),
		OTelExportIntervalMillis: orDefaultInt(file.OTel.ExportIntervalMs, 10000),

		// Logging
		LogLevel: getEnvWithDefault("LOG_LEVEL", orDefault(file.LogLevel, "info")),

		// Environment
		Environment: getEnvWithDefault("ENVIRONMENT", file.Environment),
	}

	// Override defaults if values are set
	if ttl := getEnvWithDefault("JWT_TTL", file.Auth.JWTTTL); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("JWT_TTL must be a positive duration: %q", ttl)
		}
		config.JWTTTL = parsed
	}
	if expiry := getEnvWithDefault("SESSION_EXPIRY", file.Game.SessionExpiry); expiry != "" {
		parsed, err := time.ParseDuration(expiry)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("SESSION_EXPIRY must be a positive duration: %q", expiry)
		}
		config.SessionExpiry = parsed
	}
	if balance := getEnvWithDefault("STARTING_BALANCE", file.Game.StartingBalance); balance != "" {
		parsed, err := parseCents(balance)
		if err != nil {
			return nil, fmt.Errorf("STARTING_BALANCE is invalid: %w", err)
		}
		config.StartingBalance = parsed
	}
	if attempts := os.Getenv("LEDGER_MAX_ATTEMPTS"); attempts != "" {
		parsed, err := strconv.Atoi(attempts)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("LEDGER_MAX_ATTEMPTS must be a positive integer: %q", attempts)
		}
		config.LedgerMaxAttempts = parsed
	}
	if enabled := os.Getenv("OTEL_ENABLED"); enabled != "" {
		config.OTelEnabled = enabled == "true" || enabled == "1"
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	config.StorageDriver = strings.ToLower(strings.TrimSpace(config.StorageDriver))
	if config.StorageDriver != StorageDriverPostgres && config.StorageDriver != StorageDriverSQLite {
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverPostgres, StorageDriverSQLite, config.StorageDriver)
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		if config.StorageDriver == StorageDriverPostgres && config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// parseCents parses a decimal amount like "1000" or "12.50" into cents
func parseCents(s string) (int64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("at most two decimal places allowed: %q", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("not a non-negative amount: %q", s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || cents < 0 {
		return 0, fmt.Errorf("not a non-negative amount: %q", s)
	}
	return units*100 + cents, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func orDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}

func orDefaultInt(value, defaultValue int) int {
	if value != 0 {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:              "test",
		StorageDriver:            StorageDriverSQLite,
		SQLitePath:               ":memory:",
		HTTPAddr:                 ":0",
		JWTSecret:                "test-secret",
		JWTTTL:                   time.Hour,
		StartingBalance:          100000,
		LedgerMaxAttempts:        8,
		SessionExpiry:            24 * time.Hour,
		OTelExporterType:         "none",
		OTelServiceName:          "barrierbet-test",
		OTelExportIntervalMillis: 10000,
		LogLevel:                 "info",
	}
}
