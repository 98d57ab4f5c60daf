package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// WriteMode selects which sinks receive each telemetry event.
type WriteMode string

const (
	// WriteModeAdmin forwards to the remote intake only; the intake owns persistence.
	WriteModeAdmin WriteMode = "admin"
	// WriteModeBot skips the remote intake and writes to the local store only.
	WriteModeBot WriteMode = "bot"
	// WriteModeBoth writes to both sinks. Duplicates rows on the intake side.
	WriteModeBoth WriteMode = "both"
)

// Config holds application configuration. Built once at startup, immutable after.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	DefaultTenant string

	Intake IntakeConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitEnabled bool
	IngestRate       float64
	IngestBurst      int

	OTLPEndpoint string
}

// IntakeConfig configures the remote intake sink and the write-mode policy.
type IntakeConfig struct {
	// URL is the intake base URL with trailing slashes stripped.
	URL string
	// CustomerKey is the shared secret sent as X-Customer-Key. Optional.
	CustomerKey string
	// Mode decides which sinks receive each event.
	Mode WriteMode
	// FallbackLocal writes locally when the remote post fails. Only honored in admin mode.
	FallbackLocal bool
	// Timeout bounds each remote attempt, including the single retry.
	Timeout time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:       getenv("APP_SERVICE", "chatlens"),
		AppVersion:    getenv("APP_VERSION", "0.1.0"),
		Environment:   getenv("ENVIRONMENT", "development"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		DefaultTenant: strings.ToLower(getenv("DEFAULT_TENANT", "default")),
		Intake: IntakeConfig{
			URL:           strings.TrimRight(getenv("INTAKE_URL", "http://127.0.0.1:10010"), "/"),
			CustomerKey:   strings.TrimSpace(getenv("INTAKE_CUSTOMER_KEY", "")),
			Mode:          NormalizeWriteMode(getenv("LOG_WRITE_MODE", "admin")),
			FallbackLocal: getenvBool("INTAKE_FALLBACK_LOCAL", false),
			Timeout:       time.Duration(getenvInt("INTAKE_TIMEOUT_MS", 4000)) * time.Millisecond,
		},
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		RedisAddr:         strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		RedisDB:           getenvInt("REDIS_DB", 0),
		RateLimitEnabled:  getenvBool("RATE_LIMIT_ENABLED", false),
		IngestRate:        getenvFloat("RATE_LIMIT_INGEST_RATE", 50),
		IngestBurst:       getenvInt("RATE_LIMIT_INGEST_BURST", 100),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
	}

	return cfg
}

// NormalizeWriteMode folds arbitrary input to one of the three recognized modes.
// Unrecognized values fall back to admin, the safe single-writer default.
func NormalizeWriteMode(raw string) WriteMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(WriteModeBot):
		return WriteModeBot
	case string(WriteModeBoth):
		return WriteModeBoth
	default:
		return WriteModeAdmin
	}
}

// WritesRemote reports whether the remote intake receives events in this mode.
func (m WriteMode) WritesRemote() bool { return m != WriteModeBot }

// WritesLocal reports whether the local store receives events unconditionally.
func (m WriteMode) WritesLocal() bool { return m != WriteModeAdmin }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
