package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vultlabs/vult/pkg/jwtx"
)

// ErrMissingJWTSecret aborts startup: without a strong signing secret the
// service must not come up at all.
var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET must be set to at least 32 bytes")

type Config struct {
	JWTSecret string        // Required: HS256 signing secret, >= 32 bytes
	Issuer    string        // Issuer claim for tokens (default: vult-auth)
	Audience  []string      // Audience claims, space separated (default: vult)
	TokenTTL  time.Duration // Bearer token lifetime (default: 8h)

	PBKDF2Iterations    int // Password hashing work factor (default: 210000, min: 10000)
	MaxConcurrentHashes int // Cap on in-flight PBKDF2 derivations (default: 4)

	DatabaseFile         string        // Path to SQLite database file (default: ./auth.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired invitation cleanup interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
		Issuer:    getEnvOrDefault("AUTH_ISSUER", "vult-auth"),
		Audience:  strings.Fields(getEnvOrDefault("AUTH_AUDIENCE", "vult")),
		TokenTTL:  getEnvDurationOrDefault("AUTH_TOKEN_TTL", jwtx.DefaultTokenTTL),

		PBKDF2Iterations:    getEnvIntOrDefault("AUTH_PBKDF2_ITERATIONS", 210_000),
		MaxConcurrentHashes: getEnvIntOrDefault("AUTH_MAX_CONCURRENT_HASHES", 4),

		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate rejects configurations the service must not start with.
func (c Config) Validate() error {
	if len(c.JWTSecret) < jwtx.MinSecretLength {
		return ErrMissingJWTSecret
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
