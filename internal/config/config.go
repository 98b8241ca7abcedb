// Package config manages application configuration
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"

	// Database: "memory", a SQLite file path, or a postgres:// URL
	DatabaseURL string

	// Security
	APISecretKey      string // shared secret expected in the x-auth-token header
	DashboardPassword string // plain text or a bcrypt hash
	SecretKey         string // for JWT signing

	// Session settings
	SessionDuration time.Duration

	// Ingestion
	CSVMaxRows     int
	UploadMaxBytes int64

	// Audit fan-out
	KafkaBrokers    []string
	KafkaAuditTopic string

	// Feature flags
	EnableMetrics bool
}

// Load reads configuration from the environment, after applying a .env file
// when one exists
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] failed to read .env: %v", err)
	}

	return &Config{
		Port:              getEnv("BRANDSALES_PORT", "8080"),
		Environment:       getEnv("BRANDSALES_ENV", "development"),
		DatabaseURL:       getEnv("BRANDSALES_DATABASE_URL", "brandsales.db"),
		APISecretKey:      getEnv("BRANDSALES_API_SECRET_KEY", ""),
		DashboardPassword: getEnv("BRANDSALES_DASHBOARD_PASSWORD", ""),
		SecretKey:         getEnv("BRANDSALES_SECRET_KEY", "dev-secret-key-change-in-production"),
		SessionDuration:   getDurationEnv("BRANDSALES_SESSION_DURATION", 24*time.Hour),
		CSVMaxRows:        getIntEnv("BRANDSALES_CSV_MAX_ROWS", 10000),
		UploadMaxBytes:    int64(getIntEnv("BRANDSALES_UPLOAD_MAX_BYTES", 10<<20)),
		KafkaBrokers:      getListEnv("BRANDSALES_KAFKA_BROKERS"),
		KafkaAuditTopic:   getEnv("BRANDSALES_KAFKA_AUDIT_TOPIC", "brandsales.ingest-audit"),
		EnableMetrics:     getBoolEnv("BRANDSALES_ENABLE_METRICS", true),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
