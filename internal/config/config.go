package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string
	ClientURL  string

	// Database configuration
	DatabaseURL      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// RabbitMQ configuration (audit events)
	RabbitMQURL string

	// Encryption key for profile payloads, base64 (32 bytes decoded).
	// Empty means a fresh per-process key is generated; previously stored
	// rows become unreadable.
	EncryptionKey string

	// File storage
	DataDir   string
	ImagesDir string

	// Geocoding
	GeocodeTimeoutSeconds int

	// Retention sweep
	RetentionMaxAgeDays int

	// Rate limiting
	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int
}

// Load reads configuration from the environment, with a .env file as an
// optional source for local development.
func Load() (*Config, error) {
	// Ignore error: .env is optional, real deployments use env vars
	_ = godotenv.Load()

	cfg := &Config{
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort: getEnv("SERVER_PORT", "5000"),
		ClientURL:  getEnv("CLIENT_URL", "http://localhost:3000"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getEnv("POSTGRES_DB", "profiles"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		EncryptionKey: os.Getenv("PROFILE_ENCRYPTION_KEY"),

		DataDir:   getEnv("DATA_DIR", "./data"),
		ImagesDir: getEnv("IMAGES_DIR", "./data/profile_data/images"),

		GeocodeTimeoutSeconds: getEnvInt("GEOCODE_TIMEOUT_SECONDS", 10),
		RetentionMaxAgeDays:   getEnvInt("RETENTION_MAX_AGE_DAYS", 30),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitRPS:     getEnvInt("RATE_LIMIT_RPS", 20),
		RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 40),
	}

	if cfg.ServerPort == "" {
		return nil, fmt.Errorf("SERVER_PORT must not be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
