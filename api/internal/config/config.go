package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all dynamic configuration for the Sealbox API.
// 🛡️ SLA: The browser UI is an external collaborator behind CORS; nothing
// in here describes it beyond the allowed origins.
type Config struct {
	Environment    string // "development" or "production"
	Port           string
	AllowedOrigins []string

	// 🛡️ Zero-Trust Identity
	JWTSecret  string
	AccessHash string // optional bcrypt hash gating session creation
	SessionTTL time.Duration

	// Optional audit store; the service runs fine without it
	DatabaseURL string
}

// Load parses the environment and applies sensible default fallbacks.
func Load() *Config {
	// .env is a local-development convenience; absence is not an error
	_ = godotenv.Load()

	env := getEnv("SEALBOX_ENV", "production")

	// 1. 🛡️ Zero-Trust: Fail Fast on Missing Secrets
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		if env == "production" {
			log.Fatal("🚨 [FATAL] JWT_SECRET environment variable is required in production.")
		}
		jwtSecret = "sealbox-dev-secret-not-for-production-use"
	}

	// 2. 🛡️ Strict CORS: Must be explicitly defined in Production
	corsOrigins := getEnv("CORS_ALLOWED_ORIGINS", "")
	if corsOrigins == "" {
		if env == "production" {
			log.Fatal("🚨 [FATAL] CORS_ALLOWED_ORIGINS environment variable is required in production.")
		}
		corsOrigins = "http://localhost:5173"
	}

	ttl := 30 * time.Minute
	if raw := getEnv("SESSION_TTL_MINUTES", ""); raw != "" {
		mins, err := strconv.Atoi(raw)
		if err != nil || mins <= 0 {
			log.Fatalf("🚨 [FATAL] SESSION_TTL_MINUTES must be a positive integer, got %q", raw)
		}
		ttl = time.Duration(mins) * time.Minute
	}

	return &Config{
		Environment:    env,
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(corsOrigins, ","),
		JWTSecret:      jwtSecret,
		AccessHash:     getEnv("SEALBOX_ACCESS_HASH", ""),
		SessionTTL:     ttl,
		DatabaseURL:    getEnv("DATABASE_URL", ""),
	}
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
