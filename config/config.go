// Package config loads the app configuration from environment variables,
// with a .env file honored when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob of the server.
type Config struct {
	Port            string
	DSN             string
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// SecureCookies disables the Secure cookie flag for plain-HTTP dev runs.
	SecureCookies bool
	Debug         bool
	SeedData      bool
}

// Load reads the environment, applying the documented fallbacks.
func Load() *Config {
	// missing .env is fine, the environment wins anyway
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DSN:             getEnv("DATABASE_DSN", "file:estoque.db?cache=shared"),
		JWTSecret:       getEnv("JWT_SECRET", "troque-este-segredo-em-producao"),
		JWTIssuer:       getEnv("JWT_ISSUER", "estoque"),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		SecureCookies:   getEnvBool("SECURE_COOKIES", true),
		Debug:           getEnvBool("DEBUG", false),
		SeedData:        getEnvBool("SEED_DATA", true),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
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
