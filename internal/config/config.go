package config

import (
	"fmt"
	"os"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	TokenEncryptionKey string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	OAuthStateSecret   string

	SMTPHost     string
	SMTPPort     string
	EmailUser    string
	EmailPass    string
	EmailFrom    string
	FrontendURL  string
	CORSOrigin   string

	ReminderSchedule string
	Timezone         string

	Env       string
	Port      string
	LogLevel  string
	LogFormat string
	SeedDev   bool
}

// Load reads configuration from environment variables. It fails when a value
// with no safe default is missing; in particular there is no fallback JWT
// secret — the process must be given one.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenEncryptionKey: os.Getenv("TOKEN_ENCRYPTION_KEY"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		OAuthStateSecret:   os.Getenv("OAUTH_STATE_SECRET"),

		SMTPHost:    getEnvWithDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:    getEnvWithDefault("SMTP_PORT", "587"),
		EmailUser:   os.Getenv("EMAIL_USER"),
		EmailPass:   os.Getenv("EMAIL_PASSWORD"),
		EmailFrom:   getEnvWithDefault("EMAIL_FROM", "focusaint <no-reply@focusaint.app>"),
		FrontendURL: getEnvWithDefault("FRONTEND_URL", "http://localhost:3000"),
		CORSOrigin:  getEnvWithDefault("CORS_ORIGIN", "http://localhost:3000"),

		ReminderSchedule: getEnvWithDefault("REMINDER_SCHEDULE", "0 20 * * *"),
		Timezone:         getEnvWithDefault("TIMEZONE", "UTC"),

		Env:       getEnvWithDefault("ENV", "development"),
		Port:      getEnvWithDefault("PORT", "8080"),
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),
		SeedDev:   os.Getenv("SEED_DEV_DATA") == "true",
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required; generate one with: openssl rand -hex 32")
	}
	if cfg.OAuthStateSecret == "" {
		// OAuth state cookies fall back to the JWT secret rather than an
		// inline constant.
		cfg.OAuthStateSecret = cfg.JWTSecret
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
