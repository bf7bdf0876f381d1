package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DatabasePath   string
	JWTSecret      string
	AllowedOrigin  string
	SendGridAPIKey string
	MailFrom       string
	MailFromName   string
	// ResetLinkBase is the frontend URL the reset email points at; the
	// plaintext reset secret is appended as the final path segment.
	ResetLinkBase string
	// ResetReaperCron is the schedule for clearing expired reset tokens.
	ResetReaperCron string
}

// Load loads configuration from environment variables or sets defaults.
// The JWT secret has no default: a process without one must not start,
// since it would otherwise sign tokens with an empty key.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	return &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./fintrack.db"),
		JWTSecret:       secret,
		AllowedOrigin:   getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		SendGridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		MailFrom:        getEnv("MAIL_FROM", "donotreply@fintrack.app"),
		MailFromName:    getEnv("MAIL_FROM_NAME", "Fintrack Support"),
		ResetLinkBase:   getEnv("RESET_LINK_BASE", "http://localhost:3000/reset-password"),
		ResetReaperCron: getEnv("RESET_REAPER_CRON", "*/5 * * * *"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
