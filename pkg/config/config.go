package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	devSessionSecret   = "dev_secret_change_me"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	Port                    string
	Env                     string
	DatabaseURL             string
	SessionSecret           string
	SessionTTL              time.Duration
	GoogleClientID          string
	GoogleClientSecret      string
	OAuthCallbackURL        string
	FirebaseCredentialsPath string
	RedisURL                string
	MetricsPort             string
	LogLevel                string
	LogJSON                 bool
	RateLimitRPS            int
	RateLimitBurst          int
	CORSOrigins             []string
}

// Load reads the environment (and .env, if present) into a Config.
// The returned bool reports whether a .env file was loaded.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	env := getEnv("ENV", "development")
	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     env,
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		SessionSecret:           getEnv("SESSION_SECRET", ""),
		GoogleClientID:          os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:      os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthCallbackURL:        getEnv("OAUTH_CALLBACK_URL", "http://localhost:8080/api/callback"),
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		RedisURL:                os.Getenv("REDIS_URL"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		CORSOrigins:             splitList(getEnv("CORS_ORIGINS", defaultCORSOrigins)),
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "720h")); err != nil {
		return nil, dotenv, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.LogJSON, err = strconv.ParseBool(getEnv("LOG_JSON", strconv.FormatBool(env == "production"))); err != nil {
		return nil, dotenv, fmt.Errorf("invalid LOG_JSON: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.Atoi(getEnv("RATE_LIMIT_RPS", "10")); err != nil {
		return nil, dotenv, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20")); err != nil {
		return nil, dotenv, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, dotenv, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.SessionSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, dotenv, fmt.Errorf("SESSION_SECRET environment variable not set")
		}
		cfg.SessionSecret = devSessionSecret
	}

	return cfg, dotenv, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// AllowsAnyOrigin reports whether CORS_ORIGINS contains "*". Browsers refuse
// credentialed responses for a wildcard origin, so cookie sessions across
// origins need an explicit list.
func (c *Config) AllowsAnyOrigin() bool {
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
