// Package config loads server configuration from the environment,
// optionally seeded from a .env file during local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Extractor ExtractorConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
}

type ServerConfig struct {
	Addr string
}

type DatabaseConfig struct {
	Path string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type ExtractorConfig struct {
	URL     string
	Timeout time.Duration
}

// RedisConfig enables the balance cache. An empty Addr disables it.
type RedisConfig struct {
	Addr string
	TTL  time.Duration
}

// AMQPConfig enables mirroring ledger events to a broker. An empty URL
// disables it.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// Load reads configuration from env vars. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	tokenTTL, err := durationEnv("TOKEN_TTL_HOURS", 72*time.Hour, time.Hour)
	if err != nil {
		return nil, err
	}
	extractTimeout, err := durationEnv("EXTRACT_TIMEOUT_SECONDS", 10*time.Second, time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := durationEnv("BALANCE_CACHE_TTL_SECONDS", 5*time.Minute, time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "data/splitchat.db"),
		},
		Auth: AuthConfig{
			JWTSecret: secret,
			TokenTTL:  tokenTTL,
		},
		Extractor: ExtractorConfig{
			URL:     getEnv("EXTRACTOR_URL", ""),
			Timeout: extractTimeout,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", ""),
			TTL:  cacheTTL,
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "splitchat.events"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, defaultValue, unit time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return time.Duration(n) * unit, nil
}
