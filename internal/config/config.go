package config

import (
	"os"
	"time"
)

// Supported session backends.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	AppPort string

	Backend string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	Serializer string

	SessionTable     string
	KeyColumn        string
	DataColumn       string
	ExpirationColumn string

	DefaultTTL    time.Duration
	SweepSchedule string // cron expression; empty disables the sweeper
}

func Load() Config {

	cfg := Config{

		AppPort: getenv("APP_PORT", "8080"),

		Backend: getenv("SESSION_BACKEND", BackendPostgres),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		Serializer: getenv("SESSION_SERIALIZER", "json"),

		SessionTable:     getenv("SESSION_TABLE", "sessions"),
		KeyColumn:        getenv("SESSION_KEY_COLUMN", "key"),
		DataColumn:       getenv("SESSION_DATA_COLUMN", "data"),
		ExpirationColumn: getenv("SESSION_EXPIRATION_COLUMN", "expiration"),

		DefaultTTL:    getduration("SESSION_DEFAULT_TTL", 24*time.Hour),
		SweepSchedule: os.Getenv("SESSION_SWEEP_SCHEDULE"),
	}

	return cfg

}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
