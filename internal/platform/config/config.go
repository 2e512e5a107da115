// Package config assembles runtime configuration from the environment so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RedisConfig captures Redis connection tuning. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	Channel      string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Config captures everything the server needs at startup. Postgres, Redis,
// and Kafka are all optional: absent, the server runs on in-memory stores
// with an in-process event sink, which is the development mode.
type Config struct {
	Addr          string
	PostgresURL   string
	Redis         RedisConfig
	KafkaBrokers  []string
	KafkaTopic    string
	JWTSigningKey string

	ProjectionTimeout  time.Duration
	ProjectionAttempts int
	ProjectionBackoff  time.Duration

	NotifyBuffer    int
	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from CLUBHUB_* environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:        envOr("CLUBHUB_ADDR", ":8080"),
		PostgresURL: os.Getenv("CLUBHUB_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("CLUBHUB_REDIS_URL"),
			Channel:      envOr("CLUBHUB_REDIS_CHANNEL", "clubhub.events"),
			PoolSize:     envInt("CLUBHUB_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CLUBHUB_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("CLUBHUB_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CLUBHUB_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CLUBHUB_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		KafkaTopic:    envOr("CLUBHUB_KAFKA_TOPIC", "clubhub.events"),
		JWTSigningKey: os.Getenv("CLUBHUB_JWT_SIGNING_KEY"),

		ProjectionTimeout:  envDuration("CLUBHUB_PROJECTION_TIMEOUT", 2*time.Second),
		ProjectionAttempts: envInt("CLUBHUB_PROJECTION_ATTEMPTS", 3),
		ProjectionBackoff:  envDuration("CLUBHUB_PROJECTION_BACKOFF", 100*time.Millisecond),

		NotifyBuffer:    envInt("CLUBHUB_NOTIFY_BUFFER", 256),
		ShutdownTimeout: envDuration("CLUBHUB_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if brokers := os.Getenv("CLUBHUB_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if cfg.JWTSigningKey == "" {
		// Development default; override in production.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
