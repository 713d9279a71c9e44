package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process level configuration.
type Config struct {
	Server     Server
	Redis      RedisConfig
	Kafka      KafkaConfig
	RateLimit  RateLimitConfig
	SessionTTL time.Duration
	LogLevel   string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	RequestTimeout time.Duration
}

// RedisConfig selects the Redis session store. An empty URL keeps sessions
// in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables publishing audit events. No brokers means audit
// events stay in memory.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// RateLimitConfig bounds how many sessions one client may start per
// window.
type RateLimitConfig struct {
	SessionsPerWindow int
	Window            time.Duration
	// TrustForwardedFor keys clients by X-Forwarded-For. Only safe behind a
	// proxy that sets the header.
	TrustForwardedFor bool
}

// Defaults applied when the environment leaves a value unset.
const (
	DefaultAddr           = ":8080"
	DefaultSessionTTL     = 30 * time.Minute
	DefaultRequestTimeout = 30 * time.Second
	DefaultAuditTopic     = "checkout.audit"
	DefaultSessionStarts  = 30
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:           envString("CHECKOUT_ADDR", DefaultAddr),
			RequestTimeout: envDuration("REQUEST_TIMEOUT", DefaultRequestTimeout),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			AuditTopic: envString("KAFKA_AUDIT_TOPIC", DefaultAuditTopic),
		},
		RateLimit: RateLimitConfig{
			SessionsPerWindow: envInt("RATE_LIMIT_SESSIONS", DefaultSessionStarts),
			Window:            envDuration("RATE_LIMIT_WINDOW", time.Minute),
			TrustForwardedFor: envBool("RATE_LIMIT_TRUST_FORWARDED"),
		},
		SessionTTL: envDuration("SESSION_TTL", DefaultSessionTTL),
		LogLevel:   envString("LOG_LEVEL", "info"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func envBool(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
