// Package config builds runtime configuration from the environment so main
// stays lean. A .env file is honored when present; real environment variables
// win over it.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
}

// RedisConfig captures Redis connection settings. An empty URL disables the
// Redis backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig captures PostgreSQL connection settings. An empty URL
// disables the Postgres backend.
type PostgresConfig struct {
	URL string
}

// KafkaConfig captures changelog relay settings. No brokers disables the
// relay; events still land in the outbox and queryable log.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// CryptoConfig captures the symmetric keyring material for single-tenant
// deployments.
type CryptoConfig struct {
	Passphrase string
	Salt       string
}

// RemoteConfig captures the upstream vault used when persistence is
// delegated. An empty URL disables the remote backend.
type RemoteConfig struct {
	URL   string
	Token string
}

// Config is the full application configuration.
type Config struct {
	Server   Server
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Crypto   CryptoConfig
	Remote   RemoteConfig
}

// FromEnv builds a Config from environment variables, loading .env first
// when one exists.
func FromEnv() Config {
	_ = godotenv.Load()

	addr := os.Getenv("CONTACTVAULT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Server: Server{
			Addr:          addr,
			JWTSigningKey: jwtSigningKey,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("POSTGRES_URL"),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   os.Getenv("KAFKA_CHANGELOG_TOPIC"),
		},
		Crypto: CryptoConfig{
			Passphrase: os.Getenv("VAULT_PASSPHRASE"),
			Salt:       os.Getenv("VAULT_SALT"),
		},
		Remote: RemoteConfig{
			URL:   os.Getenv("REMOTE_VAULT_URL"),
			Token: os.Getenv("REMOTE_VAULT_TOKEN"),
		},
	}
}

func intEnv(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
	}
	return fallback
}
