package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full process configuration, loaded from the environment.
// Empty connection strings select in-memory or log-only fallbacks.
type Config struct {
	Server    Server
	Database  DatabaseConfig `envPrefix:"DATABASE_"`
	Redis     RedisConfig    `envPrefix:"REDIS_"`
	Kafka     KafkaConfig    `envPrefix:"KAFKA_"`
	Mongo     MongoConfig    `envPrefix:"MONGO_"`
	Lifecycle LifecycleConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string `env:"CAREGATE_ADDR" envDefault:":8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv         string `env:"APP_ENV" envDefault:"production"`
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET" envDefault:"dev-secret-key-change-in-production"`
}

// DatabaseConfig configures the Postgres connection pool.
type DatabaseConfig struct {
	URL             string        `env:"URL"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnectAttempts int           `env:"CONNECT_ATTEMPTS" envDefault:"30"`
}

// RedisConfig configures the Redis client used for rejection counters when
// no database is configured. RejectionTTL expires a quiet counter; zero keeps
// counters forever.
type RedisConfig struct {
	URL          string        `env:"URL"`
	RejectionTTL time.Duration `env:"REJECTION_TTL" envDefault:"0s"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig configures the outbound lifecycle event topic.
type KafkaConfig struct {
	Brokers           []string `env:"BROKERS" envSeparator:","`
	Topic             string   `env:"TOPIC" envDefault:"provider-lifecycle"`
	Partitions        int32    `env:"PARTITIONS" envDefault:"3"`
	ReplicationFactor int16    `env:"REPLICATION_FACTOR" envDefault:"1"`
}

// MongoConfig selects the Mongo-backed blacklist store when URI is set.
type MongoConfig struct {
	URI        string `env:"URI"`
	Database   string `env:"DATABASE" envDefault:"caregate"`
	Collection string `env:"BLACKLIST_COLLECTION" envDefault:"blacklist_entries"`
}

// LifecycleConfig holds policy thresholds and background intervals.
type LifecycleConfig struct {
	SuspensionTerminationThreshold int           `env:"SUSPENSION_TERMINATION_THRESHOLD" envDefault:"6"`
	RejectionBlacklistThreshold    int           `env:"REJECTION_BLACKLIST_THRESHOLD" envDefault:"3"`
	ReconcileInterval              time.Duration `env:"RECONCILE_INTERVAL" envDefault:"5m"`
	BlacklistCleanupInterval       time.Duration `env:"BLACKLIST_CLEANUP_INTERVAL" envDefault:"1h"`
	EventBufferSize                int           `env:"EVENT_BUFFER_SIZE" envDefault:"1024"`
	EventFlushInterval             time.Duration `env:"EVENT_FLUSH_INTERVAL" envDefault:"500ms"`
}

// Development reports whether the process runs with developer defaults.
func (s Server) Development() bool {
	return s.AppEnv == "development"
}

// Load reads an optional .env file and parses the environment into Config.
func Load() (*Config, error) {
	// Missing .env is expected outside local development.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Lifecycle.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Redis.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (l LifecycleConfig) validate() error {
	if l.SuspensionTerminationThreshold < 1 {
		return fmt.Errorf("SUSPENSION_TERMINATION_THRESHOLD must be positive, got %d", l.SuspensionTerminationThreshold)
	}
	if l.RejectionBlacklistThreshold < 1 {
		return fmt.Errorf("REJECTION_BLACKLIST_THRESHOLD must be positive, got %d", l.RejectionBlacklistThreshold)
	}
	if l.EventBufferSize < 1 {
		return fmt.Errorf("EVENT_BUFFER_SIZE must be positive, got %d", l.EventBufferSize)
	}
	intervals := []struct {
		name  string
		value time.Duration
	}{
		{"RECONCILE_INTERVAL", l.ReconcileInterval},
		{"BLACKLIST_CLEANUP_INTERVAL", l.BlacklistCleanupInterval},
		{"EVENT_FLUSH_INTERVAL", l.EventFlushInterval},
	}
	for _, iv := range intervals {
		if iv.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", iv.name, iv.value)
		}
	}
	return nil
}

func (r RedisConfig) validate() error {
	if r.RejectionTTL < 0 {
		return fmt.Errorf("REDIS_REJECTION_TTL must not be negative, got %s", r.RejectionTTL)
	}
	return nil
}
