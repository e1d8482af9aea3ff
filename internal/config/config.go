package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	BusDriverLocal = "local"
	BusDriverRedis = "redis"
)

// Config holds all configuration for the chat service and its worker.
type Config struct {
	// Service settings
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"chatline"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"3s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Persistence
	StoreDriver   string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DB_URL"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"4"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	// DevUsers seeds the memory store with these usernames.
	DevUsers []string `env:"DEV_USERS" envSeparator:","`

	// Redis backs the room bus, the resolution cache and the task queue
	RedisURL         string        `env:"REDIS_URL"`
	BusDriver        string        `env:"BUS_DRIVER" envDefault:"local"`
	BusChannelPrefix string        `env:"BUS_CHANNEL_PREFIX" envDefault:"chatline:room:"`
	CacheTTL         time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Auth
	JWTSecret string `env:"JWT_SECRET"`

	// Chat
	MessageHistoryLimit int `env:"MESSAGE_HISTORY_LIMIT" envDefault:"200"`

	// WebSocket sessions
	WSSendBuffer        int           `env:"WS_SEND_BUFFER" envDefault:"128"`
	WSReadLimit         int64         `env:"WS_READ_LIMIT" envDefault:"65536"`
	WSPongWait          time.Duration `env:"WS_PONG_WAIT" envDefault:"60s"`
	WSMessagesPerSecond int           `env:"WS_MESSAGES_PER_SECOND" envDefault:"0"`

	// Background queue
	QueueEnabled     bool   `env:"QUEUE_ENABLED" envDefault:"false"`
	AsynqConcurrency int    `env:"ASYNQ_CONCURRENCY" envDefault:"10"`
	AsynqQueues      string `env:"ASYNQ_QUEUES" envDefault:"chat=1,default=1"`
	WorkerEmbedded   bool   `env:"WORKER_EMBEDDED" envDefault:"false"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DB_URL is required when STORE_DRIVER is postgres")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver)
	}

	switch c.BusDriver {
	case BusDriverLocal:
	case BusDriverRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL is required when BUS_DRIVER is redis")
		}
	default:
		return fmt.Errorf("BUS_DRIVER must be %q or %q, got %q", BusDriverLocal, BusDriverRedis, c.BusDriver)
	}

	if c.QueueEnabled && strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("REDIS_URL is required when QUEUE_ENABLED is true")
	}
	// an external worker shares neither this process's registry nor a memory store
	if c.QueueEnabled && !c.WorkerEmbedded {
		if c.BusDriver != BusDriverRedis {
			return fmt.Errorf("BUS_DRIVER must be %q when QUEUE_ENABLED is true without WORKER_EMBEDDED", BusDriverRedis)
		}
		if c.StoreDriver != StoreDriverPostgres {
			return fmt.Errorf("STORE_DRIVER must be %q when QUEUE_ENABLED is true without WORKER_EMBEDDED", StoreDriverPostgres)
		}
	}
	if c.MessageHistoryLimit <= 0 || c.MessageHistoryLimit > 200 {
		return fmt.Errorf("MESSAGE_HISTORY_LIMIT must be between 1 and 200")
	}
	if c.WSSendBuffer <= 0 {
		return fmt.Errorf("WS_SEND_BUFFER must be positive")
	}
	if c.WSMessagesPerSecond < 0 {
		return fmt.Errorf("WS_MESSAGES_PER_SECOND must not be negative")
	}
	return nil
}

// ValidateWorker checks the settings a standalone queue worker needs: the
// store and the room bus must be the ones the api processes use.
func (c *Config) ValidateWorker() error {
	if c.StoreDriver != StoreDriverPostgres {
		return fmt.Errorf("worker requires STORE_DRIVER=%s, got %q", StoreDriverPostgres, c.StoreDriver)
	}
	if c.BusDriver != BusDriverRedis {
		return fmt.Errorf("worker requires BUS_DRIVER=%s, got %q", BusDriverRedis, c.BusDriver)
	}
	if strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("worker requires REDIS_URL")
	}
	return nil
}

// Addr returns the HTTP server address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// RedisEnabled reports whether any component needs a Redis client.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisURL) != ""
}
