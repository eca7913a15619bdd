package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Fulfillment client kinds.
const (
	ClientStub    = "stub"
	ClientNetwork = "network"
)

// Idempotency store backends.
const (
	IdempotencyMemory = "memory"
	IdempotencyRedis  = "redis"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Fulfillment client
	FBAClient         string        `envconfig:"FBA_CLIENT" default:"stub"`
	FBAMockDir        string        `envconfig:"FBA_MOCK_DIR" default:"./mock"`
	FBADefaultOrderID int           `envconfig:"FBA_DEFAULT_ORDER_ID" default:"16400"`
	FBABaseURL        string        `envconfig:"FBA_BASE_URL" default:"https://sellingpartnerapi-na.amazon.com"`
	FBARequestTimeout time.Duration `envconfig:"FBA_REQUEST_TIMEOUT" default:"5s"`

	// Order data
	OrderDataDir    string `envconfig:"ORDER_DATA_DIR" default:"./mock"`
	ShipConcurrency int    `envconfig:"SHIP_CONCURRENCY" default:"4"`

	// Idempotency
	IdempotencyBackend string        `envconfig:"IDEMPOTENCY_BACKEND" default:"memory"`
	RedisURL           string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	IdempotencyTTL     time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"0"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"fba-shipping"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.FBAClient {
	case ClientStub, ClientNetwork:
	default:
		return fmt.Errorf("unknown FBA_CLIENT %q", c.FBAClient)
	}
	switch c.IdempotencyBackend {
	case IdempotencyMemory, IdempotencyRedis:
	default:
		return fmt.Errorf("unknown IDEMPOTENCY_BACKEND %q", c.IdempotencyBackend)
	}
	return nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("fba.client", c.FBAClient),
		attribute.String("fba.idempotency_backend", c.IdempotencyBackend),
	}
}
