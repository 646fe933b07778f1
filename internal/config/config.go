// Package config loads process configuration from the environment (spec
// §6 "Process configuration"). Tag-driven parsing follows the teacher's
// platform/kafka config style, generalized from caarlos0/env/v10.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// DatabaseConfig configures the Postgres pool backing the persistence
// gateway (spec §4.A, §6).
type DatabaseConfig struct {
	URL            string        `env:"DATABASE_URL,required"`
	MaxConns       int32         `env:"DATABASE_MAX_CONNS" envDefault:"20"`
	MinConns       int32         `env:"DATABASE_MIN_CONNS" envDefault:"2"`
	ConnectTimeout time.Duration `env:"DATABASE_CONNECT_TIMEOUT" envDefault:"5s"`
	IdleTimeout    time.Duration `env:"DATABASE_IDLE_TIMEOUT" envDefault:"5m"`
	MaxLifetime    time.Duration `env:"DATABASE_MAX_LIFETIME" envDefault:"1h"`
	AcquireTimeout time.Duration `env:"DATABASE_ACQUIRE_TIMEOUT" envDefault:"30s"`
}

// BusConfig configures the AMQP event bus client (spec §4.B, §6).
type BusConfig struct {
	URL          string `env:"BUS_URL,required"`
	Exchange     string `env:"BUS_EXCHANGE" envDefault:"order_events"`
	RetryCount   int    `env:"BUS_RETRY_COUNT" envDefault:"5"`
	MaxRedeliver int    `env:"BUS_MAX_REDELIVER" envDefault:"3"`
}

// RpcConfig configures the inventory RPC client (spec §4.C, §6). Only
// InventoryEndpoint is passed to inventoryrpc.Dial; the timeout and
// keepalive fields are not applied, and the client uses its fixed 10s
// request, 5s connect and 30s keepalive values.
type RpcConfig struct {
	InventoryEndpoint string        `env:"RPC_INVENTORY_ENDPOINT,required"`
	RequestTimeout    time.Duration `env:"RPC_REQUEST_TIMEOUT" envDefault:"10s"`
	ConnectTimeout    time.Duration `env:"RPC_CONNECT_TIMEOUT" envDefault:"5s"`
	Keepalive         time.Duration `env:"RPC_KEEPALIVE" envDefault:"30s"`
}

// ProducerConfig configures the synthetic order producer (spec §4.E).
// Defaults match OrderProducerConfig::default() in the original source
// exactly (see SPEC_FULL.md "SUPPLEMENTED FEATURES").
type ProducerConfig struct {
	Enabled              bool `env:"PRODUCER_ENABLED" envDefault:"false"`
	IntervalSeconds      int  `env:"PRODUCER_INTERVAL_SECONDS" envDefault:"60"`
	RandomizeInterval    bool `env:"PRODUCER_RANDOMIZE_INTERVAL" envDefault:"true"`
	MinOrdersPerInterval int  `env:"PRODUCER_MIN_ORDERS" envDefault:"1"`
	MaxOrdersPerInterval int  `env:"PRODUCER_MAX_ORDERS" envDefault:"5"`
	MaxItemsPerOrder     int  `env:"PRODUCER_MAX_ITEMS" envDefault:"10"`
	WarehouseID          string `env:"PRODUCER_WAREHOUSE_ID"`
}

// PaginationConfig holds list/search limits. The postgres repository does
// not read it: its list and search methods use a fixed default limit of 20
// and clamp to a fixed maximum of 100, whatever these fields are set to.
type PaginationConfig struct {
	DefaultLimit int `env:"PAGINATION_DEFAULT_LIMIT" envDefault:"20"`
	MaxLimit     int `env:"PAGINATION_MAX_LIMIT" envDefault:"100"`
}

// OtelConfig configures trace export (ambient instrumentation; not a spec
// Non-goal — only HTTP/CRUD/analytics/migrations/config/logging are named).
type OtelConfig struct {
	Enabled       bool    `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint      string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"127.0.0.1:4317"`
	SamplingRatio float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"1.0"`
}

// Config is the top-level process configuration.
type Config struct {
	Env             string        `env:"APP_ENV" envDefault:"dev"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Database   DatabaseConfig
	Bus        BusConfig
	Rpc        RpcConfig
	Producer   ProducerConfig
	Pagination PaginationConfig
	Otel       OtelConfig
}

// Load parses Config from the environment. Mandatory keys (database URL,
// bus URL, RPC endpoint) fail loudly via the `required` tag (spec §6).
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
