package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tabletop-ledger/partie/app/shared/observability"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	Storage       StorageConfig       `yaml:"storage"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Orchestrator  OrchestratorConfig  `yaml:"orchestrator"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

// NATSConfig holds NATS configuration. An empty URL keeps events in process.
type NATSConfig struct {
	URL string `yaml:"url"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address"`
	RateLimit       float64       `yaml:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// OrchestratorConfig tunes partie creation. TransactionTimeout is logged
// only and MaxRetries is never consumed.
type OrchestratorConfig struct {
	TransactionTimeout      time.Duration `yaml:"transaction_timeout"`
	MaxRetries              int           `yaml:"max_retries"`
	ValidateCrossReferences *bool         `yaml:"validate_cross_references"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"` // json|text
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// No file: environment only.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_LIMIT value: %w", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("HTTP_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_BURST value: %w", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("ORCHESTRATOR_TRANSACTION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ORCHESTRATOR_TRANSACTION_TIMEOUT value: %w", err)
		}
		cfg.Orchestrator.TransactionTimeout = d
	}
	if v := os.Getenv("ORCHESTRATOR_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ORCHESTRATOR_MAX_RETRIES value: %w", err)
		}
		cfg.Orchestrator.MaxRetries = n
	}
	if v := os.Getenv("ORCHESTRATOR_VALIDATE_CROSS_REFERENCES"); v != "" {
		b := v == "true"
		cfg.Orchestrator.ValidateCrossReferences = &b
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Observability.MetricsEnabled = v == "true"
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageDriverPostgres
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.RateLimit == 0 {
		c.HTTP.RateLimit = 10
	}
	if c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = 20
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Orchestrator.TransactionTimeout == 0 {
		c.Orchestrator.TransactionTimeout = 30 * time.Second
	}
	if c.Orchestrator.ValidateCrossReferences == nil {
		enabled := true
		c.Orchestrator.ValidateCrossReferences = &enabled
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = "development"
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.LogFormat == "" {
		c.Observability.LogFormat = "json"
	}
}

// Validate checks the settings the process cannot start without.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres DSN is required for the %s storage driver (set DATABASE_URL)", StorageDriverPostgres)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.HTTP.RateLimit < 0 || c.HTTP.RateBurst < 0 {
		return fmt.Errorf("http rate limit and burst must not be negative")
	}
	if c.Orchestrator.MaxRetries < 0 {
		return fmt.Errorf("orchestrator max_retries must not be negative")
	}
	return nil
}

// CrossReferenceValidation reports whether the orchestrator checks score
// round references before writing.
func (c *Config) CrossReferenceValidation() bool {
	return c.Orchestrator.ValidateCrossReferences == nil || *c.Orchestrator.ValidateCrossReferences
}

func ToObsConfig(appCfg *Config, version string) observability.Config {
	return observability.Config{
		ServiceName:    "partie",
		Environment:    appCfg.Observability.Environment,
		Version:        version,
		LogLevel:       appCfg.Observability.LogLevel,
		LogFormat:      appCfg.Observability.LogFormat,
		OTLPEndpoint:   appCfg.Observability.OTLPEndpoint,
		MetricsEnabled: appCfg.Observability.MetricsEnabled,
	}
}
