// Package config loads the timber CLI configuration from YAML, .env and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all timber configuration.
type Config struct {
	AI       AIConfig       `yaml:"ai"`
	Store    StoreConfig    `yaml:"store"`
	Matching MatchingConfig `yaml:"matching"`
	Loading  LoadingConfig  `yaml:"loading"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AIConfig configures the generative text service.
type AIConfig struct {
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	Timeout        string  `yaml:"timeout"`
	RequestsPerMin float64 `yaml:"requests_per_minute"`
}

// StoreConfig selects the key-value backend for the marketplace collections.
type StoreConfig struct {
	Backend     string `yaml:"backend"` // memory, sqlite, dynamodb
	SQLitePath  string `yaml:"sqlite_path"`
	DynamoTable string `yaml:"dynamo_table"`
	AWSRegion   string `yaml:"aws_region"`
}

// MatchingConfig configures commission computation.
type MatchingConfig struct {
	CommissionRate    string `yaml:"commission_rate"`
	FallbackUnitPrice string `yaml:"fallback_unit_price"`
}

// LoadingConfig configures load sequencing.
type LoadingConfig struct {
	TruckCapacity float64 `yaml:"truck_capacity"` // m3
	AllowMock     bool    `yaml:"allow_mock"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Store backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendDynamo = "dynamodb"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Model:          "gemini-2.5-flash",
			Timeout:        "60s",
			RequestsPerMin: 30,
		},
		Store: StoreConfig{
			Backend:    BackendSQLite,
			SQLitePath: "data/timber.db",
			AWSRegion:  "eu-central-1",
		},
		Matching: MatchingConfig{
			CommissionRate:    "0.05",
			FallbackUnitPrice: "2",
		},
		Loading: LoadingConfig{
			TruckCapacity: 25,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file and applies .env and environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	c.AI.APIKey = getEnv("GEMINI_API_KEY", c.AI.APIKey)
	c.AI.Model = getEnv("TIMBER_AI_MODEL", c.AI.Model)
	c.AI.Timeout = getEnv("TIMBER_AI_TIMEOUT", c.AI.Timeout)

	c.Store.Backend = getEnv("TIMBER_STORE", c.Store.Backend)
	c.Store.SQLitePath = getEnv("TIMBER_DB", c.Store.SQLitePath)
	c.Store.DynamoTable = getEnv("TIMBER_DYNAMO_TABLE", c.Store.DynamoTable)
	c.Store.AWSRegion = getEnv("AWS_REGION", c.Store.AWSRegion)

	c.Matching.CommissionRate = getEnv("TIMBER_COMMISSION_RATE", c.Matching.CommissionRate)
	c.Loading.TruckCapacity = getEnvFloat("TIMBER_TRUCK_CAPACITY", c.Loading.TruckCapacity)

	c.Logging.Level = getEnv("TIMBER_LOG_LEVEL", c.Logging.Level)
}

// GetAITimeout returns the AI deadline as a duration.
func (c *Config) GetAITimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// GetCommissionRate returns the commission rate, or the 0.05 default when unparsable.
func (c *Config) GetCommissionRate() decimal.Decimal {
	rate, err := decimal.NewFromString(c.Matching.CommissionRate)
	if err != nil {
		return decimal.RequireFromString("0.05")
	}
	return rate
}

// GetFallbackUnitPrice returns the unit price used when a stock price cannot be parsed.
func (c *Config) GetFallbackUnitPrice() decimal.Decimal {
	price, err := decimal.NewFromString(c.Matching.FallbackUnitPrice)
	if err != nil {
		return decimal.NewFromInt(2)
	}
	return price
}

// HasAI reports whether an AI API key is configured.
func (c *Config) HasAI() bool {
	return c.AI.APIKey != ""
}

// ValidBackends lists all supported store backends.
var ValidBackends = []string{BackendMemory, BackendSQLite, BackendDynamo}

// Validate validates the configuration.
// A missing AI key is not an error here; AI features report it when invoked.
func (c *Config) Validate() error {
	validBackend := false
	for _, b := range ValidBackends {
		if c.Store.Backend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid store backend: %s (valid: %v)", c.Store.Backend, ValidBackends)
	}
	if c.Store.Backend == BackendSQLite && c.Store.SQLitePath == "" {
		return fmt.Errorf("sqlite backend requires store.sqlite_path (or TIMBER_DB)")
	}
	if c.Store.Backend == BackendDynamo && c.Store.DynamoTable == "" {
		return fmt.Errorf("dynamodb backend requires store.dynamo_table (or TIMBER_DYNAMO_TABLE)")
	}

	rate, err := decimal.NewFromString(c.Matching.CommissionRate)
	if err != nil {
		return fmt.Errorf("invalid commission rate %q: %w", c.Matching.CommissionRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("commission rate must be within [0, 1], got %s", rate)
	}
	if _, err := decimal.NewFromString(c.Matching.FallbackUnitPrice); err != nil {
		return fmt.Errorf("invalid fallback unit price %q: %w", c.Matching.FallbackUnitPrice, err)
	}

	if c.Loading.TruckCapacity < 0 {
		return fmt.Errorf("truck capacity cannot be negative, got %g", c.Loading.TruckCapacity)
	}
	if c.AI.RequestsPerMin < 0 {
		return fmt.Errorf("requests per minute cannot be negative, got %g", c.AI.RequestsPerMin)
	}

	return nil
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
