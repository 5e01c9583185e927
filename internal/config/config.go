package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Stacks   StacksConfig
	Hiro     HiroConfig
	Contract ContractConfig
	App      AppConfig
	Database DatabaseConfig
	Campaign CampaignConfig
	Monitor  MonitorConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port              int    `envconfig:"SERVER_PORT" default:"8080"`
	CORSAllowedOrigin string `envconfig:"CORS_ALLOWED_ORIGIN" default:"*"`
}

// StacksConfig selects the Stacks network
type StacksConfig struct {
	Network string `envconfig:"STACKS_NETWORK" default:"testnet"` // "testnet" or "mainnet"
	APIURL  string `envconfig:"STACKS_API_URL" default:"https://stacks-node-api.testnet.stacks.co"`
}

// HiroConfig holds the upstream Hiro Platform API configuration
type HiroConfig struct {
	APIKey  string        `envconfig:"PLATFORM_HIRO_API_KEY"`
	APIURL  string        `envconfig:"HIRO_API_URL" default:"https://api.hiro.so"`
	Timeout time.Duration `envconfig:"HIRO_TIMEOUT" default:"15s"`
}

// ContractConfig identifies the campaign smart contract
type ContractConfig struct {
	Address string `envconfig:"CONTRACT_ADDRESS" default:"ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"`
	Name    string `envconfig:"CONTRACT_NAME" default:"green-earth-fundraising"`
}

// AppConfig holds display details used by the wallet connect flow
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"Green Earth Initiative"`
	Icon        string `envconfig:"APP_ICON" default:"/favicon.ico"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

// DatabaseConfig holds SQL storage configuration
type DatabaseConfig struct {
	Driver string `envconfig:"DB_DRIVER" default:"sqlite"` // "sqlite" or "postgres"
	DSN    string `envconfig:"DB_DSN" default:"file:greenearth.db?_pragma=busy_timeout(5000)"`
}

// CampaignConfig points at the campaign content file
type CampaignConfig struct {
	File string `envconfig:"CAMPAIGN_FILE"` // empty means built-in content
}

// MonitorConfig controls the API status monitor
type MonitorConfig struct {
	ProbeInterval time.Duration `envconfig:"STATUS_PROBE_INTERVAL" default:"5m"` // 0 disables polling
}

// LoadConfig loads configuration from an optional .env file and the environment
func LoadConfig() (*Config, error) {
	// A missing .env is fine: in containers variables are injected directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
// A missing Hiro API key is not an error: the service runs degraded.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Stacks.Network != NetworkTestnet && c.Stacks.Network != NetworkMainnet {
		return fmt.Errorf("invalid stacks network %q: must be %s or %s", c.Stacks.Network, NetworkTestnet, NetworkMainnet)
	}

	if c.Hiro.APIURL == "" {
		return fmt.Errorf("hiro API URL is required")
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Monitor.ProbeInterval < 0 {
		return fmt.Errorf("invalid status probe interval: %s", c.Monitor.ProbeInterval)
	}

	return nil
}

// Supported networks and drivers
const (
	NetworkTestnet = "testnet"
	NetworkMainnet = "mainnet"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)
