package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for folio.
type Config struct {
	Broker  BrokerConfig `yaml:"broker"`
	Server  Server       `yaml:"server"`
	Logging Logging      `yaml:"logging"`
}

// BrokerConfig selects a brokerage backend and carries the per-vendor
// credentials. Only the section matching Type needs to be populated.
type BrokerConfig struct {
	// Type is one of "alpaca", "robinhood", or "webull".
	Type string `yaml:"type"`

	// EstimatePrice sizes buy orders when no position price is available.
	// Zero means the built-in default.
	EstimatePrice float64 `yaml:"estimate_price"`

	Alpaca    Alpaca    `yaml:"alpaca"`
	Robinhood Robinhood `yaml:"robinhood"`
	Webull    Webull    `yaml:"webull"`
}

// Alpaca holds credentials and endpoint for the Alpaca broker API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
}

// Robinhood holds credentials for the Robinhood API.
type Robinhood struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	MFACode  string `yaml:"mfa_code"`
	BaseURL  string `yaml:"base_url"`
}

// Webull holds credentials for the Webull OpenAPI. AccountID is optional;
// when empty the account is discovered at construction. Region is one of
// US, HK, JP (case-insensitive, default US). BaseURL overrides the
// region endpoint when set.
type Webull struct {
	AppKey    string `yaml:"app_key"`
	AppSecret string `yaml:"app_secret"`
	AccountID string `yaml:"account_id"`
	Region    string `yaml:"region"`
	BaseURL   string `yaml:"base_url"`
}

// Server holds network listener configuration for the HTTP API.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BROKER_TYPE"); v != "" {
		cfg.Broker.Type = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Broker.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Broker.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Broker.Alpaca.BaseURL = v
	}

	if v := os.Getenv("ROBINHOOD_USERNAME"); v != "" {
		cfg.Broker.Robinhood.Username = v
	}
	if v := os.Getenv("ROBINHOOD_PASSWORD"); v != "" {
		cfg.Broker.Robinhood.Password = v
	}
	if v := os.Getenv("ROBINHOOD_MFA_CODE"); v != "" {
		cfg.Broker.Robinhood.MFACode = v
	}

	if v := os.Getenv("WEBULL_APP_KEY"); v != "" {
		cfg.Broker.Webull.AppKey = v
	}
	if v := os.Getenv("WEBULL_APP_SECRET"); v != "" {
		cfg.Broker.Webull.AppSecret = v
	}
	if v := os.Getenv("WEBULL_ACCOUNT_ID"); v != "" {
		cfg.Broker.Webull.AccountID = v
	}
	if v := os.Getenv("WEBULL_REGION"); v != "" {
		cfg.Broker.Webull.Region = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Canonical Alpaca env var names used by the SDK take priority.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Broker.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Broker.Alpaca.APISecret = v
	}
}
