package config

import (
	"os"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "folio-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}
	return tmpFile.Name()
}

func clearBrokerEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BROKER_TYPE",
		"ALPACA_API_KEY", "ALPACA_API_SECRET", "ALPACA_BASE_URL",
		"APCA_API_KEY_ID", "APCA_API_SECRET_KEY",
		"ROBINHOOD_USERNAME", "ROBINHOOD_PASSWORD", "ROBINHOOD_MFA_CODE",
		"WEBULL_APP_KEY", "WEBULL_APP_SECRET", "WEBULL_ACCOUNT_ID", "WEBULL_REGION",
		"LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearBrokerEnv(t)

	path := writeTempConfig(t, `
broker:
  type: "webull"
  estimate_price: 50
  alpaca:
    api_key: "alpaca-key"
    api_secret: "alpaca-secret"
    base_url: "https://paper-api.alpaca.markets"
  robinhood:
    username: "user@example.com"
    password: "hunter2"
  webull:
    app_key: "wb-key"
    app_secret: "wb-secret"
    account_id: "A123"
    region: "us"
server:
  host: "0.0.0.0"
  port: 8080
logging:
  level: "info"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Broker --
	if cfg.Broker.Type != "webull" {
		t.Errorf("Broker.Type = %q, want %q", cfg.Broker.Type, "webull")
	}
	if cfg.Broker.EstimatePrice != 50 {
		t.Errorf("Broker.EstimatePrice = %f, want %f", cfg.Broker.EstimatePrice, 50.0)
	}
	if cfg.Broker.Alpaca.APIKey != "alpaca-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Broker.Alpaca.APIKey, "alpaca-key")
	}
	if cfg.Broker.Alpaca.BaseURL != "https://paper-api.alpaca.markets" {
		t.Errorf("Alpaca.BaseURL = %q, want %q", cfg.Broker.Alpaca.BaseURL, "https://paper-api.alpaca.markets")
	}
	if cfg.Broker.Robinhood.Username != "user@example.com" {
		t.Errorf("Robinhood.Username = %q, want %q", cfg.Broker.Robinhood.Username, "user@example.com")
	}
	if cfg.Broker.Webull.AppKey != "wb-key" {
		t.Errorf("Webull.AppKey = %q, want %q", cfg.Broker.Webull.AppKey, "wb-key")
	}
	if cfg.Broker.Webull.AccountID != "A123" {
		t.Errorf("Webull.AccountID = %q, want %q", cfg.Broker.Webull.AccountID, "A123")
	}
	if cfg.Broker.Webull.Region != "us" {
		t.Errorf("Webull.Region = %q, want %q", cfg.Broker.Webull.Region, "us")
	}

	// -- Server --
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}

	// -- Logging --
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearBrokerEnv(t)

	path := writeTempConfig(t, `
broker:
  type: "alpaca"
  alpaca:
    api_key: "yaml-key"
    api_secret: "yaml-secret"
  webull:
    app_key: "yaml-wb-key"
`)

	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("WEBULL_APP_KEY", "env-wb-key")
	t.Setenv("BROKER_TYPE", "webull")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Broker.Type != "webull" {
		t.Errorf("Broker.Type = %q, want %q (env override)", cfg.Broker.Type, "webull")
	}
	if cfg.Broker.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Broker.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Broker.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Broker.Alpaca.APISecret, "yaml-secret")
	}
	if cfg.Broker.Webull.AppKey != "env-wb-key" {
		t.Errorf("Webull.AppKey = %q, want %q (env override)", cfg.Broker.Webull.AppKey, "env-wb-key")
	}
}

func TestLoadCanonicalAlpacaEnvWins(t *testing.T) {
	clearBrokerEnv(t)

	path := writeTempConfig(t, `
broker:
  type: "alpaca"
  alpaca:
    api_key: "yaml-key"
    api_secret: "yaml-secret"
`)

	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("APCA_API_KEY_ID", "canonical-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Broker.Alpaca.APIKey != "canonical-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (APCA_API_KEY_ID wins)", cfg.Broker.Alpaca.APIKey, "canonical-key")
	}
}
