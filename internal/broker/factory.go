package broker

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"folio/internal/config"
	"folio/internal/robinhood"
	"folio/internal/webull"
)

// Recognised broker types.
const (
	TypeAlpaca    = "alpaca"
	TypeRobinhood = "robinhood"
	TypeWebull    = "webull"
)

// New constructs the broker selected by cfg.Broker.Type. Credentials are
// validated before any network call; adapters that discover their account
// at construction (robinhood, webull) may still fail afterwards with a
// wrapped vendor error.
func New(ctx context.Context, cfg *config.Config) (Broker, error) {
	estimatePrice := decimal.NewFromFloat(cfg.Broker.EstimatePrice)

	switch strings.ToLower(cfg.Broker.Type) {
	case TypeAlpaca:
		c := cfg.Broker.Alpaca
		if c.APIKey == "" || c.APISecret == "" {
			return nil, fmt.Errorf("%w: alpaca api key and secret are required", ErrConfig)
		}
		return NewAlpacaBroker(c.APIKey, c.APISecret, c.BaseURL, estimatePrice), nil

	case TypeRobinhood:
		c := cfg.Broker.Robinhood
		if c.Username == "" || c.Password == "" {
			return nil, fmt.Errorf("%w: robinhood username and password are required", ErrConfig)
		}
		client := robinhood.NewClient(c.Username, c.Password, c.MFACode, c.BaseURL)
		return NewRobinhoodBroker(ctx, client, estimatePrice)

	case TypeWebull:
		c := cfg.Broker.Webull
		if c.AppKey == "" || c.AppSecret == "" {
			return nil, fmt.Errorf("%w: webull app key and secret are required, get them from developer.webull.com", ErrConfig)
		}
		client := webull.NewClient(c.AppKey, c.AppSecret, webull.ParseRegion(c.Region), c.BaseURL)
		return NewWebullBroker(ctx, client, c.AccountID, estimatePrice)

	default:
		return nil, fmt.Errorf("%w: unsupported broker type %q", ErrConfig, cfg.Broker.Type)
	}
}
