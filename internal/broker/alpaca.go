package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"

	"folio/internal/domain"
)

// Compile-time interface check.
var _ Broker = (*AlpacaBroker)(nil)

// AlpacaBroker implements the Broker interface using the Alpaca trading
// API. The account is implicit in the API key pair, so no discovery
// happens at construction. The SDK's methods are not context-aware; the
// ctx arguments only gate our side of each call.
type AlpacaBroker struct {
	client        *alpacaapi.Client
	estimatePrice decimal.Decimal
	log           *slog.Logger
}

// NewAlpacaBroker creates an AlpacaBroker configured with the given
// credentials and API endpoint. An empty baseURL means the SDK default.
func NewAlpacaBroker(apiKey, apiSecret, baseURL string, estimatePrice decimal.Decimal) *AlpacaBroker {
	if !estimatePrice.IsPositive() {
		estimatePrice = DefaultEstimatePrice
	}

	return &AlpacaBroker{
		client: alpacaapi.NewClient(alpacaapi.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		estimatePrice: estimatePrice,
		log:           slog.Default().With("broker", "alpaca"),
	}
}

// Name returns "alpaca".
func (b *AlpacaBroker) Name() string {
	return "alpaca"
}

// GetCurrentAllocation returns the account's positions as allocations.
func (b *AlpacaBroker) GetCurrentAllocation(ctx context.Context) ([]domain.Allocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	positions, err := b.client.GetPositions()
	if err != nil {
		b.log.Error("getting positions", "error", err)
		return nil, fmt.Errorf("getting positions: %w", err)
	}

	allocations := make([]domain.Allocation, 0, len(positions))
	for _, p := range positions {
		price := decimal.Zero
		if p.CurrentPrice != nil {
			price = *p.CurrentPrice
		}
		if !p.Qty.IsPositive() || p.Symbol == "" || !price.IsPositive() {
			continue
		}
		marketValue := decimal.Zero
		if p.MarketValue != nil {
			marketValue = *p.MarketValue
		}
		allocations = append(allocations, domain.Allocation{
			Symbol:       p.Symbol,
			Quantity:     p.Qty,
			CurrentPrice: price,
			MarketValue:  marketValue,
		})
	}

	b.log.Info("retrieved positions", "count", len(allocations))
	return allocations, nil
}

// GetAccountCash returns the account's cash balance.
func (b *AlpacaBroker) GetAccountCash(ctx context.Context) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	account, err := b.client.GetAccount()
	if err != nil {
		b.log.Error("getting account", "error", err)
		return decimal.Zero, fmt.Errorf("getting account: %w", err)
	}
	return account.Cash, nil
}

// Buy submits a market day order for approximately amount dollars of the
// symbol, sized from an existing position's price when one exists, else
// from the configured estimate price.
func (b *AlpacaBroker) Buy(ctx context.Context, symbol string, amount decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	qty, err := shareQuantity(amount, b.positionPrice(symbol), b.estimatePrice)
	if err != nil {
		b.log.Warn("buy not submitted", "symbol", symbol, "amount", amount, "error", err)
		return err
	}

	return b.placeOrder(symbol, domain.SideBuy, alpacaapi.Buy, qty)
}

// Sell submits a market day order for the given share quantity, truncated
// to whole shares.
func (b *AlpacaBroker) Sell(ctx context.Context, symbol string, quantity decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	qty := quantity.Floor()
	if !qty.IsPositive() {
		return fmt.Errorf("quantity %s: %w", quantity, ErrAmountTooSmall)
	}

	return b.placeOrder(symbol, domain.SideSell, alpacaapi.Sell, qty)
}

// positionPrice returns the current price of an existing position in
// symbol, or zero when there is none.
func (b *AlpacaBroker) positionPrice(symbol string) decimal.Decimal {
	position, err := b.client.GetPosition(symbol)
	if err != nil {
		b.log.Debug("could not get price from position", "symbol", symbol, "error", err)
		return decimal.Zero
	}
	if position.CurrentPrice == nil {
		return decimal.Zero
	}
	return *position.CurrentPrice
}

func (b *AlpacaBroker) placeOrder(symbol string, side domain.Side, apiSide alpacaapi.Side, qty decimal.Decimal) error {
	orderID := clientOrderID(side, symbol)

	order, err := b.client.PlaceOrder(alpacaapi.PlaceOrderRequest{
		Symbol:        symbol,
		Qty:           &qty,
		Side:          apiSide,
		Type:          alpacaapi.Market,
		TimeInForce:   alpacaapi.Day,
		ClientOrderID: orderID,
	})
	if err != nil {
		b.log.Error("placing order", "symbol", symbol, "side", side, "qty", qty, "error", err)
		var apiErr *alpacaapi.APIError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusNotFound {
				return fmt.Errorf("%s: %w", symbol, ErrUnknownInstrument)
			}
			return fmt.Errorf("placing %s order for %s: %w", side, symbol, ErrOrderRejected)
		}
		return fmt.Errorf("placing %s order for %s: %w", side, symbol, err)
	}

	b.log.Info("order placed", "symbol", symbol, "side", side, "qty", qty,
		"order_id", order.ID, "client_order_id", orderID)
	return nil
}
