package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"folio/internal/domain"
	"folio/internal/webull"
)

// Compile-time interface check.
var _ Broker = (*WebullBroker)(nil)

// WebullBroker implements the Broker interface against the Webull OpenAPI.
type WebullBroker struct {
	client        *webull.Client
	accountID     string
	estimatePrice decimal.Decimal
	log           *slog.Logger
}

// NewWebullBroker creates a WebullBroker bound to one account. When
// accountID is empty the account is discovered, in priority order, from
// the app subscriptions and then the account list; if neither yields an
// identifier construction fails with ErrConfig.
func NewWebullBroker(ctx context.Context, client *webull.Client, accountID string, estimatePrice decimal.Decimal) (*WebullBroker, error) {
	log := slog.Default().With("broker", "webull")

	if accountID == "" {
		if subs, err := client.AppSubscriptions(ctx); err != nil {
			log.Warn("listing app subscriptions", "error", err)
		} else if len(subs) > 0 {
			accountID = subs[0].AccountID
			log.Info("account resolved from subscriptions", "account_id", accountID)
		}
	}

	if accountID == "" {
		if accounts, err := client.AccountList(ctx); err != nil {
			log.Warn("listing accounts", "error", err)
		} else if len(accounts) > 0 {
			accountID = accounts[0].AccountID
			log.Info("account resolved from account list", "account_id", accountID)
		}
	}

	if accountID == "" {
		return nil, fmt.Errorf("%w: could not resolve webull account id, set account_id explicitly", ErrConfig)
	}

	if !estimatePrice.IsPositive() {
		estimatePrice = DefaultEstimatePrice
	}

	return &WebullBroker{
		client:        client,
		accountID:     accountID,
		estimatePrice: estimatePrice,
		log:           log,
	}, nil
}

// Name returns "webull".
func (b *WebullBroker) Name() string {
	return "webull"
}

// GetCurrentAllocation returns the account's holdings as allocations.
func (b *WebullBroker) GetCurrentAllocation(ctx context.Context) ([]domain.Allocation, error) {
	resp, err := b.client.Positions(ctx, b.accountID)
	if err != nil {
		b.log.Error("getting positions", "error", err)
		return nil, fmt.Errorf("getting positions: %w", err)
	}

	allocations := make([]domain.Allocation, 0, len(resp.Holdings))
	for _, h := range resp.Holdings {
		if !h.Qty.IsPositive() || h.Symbol == "" || !h.LastPrice.IsPositive() {
			continue
		}
		allocations = append(allocations, domain.Allocation{
			Symbol:       h.Symbol,
			Quantity:     h.Qty,
			CurrentPrice: h.LastPrice,
			MarketValue:  h.MarketValue,
		})
	}

	b.log.Info("retrieved positions", "count", len(allocations))
	return allocations, nil
}

// GetAccountCash returns the first non-zero value among the balance fields
// in preference order: stock power, available to withdraw, settled cash,
// total cash. Zero when every field is zero.
func (b *WebullBroker) GetAccountCash(ctx context.Context) (decimal.Decimal, error) {
	balance, err := b.client.Balance(ctx, b.accountID)
	if err != nil {
		b.log.Error("getting account balance", "error", err)
		return decimal.Zero, fmt.Errorf("getting account balance: %w", err)
	}

	for _, candidate := range []decimal.Decimal{
		balance.StockPower,
		balance.AvailableToWithdraw,
		balance.SettledCash,
		balance.TotalCash,
	} {
		if !candidate.IsZero() {
			return candidate, nil
		}
	}
	return decimal.Zero, nil
}

// Buy submits a market day order for approximately amount dollars of the
// symbol. The share count is sized from the position's last price when one
// exists, else from the configured estimate price.
func (b *WebullBroker) Buy(ctx context.Context, symbol string, amount decimal.Decimal) error {
	instrument, err := b.resolveInstrument(ctx, symbol)
	if err != nil {
		return err
	}

	qty, err := shareQuantity(amount, b.positionPrice(ctx, symbol), b.estimatePrice)
	if err != nil {
		b.log.Warn("buy not submitted", "symbol", symbol, "amount", amount, "error", err)
		return err
	}

	return b.placeOrder(ctx, instrument, symbol, domain.SideBuy, qty.IntPart())
}

// Sell submits a market day order for the given share quantity, truncated
// to whole shares.
func (b *WebullBroker) Sell(ctx context.Context, symbol string, quantity decimal.Decimal) error {
	instrument, err := b.resolveInstrument(ctx, symbol)
	if err != nil {
		return err
	}

	qty := quantity.Floor()
	if !qty.IsPositive() {
		return fmt.Errorf("quantity %s: %w", quantity, ErrAmountTooSmall)
	}

	return b.placeOrder(ctx, instrument, symbol, domain.SideSell, qty.IntPart())
}

// positionPrice returns the last price of an existing position in symbol,
// or zero when there is none. Best-effort: lookup failures only disable
// position-based sizing.
func (b *WebullBroker) positionPrice(ctx context.Context, symbol string) decimal.Decimal {
	resp, err := b.client.Positions(ctx, b.accountID)
	if err != nil {
		b.log.Debug("could not get price from positions", "symbol", symbol, "error", err)
		return decimal.Zero
	}
	for _, h := range resp.Holdings {
		if h.Symbol == symbol && h.LastPrice.IsPositive() {
			return h.LastPrice
		}
	}
	return decimal.Zero
}

func (b *WebullBroker) resolveInstrument(ctx context.Context, symbol string) (*webull.Instrument, error) {
	instrument, err := b.client.Instrument(ctx, symbol, webull.CategoryUSStock)
	if err != nil {
		b.log.Error("resolving instrument", "symbol", symbol, "error", err)
		if errors.Is(err, webull.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownInstrument)
		}
		return nil, fmt.Errorf("resolving instrument %s: %w", symbol, err)
	}
	return instrument, nil
}

func (b *WebullBroker) placeOrder(ctx context.Context, instrument *webull.Instrument, symbol string, side domain.Side, qty int64) error {
	orderID := clientOrderID(side, symbol)

	resp, err := b.client.PlaceOrder(ctx, webull.PlaceOrderRequest{
		AccountID: b.accountID,
		StockOrder: webull.StockOrder{
			ClientOrderID: orderID,
			InstrumentID:  instrument.InstrumentID,
			Side:          string(side),
			TIF:           "DAY",
			OrderType:     "MARKET",
			Qty:           qty,
		},
	})
	if err != nil {
		b.log.Error("placing order", "symbol", symbol, "side", side, "qty", qty, "error", err)
		var apiErr *webull.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("placing %s order for %s: %w", side, symbol, ErrOrderRejected)
		}
		return fmt.Errorf("placing %s order for %s: %w", side, symbol, err)
	}

	b.log.Info("order placed", "symbol", symbol, "side", side, "qty", qty,
		"order_id", resp.OrderID, "client_order_id", orderID)
	return nil
}
