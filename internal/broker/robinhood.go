package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"folio/internal/domain"
	"folio/internal/robinhood"
)

// Compile-time interface check.
var _ Broker = (*RobinhoodBroker)(nil)

// RobinhoodBroker implements the Broker interface against the Robinhood
// API. Positions reference securities by instrument URL, so allocation
// queries resolve each instrument back to its symbol and quote.
type RobinhoodBroker struct {
	client        *robinhood.Client
	accountURL    string
	accountNumber string
	estimatePrice decimal.Decimal
	log           *slog.Logger
}

// NewRobinhoodBroker logs in with the given client and binds to the first
// account found. Fails with ErrConfig when the user has no accounts.
func NewRobinhoodBroker(ctx context.Context, client *robinhood.Client, estimatePrice decimal.Decimal) (*RobinhoodBroker, error) {
	log := slog.Default().With("broker", "robinhood")

	if err := client.Login(ctx); err != nil {
		log.Error("logging in", "error", err)
		return nil, fmt.Errorf("robinhood login: %w", err)
	}

	accounts, err := client.Accounts(ctx)
	if err != nil {
		log.Error("listing accounts", "error", err)
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: robinhood user has no accounts", ErrConfig)
	}

	if !estimatePrice.IsPositive() {
		estimatePrice = DefaultEstimatePrice
	}

	log.Info("using account", "account_number", accounts[0].AccountNumber)
	return &RobinhoodBroker{
		client:        client,
		accountURL:    accounts[0].URL,
		accountNumber: accounts[0].AccountNumber,
		estimatePrice: estimatePrice,
		log:           log,
	}, nil
}

// Name returns "robinhood".
func (b *RobinhoodBroker) Name() string {
	return "robinhood"
}

// GetCurrentAllocation returns all non-zero positions as allocations,
// resolving each position's instrument URL to a symbol and quoting its
// current price.
func (b *RobinhoodBroker) GetCurrentAllocation(ctx context.Context) ([]domain.Allocation, error) {
	positions, err := b.client.Positions(ctx)
	if err != nil {
		b.log.Error("getting positions", "error", err)
		return nil, fmt.Errorf("getting positions: %w", err)
	}

	allocations := make([]domain.Allocation, 0, len(positions))
	for _, p := range positions {
		if !p.Quantity.IsPositive() {
			continue
		}

		instrument, err := b.client.InstrumentByURL(ctx, p.InstrumentURL)
		if err != nil {
			b.log.Error("resolving position instrument", "url", p.InstrumentURL, "error", err)
			return nil, fmt.Errorf("resolving position instrument: %w", err)
		}
		if instrument.Symbol == "" {
			continue
		}

		quote, err := b.client.Quote(ctx, instrument.Symbol)
		if err != nil {
			b.log.Error("quoting position", "symbol", instrument.Symbol, "error", err)
			return nil, fmt.Errorf("quoting %s: %w", instrument.Symbol, err)
		}
		if !quote.LastTradePrice.IsPositive() {
			continue
		}

		allocations = append(allocations, domain.Allocation{
			Symbol:       instrument.Symbol,
			Quantity:     p.Quantity,
			CurrentPrice: quote.LastTradePrice,
			MarketValue:  p.Quantity.Mul(quote.LastTradePrice),
		})
	}

	b.log.Info("retrieved positions", "count", len(allocations))
	return allocations, nil
}

// GetAccountCash returns the first non-zero value among the account's
// balance fields in preference order: buying power, cash available for
// withdrawal, cash. Zero when every field is zero.
func (b *RobinhoodBroker) GetAccountCash(ctx context.Context) (decimal.Decimal, error) {
	accounts, err := b.client.Accounts(ctx)
	if err != nil {
		b.log.Error("getting accounts", "error", err)
		return decimal.Zero, fmt.Errorf("getting accounts: %w", err)
	}

	for _, account := range accounts {
		if account.AccountNumber != b.accountNumber {
			continue
		}
		for _, candidate := range []decimal.Decimal{
			account.BuyingPower,
			account.CashAvailableForWithdrawal,
			account.Cash,
		} {
			if !candidate.IsZero() {
				return candidate, nil
			}
		}
		return decimal.Zero, nil
	}
	return decimal.Zero, fmt.Errorf("account %s no longer listed", b.accountNumber)
}

// Buy submits a market day order for approximately amount dollars of the
// symbol, sized from an existing position's quoted price when one exists,
// else from the configured estimate price.
func (b *RobinhoodBroker) Buy(ctx context.Context, symbol string, amount decimal.Decimal) error {
	instrument, err := b.resolveInstrument(ctx, symbol)
	if err != nil {
		return err
	}

	qty, err := shareQuantity(amount, b.positionPrice(ctx, instrument), b.estimatePrice)
	if err != nil {
		b.log.Warn("buy not submitted", "symbol", symbol, "amount", amount, "error", err)
		return err
	}

	return b.placeOrder(ctx, instrument, domain.SideBuy, qty)
}

// Sell submits a market day order for the given share quantity, truncated
// to whole shares.
func (b *RobinhoodBroker) Sell(ctx context.Context, symbol string, quantity decimal.Decimal) error {
	instrument, err := b.resolveInstrument(ctx, symbol)
	if err != nil {
		return err
	}

	qty := quantity.Floor()
	if !qty.IsPositive() {
		return fmt.Errorf("quantity %s: %w", quantity, ErrAmountTooSmall)
	}

	return b.placeOrder(ctx, instrument, domain.SideSell, qty)
}

// positionPrice returns the quoted price for a symbol the account already
// holds, or zero when there is no position. Best-effort: failures only
// disable position-based sizing.
func (b *RobinhoodBroker) positionPrice(ctx context.Context, instrument *robinhood.Instrument) decimal.Decimal {
	positions, err := b.client.Positions(ctx)
	if err != nil {
		b.log.Debug("could not list positions for sizing", "error", err)
		return decimal.Zero
	}

	for _, p := range positions {
		if p.InstrumentURL != instrument.URL || !p.Quantity.IsPositive() {
			continue
		}
		quote, err := b.client.Quote(ctx, instrument.Symbol)
		if err != nil {
			b.log.Debug("could not quote position", "symbol", instrument.Symbol, "error", err)
			return decimal.Zero
		}
		return quote.LastTradePrice
	}
	return decimal.Zero
}

func (b *RobinhoodBroker) resolveInstrument(ctx context.Context, symbol string) (*robinhood.Instrument, error) {
	instrument, err := b.client.Instrument(ctx, symbol)
	if err != nil {
		b.log.Error("resolving instrument", "symbol", symbol, "error", err)
		if errors.Is(err, robinhood.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownInstrument)
		}
		return nil, fmt.Errorf("resolving instrument %s: %w", symbol, err)
	}
	return instrument, nil
}

func (b *RobinhoodBroker) placeOrder(ctx context.Context, instrument *robinhood.Instrument, side domain.Side, qty decimal.Decimal) error {
	orderID := clientOrderID(side, instrument.Symbol)

	order, err := b.client.PlaceOrder(ctx, robinhood.OrderRequest{
		Account:     b.accountURL,
		Instrument:  instrument.URL,
		Symbol:      instrument.Symbol,
		Type:        "market",
		TimeInForce: "gfd",
		Trigger:     "immediate",
		Side:        strings.ToLower(string(side)),
		Quantity:    qty,
		RefID:       orderID,
	})
	if err != nil {
		b.log.Error("placing order", "symbol", instrument.Symbol, "side", side, "qty", qty, "error", err)
		var apiErr *robinhood.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("placing %s order for %s: %w", side, instrument.Symbol, ErrOrderRejected)
		}
		return fmt.Errorf("placing %s order for %s: %w", side, instrument.Symbol, err)
	}

	b.log.Info("order placed", "symbol", instrument.Symbol, "side", side, "qty", qty,
		"order_id", order.ID, "client_order_id", orderID)
	return nil
}
