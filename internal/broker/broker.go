// Package broker defines the Broker interface and provides implementations
// for querying portfolio state and placing market orders across different
// brokerages.
package broker

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"folio/internal/domain"
)

// Broker abstracts brokerage operations for portfolio queries and market
// order placement.
type Broker interface {
	// Name returns the broker identifier (e.g. "alpaca", "webull").
	Name() string

	// GetCurrentAllocation returns all currently held positions. Holdings
	// with non-positive quantity, a missing symbol, or a non-positive
	// price are filtered out.
	GetCurrentAllocation(ctx context.Context) ([]domain.Allocation, error)

	// GetAccountCash returns the cash available in the account.
	GetAccountCash(ctx context.Context) (decimal.Decimal, error)

	// Buy submits a market day order for approximately amount dollars of
	// the given symbol. The share quantity is sized from the best price
	// the broker can discover without a live quote.
	Buy(ctx context.Context, symbol string, amount decimal.Decimal) error

	// Sell submits a market day order for the given share quantity,
	// truncated to whole shares.
	Sell(ctx context.Context, symbol string, quantity decimal.Decimal) error
}

// DefaultEstimatePrice sizes buy orders when no position price is known.
// Market orders execute at the prevailing price regardless, so the
// estimate only affects the computed share count.
var DefaultEstimatePrice = decimal.NewFromInt(50)

// Sentinel errors. Operations return these wrapped, so callers classify
// failures with errors.Is rather than parsing messages.
var (
	// ErrConfig marks invalid or incomplete broker configuration,
	// including an account identifier that could not be resolved.
	ErrConfig = errors.New("invalid broker configuration")

	// ErrUnknownInstrument marks a symbol the vendor could not resolve
	// to a tradable instrument.
	ErrUnknownInstrument = errors.New("unknown instrument")

	// ErrAmountTooSmall marks an order that sizes to zero shares.
	ErrAmountTooSmall = errors.New("order size below one share")

	// ErrOrderRejected marks an order the vendor refused.
	ErrOrderRejected = errors.New("order rejected")
)

// shareQuantity computes the whole-share quantity for a dollar amount.
// With a known position price the amount must cover at least one share;
// with only the estimate the order is floored at one share, since the
// estimate is too coarse to reject on.
func shareQuantity(amount, positionPrice, estimatePrice decimal.Decimal) (decimal.Decimal, error) {
	if positionPrice.IsPositive() {
		qty := amount.Div(positionPrice).Floor()
		if !qty.IsPositive() {
			return decimal.Zero, fmt.Errorf("amount %s at price %s: %w", amount, positionPrice, ErrAmountTooSmall)
		}
		return qty, nil
	}

	qty := amount.Div(estimatePrice).Floor()
	if !qty.IsPositive() {
		qty = decimal.NewFromInt(1)
	}
	return qty, nil
}

// clientOrderID generates a unique client order identifier in the form
// side_SYMBOL_<16 hex chars>.
func clientOrderID(side domain.Side, symbol string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s_%s", strings.ToLower(string(side)), symbol, hex.EncodeToString(id[:])[:16])
}
