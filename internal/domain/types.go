// Package domain defines the shared value types exchanged between the
// broker adapters and their callers.
package domain

import "github.com/shopspring/decimal"

// Allocation is one held position at query time. Values are snapshots
// produced by a broker adapter from vendor data; an Allocation is never
// mutated after construction.
type Allocation struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
}

// Weight returns the allocation's share of the given total portfolio
// value, or zero when the total is not positive.
func (a Allocation) Weight(total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return a.MarketValue.Div(total)
}

// TotalMarketValue sums the market value of the given allocations.
func TotalMarketValue(allocations []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.MarketValue)
	}
	return total
}

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)
