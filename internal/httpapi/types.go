// Package httpapi provides a small HTTP JSON API over a broker: portfolio
// allocation, account cash, and market order placement.
package httpapi

import (
	"github.com/shopspring/decimal"

	"folio/internal/domain"
)

// AllocationJSON is the JSON representation of one held position, with its
// weight in the portfolio.
type AllocationJSON struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
	Weight       decimal.Decimal `json:"weight"`
}

// AllocationResponse is the response for the allocation endpoint.
type AllocationResponse struct {
	Broker      string           `json:"broker"`
	TotalValue  decimal.Decimal  `json:"total_value"`
	Allocations []AllocationJSON `json:"allocations"`
}

// CashResponse is the response for the cash endpoint.
type CashResponse struct {
	Broker string          `json:"broker"`
	Cash   decimal.Decimal `json:"cash"`
}

// BuyRequest is the payload for the buy endpoint.
type BuyRequest struct {
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
}

// SellRequest is the payload for the sell endpoint.
type SellRequest struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderResponse acknowledges an accepted order.
type OrderResponse struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Accepted bool   `json:"accepted"`
}

// ErrorResponse carries an error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// convertAllocations computes weights and wraps allocations for JSON.
func convertAllocations(allocations []domain.Allocation) (decimal.Decimal, []AllocationJSON) {
	total := domain.TotalMarketValue(allocations)

	out := make([]AllocationJSON, 0, len(allocations))
	for _, a := range allocations {
		out = append(out, AllocationJSON{
			Symbol:       a.Symbol,
			Quantity:     a.Quantity,
			CurrentPrice: a.CurrentPrice,
			MarketValue:  a.MarketValue,
			Weight:       a.Weight(total),
		})
	}
	return total, out
}
