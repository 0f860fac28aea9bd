package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAllocationWeight(t *testing.T) {
	a := Allocation{
		Symbol:       "AAPL",
		Quantity:     decimal.NewFromInt(10),
		CurrentPrice: decimal.NewFromInt(150),
		MarketValue:  decimal.NewFromInt(1500),
	}

	total := decimal.NewFromInt(3000)
	if got, want := a.Weight(total), decimal.NewFromFloat(0.5); !got.Equal(want) {
		t.Errorf("Weight(%s) = %s, want %s", total, got, want)
	}

	// A non-positive total must not divide.
	if got := a.Weight(decimal.Zero); !got.IsZero() {
		t.Errorf("Weight(0) = %s, want 0", got)
	}
	if got := a.Weight(decimal.NewFromInt(-1)); !got.IsZero() {
		t.Errorf("Weight(-1) = %s, want 0", got)
	}
}

func TestTotalMarketValue(t *testing.T) {
	allocations := []Allocation{
		{Symbol: "AAPL", MarketValue: decimal.NewFromInt(1500)},
		{Symbol: "MSFT", MarketValue: decimal.NewFromInt(2500)},
	}
	if got, want := TotalMarketValue(allocations), decimal.NewFromInt(4000); !got.Equal(want) {
		t.Errorf("TotalMarketValue = %s, want %s", got, want)
	}

	if got := TotalMarketValue(nil); !got.IsZero() {
		t.Errorf("TotalMarketValue(nil) = %s, want 0", got)
	}
}

func TestSideConstants(t *testing.T) {
	if SideBuy != "BUY" {
		t.Errorf("SideBuy = %q, want %q", SideBuy, "BUY")
	}
	if SideSell != "SELL" {
		t.Errorf("SideSell = %q, want %q", SideSell, "SELL")
	}
}
