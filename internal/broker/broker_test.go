package broker

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"folio/internal/domain"
)

func TestShareQuantityFromPositionPrice(t *testing.T) {
	qty, err := shareQuantity(decimal.NewFromInt(1000), decimal.NewFromInt(100), DefaultEstimatePrice)
	if err != nil {
		t.Fatalf("shareQuantity returned error: %v", err)
	}
	if !qty.Equal(decimal.NewFromInt(10)) {
		t.Errorf("qty = %s, want 10", qty)
	}

	// Fractional result floors.
	qty, err = shareQuantity(decimal.NewFromInt(1050), decimal.NewFromInt(100), DefaultEstimatePrice)
	if err != nil {
		t.Fatalf("shareQuantity returned error: %v", err)
	}
	if !qty.Equal(decimal.NewFromInt(10)) {
		t.Errorf("qty = %s, want 10 (floored)", qty)
	}
}

func TestShareQuantityAmountTooSmall(t *testing.T) {
	// At a known position price, amounts below one share are rejected.
	_, err := shareQuantity(decimal.NewFromInt(50), decimal.NewFromInt(100), DefaultEstimatePrice)
	if !errors.Is(err, ErrAmountTooSmall) {
		t.Fatalf("error = %v, want ErrAmountTooSmall", err)
	}
}

func TestShareQuantityFallsBackToEstimate(t *testing.T) {
	// No position price: sized from the estimate.
	qty, err := shareQuantity(decimal.NewFromInt(1000), decimal.Zero, DefaultEstimatePrice)
	if err != nil {
		t.Fatalf("shareQuantity returned error: %v", err)
	}
	if !qty.Equal(decimal.NewFromInt(20)) {
		t.Errorf("qty = %s, want 20 (1000/50)", qty)
	}

	// Estimate sizing never rejects; it floors at one share.
	qty, err = shareQuantity(decimal.NewFromInt(10), decimal.Zero, DefaultEstimatePrice)
	if err != nil {
		t.Fatalf("shareQuantity returned error: %v", err)
	}
	if !qty.Equal(decimal.NewFromInt(1)) {
		t.Errorf("qty = %s, want 1 (minimum)", qty)
	}
}

func TestClientOrderIDFormat(t *testing.T) {
	id := clientOrderID(domain.SideBuy, "AAPL")
	if !strings.HasPrefix(id, "buy_AAPL_") {
		t.Errorf("id = %q, want buy_AAPL_ prefix", id)
	}
	if got := len(strings.TrimPrefix(id, "buy_AAPL_")); got != 16 {
		t.Errorf("suffix length = %d, want 16", got)
	}
}

func TestClientOrderIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := clientOrderID(domain.SideSell, "AAPL")
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate client order id %q", id)
		}
		seen[id] = struct{}{}
	}
}
