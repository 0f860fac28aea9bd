package webull

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in   string
		want Region
	}{
		{"US", RegionUS},
		{"us", RegionUS},
		{"hk", RegionHK},
		{" jp ", RegionJP},
		{"", RegionUS},
		{"MARS", RegionUS},
	}
	for _, tt := range tests {
		if got := ParseRegion(tt.in); got != tt.want {
			t.Errorf("ParseRegion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientPositionsDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pathPositions {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("account_id"); got != "A1" {
			t.Errorf("account_id = %q, want %q", got, "A1")
		}
		if r.Header.Get("x-signature") == "" {
			t.Error("request is missing x-signature header")
		}
		// Webull mixes string and numeric encodings for quantities.
		w.Write([]byte(`{"holdings":[
			{"symbol":"AAPL","instrument_id":"913256135","qty":"10","last_price":150.25,"market_value":"1502.50"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("key", "secret", RegionUS, srv.URL)
	resp, err := c.Positions(context.Background(), "A1")
	if err != nil {
		t.Fatalf("Positions returned error: %v", err)
	}
	if len(resp.Holdings) != 1 {
		t.Fatalf("got %d holdings, want 1", len(resp.Holdings))
	}
	h := resp.Holdings[0]
	if h.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want %q", h.Symbol, "AAPL")
	}
	if !h.Qty.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Qty = %s, want 10", h.Qty)
	}
	if !h.LastPrice.Equal(decimal.NewFromFloat(150.25)) {
		t.Errorf("LastPrice = %s, want 150.25", h.LastPrice)
	}
}

func TestClientInstrumentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient("key", "secret", RegionUS, srv.URL)
	_, err := c.Instrument(context.Background(), "NOPE", CategoryUSStock)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Instrument error = %v, want ErrNotFound", err)
	}
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("key", "secret", RegionUS, srv.URL)
	_, err := c.Balance(context.Background(), "A1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Balance error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusTooManyRequests)
	}
}

func TestClientPlaceOrderPayload(t *testing.T) {
	var got PlaceOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding order payload: %v", err)
		}
		w.Write([]byte(`{"order_id":"o-1","client_order_id":"buy_AAPL_abc"}`))
	}))
	defer srv.Close()

	c := NewClient("key", "secret", RegionUS, srv.URL)
	resp, err := c.PlaceOrder(context.Background(), PlaceOrderRequest{
		AccountID: "A1",
		StockOrder: StockOrder{
			ClientOrderID: "buy_AAPL_abc",
			InstrumentID:  "913256135",
			Side:          "BUY",
			TIF:           "DAY",
			OrderType:     "MARKET",
			Qty:           10,
		},
	})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if resp.OrderID != "o-1" {
		t.Errorf("OrderID = %q, want %q", resp.OrderID, "o-1")
	}
	if got.StockOrder.Qty != 10 {
		t.Errorf("submitted qty = %d, want 10", got.StockOrder.Qty)
	}
	if got.StockOrder.OrderType != "MARKET" || got.StockOrder.TIF != "DAY" {
		t.Errorf("submitted order type/tif = %q/%q, want MARKET/DAY", got.StockOrder.OrderType, got.StockOrder.TIF)
	}
}
