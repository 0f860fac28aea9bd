package webull

import "github.com/shopspring/decimal"

// Subscription is one entry from the app subscriptions endpoint.
type Subscription struct {
	SubscriptionID string `json:"subscription_id"`
	AccountID      string `json:"account_id"`
}

// Account is one entry from the account list endpoint.
type Account struct {
	AccountID   string `json:"account_id"`
	AccountType string `json:"account_type"`
	Currency    string `json:"currency"`
}

// Holding is one position row from the account positions endpoint. Webull
// serialises numbers as strings; decimal.Decimal accepts both forms.
type Holding struct {
	Symbol      string          `json:"symbol"`
	InstrumentID string         `json:"instrument_id"`
	Qty         decimal.Decimal `json:"qty"`
	LastPrice   decimal.Decimal `json:"last_price"`
	MarketValue decimal.Decimal `json:"market_value"`
}

// PositionsResponse wraps the holdings list.
type PositionsResponse struct {
	Holdings []Holding `json:"holdings"`
}

// Balance is the account balance payload. Several fields describe
// overlapping notions of "cash"; the adapter picks among them.
type Balance struct {
	StockPower          decimal.Decimal `json:"stock_power"`
	AvailableToWithdraw decimal.Decimal `json:"available_to_withdraw"`
	SettledCash         decimal.Decimal `json:"settled_cash"`
	TotalCash           decimal.Decimal `json:"total_cash"`
	Currency            string          `json:"currency"`
}

// Instrument is one entry from the instrument lookup endpoint.
type Instrument struct {
	InstrumentID string `json:"instrument_id"`
	Symbol       string `json:"symbol"`
	Exchange     string `json:"exchange"`
}

// StockOrder is the order body inside a placement request.
type StockOrder struct {
	ClientOrderID string `json:"client_order_id"`
	InstrumentID  string `json:"instrument_id"`
	Side          string `json:"side"`
	TIF           string `json:"tif"`
	OrderType     string `json:"order_type"`
	Qty           int64  `json:"qty"`
}

// PlaceOrderRequest is the v2 order placement payload.
type PlaceOrderRequest struct {
	AccountID  string     `json:"account_id"`
	StockOrder StockOrder `json:"stock_order"`
}

// PlaceOrderResponse is the v2 order placement result.
type PlaceOrderResponse struct {
	OrderID       string `json:"order_id"`
	ClientOrderID string `json:"client_order_id"`
}
