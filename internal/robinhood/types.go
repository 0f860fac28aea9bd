package robinhood

import "github.com/shopspring/decimal"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Account is one entry from the accounts endpoint.
type Account struct {
	URL                        string          `json:"url"`
	AccountNumber              string          `json:"account_number"`
	BuyingPower                decimal.Decimal `json:"buying_power"`
	Cash                       decimal.Decimal `json:"cash"`
	CashAvailableForWithdrawal decimal.Decimal `json:"cash_available_for_withdrawal"`
}

// Position is one entry from the positions endpoint. The held security is
// referenced by instrument URL, not by ticker symbol.
type Position struct {
	URL             string          `json:"url"`
	Account         string          `json:"account"`
	InstrumentURL   string          `json:"instrument"`
	Quantity        decimal.Decimal `json:"quantity"`
	AverageBuyPrice decimal.Decimal `json:"average_buy_price"`
}

// Instrument maps a tradable security to its symbol and canonical URL.
type Instrument struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Symbol string `json:"symbol"`
}

// Quote is the current quote for a symbol.
type Quote struct {
	Symbol         string          `json:"symbol"`
	LastTradePrice decimal.Decimal `json:"last_trade_price"`
}

// OrderRequest is the order placement payload. Account and Instrument are
// canonical URLs; RefID is the caller-generated client order identifier.
type OrderRequest struct {
	Account     string          `json:"account"`
	Instrument  string          `json:"instrument"`
	Symbol      string          `json:"symbol"`
	Type        string          `json:"type"`
	TimeInForce string          `json:"time_in_force"`
	Trigger     string          `json:"trigger"`
	Side        string          `json:"side"`
	Quantity    decimal.Decimal `json:"quantity"`
	RefID       string          `json:"ref_id"`
}

// Order is the order placement result.
type Order struct {
	ID    string `json:"id"`
	RefID string `json:"ref_id"`
	State string `json:"state"`
}
