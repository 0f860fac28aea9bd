// Package robinhood is a thin client for the Robinhood private REST API:
// password-grant login, accounts, positions, quotes, instrument lookup,
// and order placement. Responses encode numbers as strings; the types in
// this package decode them into decimals.
package robinhood

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"folio/internal/util"
)

const (
	// DefaultBaseURL is the production Robinhood API endpoint.
	DefaultBaseURL = "https://api.robinhood.com"

	// oauthClientID is the public client identifier used by the
	// Robinhood web application for password-grant logins.
	oauthClientID = "c82SH0WZOsabOXGP2sxqcj34FxkvfnWRZBKlBjFS"

	requestTimeout = 30 * time.Second

	// Transient GET failures are retried with exponential backoff.
	retryAttempts  = 3
	retryBaseDelay = 500 * time.Millisecond
)

// ErrNotFound is returned when a lookup yields no result.
var ErrNotFound = errors.New("robinhood: not found")

// APIError is a non-2xx response from the Robinhood API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("robinhood: API error (status %d): %s", e.StatusCode, e.Body)
}

// Client is a minimal Robinhood API client. Login must be called before
// any other method; the bearer token is held for the client's lifetime.
type Client struct {
	baseURL     string
	username    string
	password    string
	mfaCode     string
	deviceToken string
	accessToken string
	httpClient  *http.Client
	log         *slog.Logger
}

// NewClient creates a client for the given credentials. An empty baseURL
// means the production endpoint.
func NewClient(username, password, mfaCode, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:     baseURL,
		username:    username,
		password:    password,
		mfaCode:     mfaCode,
		deviceToken: uuid.NewString(),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		log: slog.Default().With("vendor", "robinhood"),
	}
}

// Login performs the OAuth password grant and stores the access token.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{
		"grant_type":   {"password"},
		"scope":        {"internal"},
		"client_id":    {oauthClientID},
		"device_token": {c.deviceToken},
		"username":     {c.username},
		"password":     {c.password},
	}
	if c.mfaCode != "" {
		form.Set("mfa_code", c.mfaCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/token/",
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("decoding login response: %w", err)
	}
	if token.AccessToken == "" {
		return errors.New("robinhood: login response contained no access token")
	}

	c.accessToken = token.AccessToken
	return nil
}

// Accounts returns the accounts owned by the authenticated user.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var page struct {
		Results []Account `json:"results"`
	}
	if err := c.get(ctx, "/accounts/", nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Positions returns all non-zero positions, following cursor pagination.
func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	var positions []Position

	next := c.baseURL + "/positions/?nonzero=true"
	for next != "" {
		var page struct {
			Results []Position `json:"results"`
			Next    string     `json:"next"`
		}
		if err := c.getURL(ctx, next, &page); err != nil {
			return nil, err
		}
		positions = append(positions, page.Results...)
		next = page.Next
	}
	return positions, nil
}

// Instrument resolves a ticker symbol to an instrument. Returns
// ErrNotFound when the symbol is unknown.
func (c *Client) Instrument(ctx context.Context, symbol string) (*Instrument, error) {
	var page struct {
		Results []Instrument `json:"results"`
	}
	query := url.Values{"symbol": {symbol}}
	if err := c.get(ctx, "/instruments/", query, &page); err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, fmt.Errorf("resolving %s: %w", symbol, ErrNotFound)
	}
	return &page.Results[0], nil
}

// InstrumentByURL fetches an instrument by its canonical URL, as referenced
// from a position record.
func (c *Client) InstrumentByURL(ctx context.Context, instrumentURL string) (*Instrument, error) {
	var inst Instrument
	if err := c.getURL(ctx, instrumentURL, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

// Quote returns the current quote for a symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	var quote Quote
	if err := c.get(ctx, "/quotes/"+url.PathEscape(symbol)+"/", nil, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// PlaceOrder submits an order.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders/",
		bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing order request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		c.log.Error("order placement failed", "status", resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decoding order response: %w", err)
	}
	return &order, nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

func (c *Client) authorize(req *http.Request) {
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	apiURL := c.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}
	return c.getURL(ctx, apiURL, out)
}

// getURL performs an authenticated GET against an absolute URL. GETs are
// idempotent here, so failures are retried with backoff.
func (c *Client) getURL(ctx context.Context, apiURL string, out any) error {
	return util.Retry(ctx, retryAttempts, retryBaseDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(resp.Body)
			return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		return json.NewDecoder(resp.Body).Decode(out)
	})
}
