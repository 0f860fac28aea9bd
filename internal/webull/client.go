package webull

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
	"time"

	"folio/internal/util"
)

const (
	// CategoryUSStock is the instrument category for US equities.
	CategoryUSStock = "US_STOCK"

	// requestsPerMinute is the OpenAPI per-key throttle.
	requestsPerMinute = 120

	requestTimeout = 30 * time.Second
)

// Endpoint paths.
const (
	pathSubscriptions = "/openapi/app/subscriptions"
	pathAccountList   = "/openapi/account/list"
	pathPositions     = "/openapi/account/positions"
	pathBalance       = "/openapi/account/balance"
	pathInstrument    = "/openapi/instrument/list"
	pathPlaceOrder    = "/openapi/trade/order/place"
)

// ErrNotFound is returned when a lookup yields no result.
var ErrNotFound = errors.New("webull: not found")

// APIError is a non-2xx response from the Webull API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("webull: API error (status %d): %s", e.StatusCode, e.Body)
}

// Client is a minimal Webull OpenAPI client. All calls are synchronous and
// signed; a token-bucket limiter keeps requests under the vendor throttle.
type Client struct {
	baseURL    string
	signer     *Signer
	httpClient *http.Client
	limiter    *util.RateLimiter
	log        *slog.Logger
}

// NewClient creates a client for the given app key pair. An empty baseURL
// means the region's default endpoint.
func NewClient(appKey, appSecret string, region Region, baseURL string) *Client {
	if baseURL == "" {
		baseURL = region.Endpoint()
	}

	return &Client{
		baseURL: baseURL,
		signer:  NewSigner(appKey, appSecret),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		limiter: util.NewRateLimiter(requestsPerMinute),
		log:     slog.Default().With("vendor", "webull"),
	}
}

// AppSubscriptions returns the accounts subscribed to this app key.
func (c *Client) AppSubscriptions(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	if err := c.get(ctx, pathSubscriptions, nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// AccountList returns the accounts visible to this app key.
func (c *Client) AccountList(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.get(ctx, pathAccountList, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Positions returns the holdings of the given account.
func (c *Client) Positions(ctx context.Context, accountID string) (*PositionsResponse, error) {
	query := url.Values{"account_id": {accountID}}
	var resp PositionsResponse
	if err := c.get(ctx, pathPositions, query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Balance returns the balance of the given account.
func (c *Client) Balance(ctx context.Context, accountID string) (*Balance, error) {
	query := url.Values{"account_id": {accountID}}
	var balance Balance
	if err := c.get(ctx, pathBalance, query, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// Instrument resolves a symbol in the given category to a tradable
// instrument. Returns ErrNotFound when the symbol is unknown.
func (c *Client) Instrument(ctx context.Context, symbol, category string) (*Instrument, error) {
	query := url.Values{
		"symbols":  {symbol},
		"category": {category},
	}
	var instruments []Instrument
	if err := c.get(ctx, pathInstrument, query, &instruments); err != nil {
		return nil, err
	}
	if len(instruments) == 0 {
		return nil, fmt.Errorf("resolving %s: %w", symbol, ErrNotFound)
	}
	return &instruments[0], nil
}

// PlaceOrder submits a stock order.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResponse, error) {
	var resp PlaceOrderResponse
	if err := c.post(ctx, pathPlaceOrder, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	rawQuery := ""
	if query != nil {
		rawQuery = query.Encode()
	}

	apiURL := c.baseURL + path
	if rawQuery != "" {
		apiURL += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.signer.Headers(method, path, rawQuery, string(bodyBytes)) {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		c.log.Error("request failed", "method", method, "path", path, "status", resp.StatusCode)
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
