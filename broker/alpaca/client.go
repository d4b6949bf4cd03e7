package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebot/broker"
	"github.com/rustyeddy/tradebot/market"
)

const (
	// PaperURL is the URL for Alpaca's paper trading environment
	PaperURL = "https://paper-api.alpaca.markets"
	// LiveURL is the URL for Alpaca's live trading environment
	LiveURL = "https://api.alpaca.markets"
	// CryptoQuotesURL is the latest-quotes endpoint of the crypto data API.
	// Quotes (bid/ask) are used instead of last trades so a stale print
	// cannot produce a phantom price.
	CryptoQuotesURL = "https://data.alpaca.markets/v1beta3/crypto/us/latest/quotes"
)

// Client is an Alpaca REST API client implementing broker.Broker.
type Client struct {
	baseURL    string
	dataURL    string
	key        string
	secret     string
	httpClient *http.Client
}

// NewClient creates a new Alpaca API client authenticated with the given
// key pair.
func NewClient(key, secret string, paper bool) *Client {
	baseURL := LiveURL
	if paper {
		baseURL = PaperURL
	}

	return &Client{
		baseURL: baseURL,
		dataURL: CryptoQuotesURL,
		key:     key,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("APCA-API-KEY-ID", c.key)
	req.Header.Set("APCA-API-SECRET-KEY", c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// quoteEntry represents one symbol's quote in the data API response
type quoteEntry struct {
	Bp json.Number `json:"bp"` // best bid price
	Ap json.Number `json:"ap"` // best ask price
}

// quotesResponse represents the data API response for latest quotes
type quotesResponse struct {
	Quotes map[string]quoteEntry `json:"quotes"`
}

// GetQuote fetches the latest bid/ask quote for a symbol (e.g. "DOGE/USD").
func (c *Client) GetQuote(ctx context.Context, symbol string) (market.Quote, error) {
	apiURL := fmt.Sprintf("%s?symbols=%s", c.dataURL, url.QueryEscape(symbol))

	resp, err := c.do(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return market.Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return market.Quote{}, apiError(resp)
	}

	var qr quotesResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return market.Quote{}, fmt.Errorf("decode response: %w", err)
	}

	entry, ok := qr.Quotes[symbol]
	if !ok {
		return market.Quote{}, fmt.Errorf("no quote for %s in response", symbol)
	}

	bid, err := parseDecimal(entry.Bp.String(), "bid")
	if err != nil {
		return market.Quote{}, err
	}
	ask, err := parseDecimal(entry.Ap.String(), "ask")
	if err != nil {
		return market.Quote{}, err
	}

	return market.Quote{Instrument: symbol, Bid: bid, Ask: ask}, nil
}

// apiAccount represents the account endpoint response. Alpaca encodes
// monetary values as strings.
type apiAccount struct {
	Cash       string `json:"cash"`
	LastEquity string `json:"last_equity"`
}

// GetAccount fetches the account's cash balance and last-period equity.
func (c *Client) GetAccount(ctx context.Context) (broker.Account, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/account", nil)
	if err != nil {
		return broker.Account{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return broker.Account{}, apiError(resp)
	}

	var acct apiAccount
	if err := json.NewDecoder(resp.Body).Decode(&acct); err != nil {
		return broker.Account{}, fmt.Errorf("decode response: %w", err)
	}

	cash, err := parseDecimal(acct.Cash, "cash")
	if err != nil {
		return broker.Account{}, err
	}
	lastEquity, err := parseDecimal(acct.LastEquity, "last_equity")
	if err != nil {
		return broker.Account{}, err
	}

	return broker.Account{Cash: cash, LastEquity: lastEquity}, nil
}

// apiPosition represents the position endpoint response
type apiPosition struct {
	Qty           string `json:"qty"`
	AvgEntryPrice string `json:"avg_entry_price"`
}

// GetPosition fetches the open position for an asset (e.g. "DOGEUSD").
// A 404 means no open position and maps to a zero Position, not an error.
func (c *Client) GetPosition(ctx context.Context, assetID string) (broker.Position, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/positions/"+assetID, nil)
	if err != nil {
		return broker.Position{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return broker.Position{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return broker.Position{}, apiError(resp)
	}

	var pos apiPosition
	if err := json.NewDecoder(resp.Body).Decode(&pos); err != nil {
		return broker.Position{}, fmt.Errorf("decode response: %w", err)
	}

	qty, err := parseDecimal(pos.Qty, "qty")
	if err != nil {
		return broker.Position{}, err
	}
	avg, err := parseDecimal(pos.AvgEntryPrice, "avg_entry_price")
	if err != nil {
		return broker.Position{}, err
	}

	return broker.Position{Qty: qty, AvgEntryPrice: avg}, nil
}

// apiOrder represents the orders endpoint response
type apiOrder struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	FilledQty string `json:"filled_qty"`
}

func (o apiOrder) toOrder() (broker.Order, error) {
	ord := broker.Order{
		ID:     o.ID,
		Status: broker.OrderStatus(o.Status),
	}
	if o.Status == "" {
		ord.Status = broker.StatusUnknown
	}
	if o.FilledQty != "" {
		filled, err := parseDecimal(o.FilledQty, "filled_qty")
		if err != nil {
			return broker.Order{}, err
		}
		ord.FilledQty = filled
	}
	return ord, nil
}

// orderPayload is the order submission request body. Alpaca wants qty and
// limit_price as strings.
type orderPayload struct {
	Symbol      string `json:"symbol"`
	Qty         string `json:"qty"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	LimitPrice  string `json:"limit_price"`
	TimeInForce string `json:"time_in_force"`
}

// SubmitOrder places a GTC limit order and returns the broker's view of it.
// A response without an order id is an error: there is nothing to track.
func (c *Client) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	if !req.Side.Valid() {
		return broker.Order{}, fmt.Errorf("invalid order side %q", req.Side)
	}

	side := "buy"
	if req.Side == market.Sell {
		side = "sell"
	}

	body, err := json.Marshal(orderPayload{
		Symbol:      req.Symbol,
		Qty:         req.Qty.String(),
		Side:        side,
		Type:        "limit",
		LimitPrice:  req.LimitPrice.String(),
		TimeInForce: "gtc",
	})
	if err != nil {
		return broker.Order{}, fmt.Errorf("marshal order: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/v2/orders", body)
	if err != nil {
		return broker.Order{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return broker.Order{}, apiError(resp)
	}

	var ao apiOrder
	if err := json.NewDecoder(resp.Body).Decode(&ao); err != nil {
		return broker.Order{}, fmt.Errorf("decode response: %w", err)
	}
	if ao.ID == "" {
		return broker.Order{}, fmt.Errorf("order response missing id")
	}
	return ao.toOrder()
}

// GetOrder fetches the current status and filled quantity of an order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (broker.Order, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/orders/"+orderID, nil)
	if err != nil {
		return broker.Order{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return broker.Order{}, apiError(resp)
	}

	var ao apiOrder
	if err := json.NewDecoder(resp.Body).Decode(&ao); err != nil {
		return broker.Order{}, fmt.Errorf("decode response: %w", err)
	}
	return ao.toOrder()
}

// CancelOrder requests cancellation of an order's unfilled remainder.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.baseURL+"/v2/orders/"+orderID, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	return nil
}

func apiError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(b))
}

func parseDecimal(s, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}
