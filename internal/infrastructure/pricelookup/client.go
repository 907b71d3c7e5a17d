// Package pricelookup is the HTTP client for the product price endpoint
// GET /get-product-price/{id}/.
package pricelookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/erp/pricesync/internal/fieldsync"
	"github.com/shopspring/decimal"
)

// maxResponseSize caps how much of a response body is read (1MB)
const maxResponseSize = 1 << 20

// maxErrorBody caps the body kept on a StatusError
const maxErrorBody = 512

// ErrMissingPrice indicates a response without a usable price field
var ErrMissingPrice = errors.New("pricelookup: response has no price")

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("pricelookup: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("pricelookup: HTTP %d: %s", e.StatusCode, e.Body)
}

// Config holds client configuration
type Config struct {
	BaseURL   string
	Timeout   time.Duration // zero means no timeout
	UserAgent string
}

// Client fetches product prices over HTTP
type Client struct {
	baseURL    *url.URL
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is
// overridden only when Config.Timeout is set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new price lookup client
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("pricelookup: invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("pricelookup: base url %q must be http or https", cfg.BaseURL)
	}

	c := &Client{
		baseURL:    base,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.Timeout > 0 {
		c.httpClient.Timeout = cfg.Timeout
	}
	return c, nil
}

// PriceURL returns the lookup URL for a product, path-escaping the id
func (c *Client) PriceURL(id fieldsync.ProductID) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/get-product-price/" + string(id) + "/"
	u.RawPath = c.baseURL.EscapedPath() + "/get-product-price/" + url.PathEscape(string(id)) + "/"
	return u.String()
}

// LookupPrice implements fieldsync.Lookup
func (c *Client) LookupPrice(ctx context.Context, id fieldsync.ProductID) (fieldsync.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PriceURL(id), nil)
	if err != nil {
		return fieldsync.Quote{}, fmt.Errorf("pricelookup: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fieldsync.Quote{}, fmt.Errorf("pricelookup: request product %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fieldsync.Quote{}, fmt.Errorf("pricelookup: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return fieldsync.Quote{}, &StatusError{StatusCode: resp.StatusCode, Body: text}
	}

	return DecodeQuote(body)
}

type priceBody struct {
	Price    json.RawMessage `json:"price"`
	Quantity json.RawMessage `json:"quantity"`
}

// DecodeQuote parses a price response. A string price is returned as
// written, e.g. "15.50". A JSON number is rendered in its shortest form,
// so 19.990 becomes "19.99". Quantity is optional and is dropped when it
// is not a whole number.
func DecodeQuote(body []byte) (fieldsync.Quote, error) {
	var parsed priceBody
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return fieldsync.Quote{}, fmt.Errorf("pricelookup: decode response: %w", err)
	}

	raw := strings.TrimSpace(string(parsed.Price))
	if raw == "" || raw == "null" {
		return fieldsync.Quote{}, ErrMissingPrice
	}

	text := raw
	quoted := strings.HasPrefix(raw, `"`)
	if quoted {
		if err := sonic.UnmarshalString(raw, &text); err != nil {
			return fieldsync.Quote{}, fmt.Errorf("pricelookup: decode price: %w", err)
		}
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return fieldsync.Quote{}, ErrMissingPrice
	}
	price, err := decimal.NewFromString(text)
	if err != nil {
		return fieldsync.Quote{}, fmt.Errorf("pricelookup: price %q is not a number", text)
	}
	if !quoted {
		text = price.String()
	}

	return fieldsync.Quote{Price: text, Quantity: decodeQuantity(parsed.Quantity)}, nil
}

// decodeQuantity accepts a whole number given as a JSON number or numeric
// string. Anything else yields nil.
func decodeQuantity(raw json.RawMessage) *int {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		if err := sonic.UnmarshalString(text, &text); err != nil {
			return nil
		}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil || !d.IsInteger() || !d.BigInt().IsInt64() {
		return nil
	}
	n := int(d.IntPart())
	return &n
}

var _ fieldsync.Lookup = (*Client)(nil)
