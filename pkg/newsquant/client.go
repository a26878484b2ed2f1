// Package newsquant is a Go SDK for the newsquant scan API.
package newsquant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds a single scan request made by a client built without
// WithHTTPClient.
const DefaultTimeout = 30 * time.Second

// Client provides a Go SDK for interacting with the scan endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a new scan API client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Scan issues GET /scan for q and returns the decoded items in response
// order. A non-200 status yields *RequestFailedError; network and decoding
// failures yield *TransportFailedError. An empty array is not an error.
func (c *Client) Scan(ctx context.Context, q Query) ([]Item, error) {
	u := c.baseURL + "/scan?" + q.Values().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportFailedError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportFailedError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &RequestFailedError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportFailedError{Err: fmt.Errorf("reading scan response: %w", err)}
	}
	return DecodeItems(body)
}

// DecodeItems parses a /scan response body. The body must be a JSON array;
// anything else is reported as *TransportFailedError.
func DecodeItems(body []byte) ([]Item, error) {
	if !gjson.ValidBytes(body) {
		return nil, &TransportFailedError{Err: ErrMalformedJSON}
	}
	if !gjson.ParseBytes(body).IsArray() {
		return nil, &TransportFailedError{Err: ErrNotArray}
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &TransportFailedError{Err: fmt.Errorf("decoding scan response: %w", err)}
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}
