package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/idilsaglam/items/internal/model"
)

// ItemsPath is the collection resource every call is made against.
const ItemsPath = "/api/items"

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Client talks to the items collection over HTTP.
// No auth, no retries, no pagination. Requests are bounded only by the
// caller's context unless WithTimeout is given.
type Client struct {
	baseURL string
	hc      *http.Client
}

type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client (tests use the httptest one).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout caps every request at d.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.hc
		hc.Timeout = d
		c.hc = &hc
	}
}

// New returns a Client rooted at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		hc:      &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// List fetches the full collection in server order.
func (c *Client) List(ctx context.Context) ([]model.Item, error) {
	resp, err := c.do(ctx, http.MethodGet, ItemsPath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var items []model.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Create posts a new item. The response body is drained and dropped.
func (c *Client) Create(ctx context.Context, in model.NewItem) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, ItemsPath, b)
	if err != nil {
		return err
	}
	drain(resp.Body)
	return nil
}

// Delete removes the item with the given id. The response body is dropped.
func (c *Client) Delete(ctx context.Context, id model.ID) error {
	if id == "" {
		return fmt.Errorf("delete: empty id")
	}
	resp, err := c.do(ctx, http.MethodDelete, ItemsPath+"/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return err
	}
	drain(resp.Body)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drain(resp.Body)
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	return resp, nil
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	_ = rc.Close()
}
