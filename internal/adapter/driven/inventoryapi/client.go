// Package inventoryapi implements the InventoryClient port against the
// back-office inventory REST API.
package inventoryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.InventoryClient = (*Client)(nil)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 16 << 20
)

// Client implements the driven.InventoryClient port over HTTP.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	token   string
	logger  *slog.Logger
}

// NewClient creates a new inventory API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (sleeps and retries when the API answers 429 with Retry-After)
func NewClient(baseURL, token string) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	httpClient := github_ratelimit.NewClient(cacheTransport)
	httpClient.Timeout = requestTimeout

	return NewClientWithHTTPClient(httpClient, baseURL, token)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL: %q is not absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	return &Client{
		http:    httpClient,
		baseURL: u,
		token:   token,
		logger:  slog.Default(),
	}, nil
}

// productJSON is the wire representation of a product. Quantity may arrive
// as a JSON number or string.
type productJSON struct {
	ID             json.RawMessage `json:"id"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku"`
	Quantity       json.RawMessage `json:"quantity"`
	ExpirationDate *string         `json:"expirationDate"`
	Notes          string          `json:"notes"`
	UpdatedAt      string          `json:"updatedAt"`
}

type movementJSON struct {
	ID          json.RawMessage `json:"id"`
	ProductID   json.RawMessage `json:"productId"`
	ProductName string          `json:"productName"`
	Delta       int             `json:"delta"`
	Reason      string          `json:"reason"`
	OccurredAt  string          `json:"occurredAt"`
}

// FetchProducts retrieves every product from GET /products.
func (c *Client) FetchProducts(ctx context.Context) ([]model.Product, error) {
	var raw []productJSON
	if err := c.getJSON(ctx, "products", nil, &raw); err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}

	products := make([]model.Product, 0, len(raw))
	for _, p := range raw {
		product, err := mapProduct(p)
		if err != nil {
			c.logger.Warn("skipping malformed product", "id", string(p.ID), "error", err)
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// FetchMovements retrieves stock movements from GET /stock-movements?since=.
func (c *Client) FetchMovements(ctx context.Context, since time.Time) ([]model.StockMovement, error) {
	query := url.Values{"since": []string{since.UTC().Format(time.RFC3339)}}

	var raw []movementJSON
	if err := c.getJSON(ctx, "stock-movements", query, &raw); err != nil {
		return nil, fmt.Errorf("fetching stock movements: %w", err)
	}

	movements := make([]model.StockMovement, 0, len(raw))
	for _, m := range raw {
		occurredAt, err := parseTimestamp(m.OccurredAt)
		if err != nil {
			c.logger.Warn("skipping malformed stock movement", "id", string(m.ID), "error", err)
			continue
		}
		movements = append(movements, model.StockMovement{
			ID:          scalarString(m.ID),
			ProductID:   scalarString(m.ProductID),
			ProductName: m.ProductName,
			Delta:       m.Delta,
			Reason:      m.Reason,
			OccurredAt:  occurredAt,
		})
	}
	return movements, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", u.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", u.Path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d: %s", u.Path, resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s response: %w", u.Path, err)
	}

	c.logger.Debug("inventory api request",
		"path", u.Path,
		"cached", resp.Header.Get(httpcache.XFromCache) == "1",
	)
	return nil
}

func mapProduct(p productJSON) (model.Product, error) {
	id := scalarString(p.ID)
	if id == "" {
		return model.Product{}, fmt.Errorf("missing id")
	}

	product := model.Product{
		ID:       id,
		Name:     p.Name,
		SKU:      p.SKU,
		Quantity: scalarString(p.Quantity),
		Notes:    p.Notes,
	}

	if p.ExpirationDate != nil && strings.TrimSpace(*p.ExpirationDate) != "" {
		t, err := parseTimestamp(*p.ExpirationDate)
		if err != nil {
			return model.Product{}, fmt.Errorf("expirationDate: %w", err)
		}
		product.ExpirationDate = &t
	}

	if p.UpdatedAt != "" {
		t, err := parseTimestamp(p.UpdatedAt)
		if err != nil {
			return model.Product{}, fmt.Errorf("updatedAt: %w", err)
		}
		product.UpdatedAt = t
	}

	return product, nil
}

// parseTimestamp accepts RFC 3339 timestamps and bare dates. Bare dates are
// taken as midnight UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}

// scalarString renders a JSON string or number as a plain string. null and
// absent values yield "".
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
