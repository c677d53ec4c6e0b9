package rpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every single request.
const DefaultTimeout = 10 * time.Second

// Client talks to the load-balanced JSON-RPC endpoint.
type Client struct {
	BaseURL    string
	HealthPath string
	HTTP       *http.Client
}

// NewClient creates a client whose requests time out after timeout (DefaultTimeout when zero).
func NewClient(baseURL, healthPath string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if healthPath == "" {
		healthPath = "/health"
	}
	return &Client{
		BaseURL:    baseURL,
		HealthPath: healthPath,
		HTTP: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// HealthURL joins the base URL and the health path.
func (c *Client) HealthURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.HealthPath, "/")
}

// Health fetches the health path and returns the trimmed body.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.HealthURL(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return strings.TrimSpace(string(body)), fmt.Errorf("health endpoint returned status: %s", resp.Status)
	}
	return strings.TrimSpace(string(body)), nil
}

// BlockNumber posts eth_blockNumber and returns the result field.
func (c *Client) BlockNumber(ctx context.Context) (string, error) {
	resp, err := c.post(ctx)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read rpc response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rpc endpoint returned status: %s", resp.Status)
	}
	return ParseResult(body)
}

// Send posts eth_blockNumber and returns only the HTTP status code.
func (c *Client) Send(ctx context.Context) (int, error) {
	resp, err := c.post(ctx)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) // Read body to ensure reuse
	return resp.StatusCode, nil
}

func (c *Client) post(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(BlockNumberPayload()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.HTTP.Do(req)
}
