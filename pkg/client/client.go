package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client provides HTTP client functionality to query a running nodecore server.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger // Optional logger for client operations
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 10 * time.Second,
	}
}

// New creates a new nodecore API client
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8080"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Client{
		baseURL: config.BaseURL,
		client:  &http.Client{Timeout: config.Timeout},
		logger:  config.Logger,
	}
}

// Health queries the server's health endpoint and returns the node state
// recorded at registration.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return hs, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return hs, fmt.Errorf("query %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return hs, err
	}
	if resp.StatusCode != http.StatusOK {
		var er ErrorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			return hs, fmt.Errorf("server error: %s", er.Error)
		}
		return hs, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.baseURL)
	}
	if err := json.Unmarshal(body, &hs); err != nil {
		return hs, fmt.Errorf("decode health response: %w", err)
	}
	return hs, nil
}
