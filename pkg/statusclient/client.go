// Package statusclient is a small typed HTTP client for a healthcheckd
// status endpoint: a thin wrapper holding a connection handle plus one
// method per remote operation, each taking a context.
package statusclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kflynn/healthcheckd/internal/healthcheck"
)

// Client talks to one healthcheckd instance's /status endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client pointed at baseURL, e.g. "http://10.0.0.1:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Status fetches the current snapshot of every registered peer.
func (c *Client) Status(ctx context.Context) ([]healthcheck.PeerStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("building status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}

	var out []healthcheck.PeerStatus
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding status response: %w", err)
	}
	return out, nil
}

// Healthz checks the daemon's own liveness endpoint.
func (c *Client) Healthz(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("building healthz request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting healthz: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthz endpoint returned %d", resp.StatusCode)
	}
	return nil
}
