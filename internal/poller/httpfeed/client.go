// internal/poller/httpfeed/client.go
package httpfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tamzrod/vision-dashboard/internal/status"
)

// MaxBody caps a status payload. The device sends well under 100 bytes.
const MaxBody = 64 << 10

// Client implements poller.Fetcher over HTTP GET.
type Client struct {
	endpoint string
	http     *http.Client
}

// Config is minimal transport config.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("httpfeed: endpoint required")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("httpfeed: bad endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpfeed: endpoint scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("httpfeed: endpoint host required")
	}

	return &Client{
		endpoint: u.String(),
		http:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// FetchStatus performs one GET and decodes the payload.
//
// Transport errors and non-2xx responses are returned as-is.
// Payloads that are not a JSON object wrap status.ErrMalformed.
func (c *Client) FetchStatus(ctx context.Context) (status.Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return status.Sample{}, fmt.Errorf("httpfeed: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return status.Sample{}, fmt.Errorf("httpfeed: get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBody))
		return status.Sample{}, fmt.Errorf("httpfeed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBody+1))
	if err != nil {
		return status.Sample{}, fmt.Errorf("httpfeed: read body: %w", err)
	}
	if len(body) > MaxBody {
		return status.Sample{}, fmt.Errorf("%w: body exceeds %d bytes", status.ErrMalformed, MaxBody)
	}

	return status.Decode(body)
}

// Close releases idle keep-alive connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
