package tsdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nerrad567/hwlog/internal/infrastructure/config"
)

const (
	defaultHealthTimeout = 5 * time.Second
	defaultWriteTimeout  = 30 * time.Second
	defaultBatchSize     = 1000
	defaultMeasurement   = "hwlog"

	// maxErrorBody bounds how much of a rejected write's response is kept.
	maxErrorBody = 512
)

// Client exports grouped sensor series to VictoriaMetrics through its
// InfluxDB line protocol endpoint (/write).
//
// Batches are posted one after another; the first rejected batch stops
// the export. A Client is safe for concurrent use.
type Client struct {
	url         string
	httpClient  *http.Client
	batchSize   int
	measurement string
	closed      atomic.Bool
}

// Connect creates a client for cfg and probes GET /health.
//
// Parameters:
//   - ctx: Bounds the health probe
//   - cfg: TSDB configuration; zero batch size and empty measurement
//     fall back to 1000 and "hwlog"
//
// Returns:
//   - *Client: Client ready for WriteGrouping
//   - error: ErrDisabled, or ErrConnectionFailed if the probe fails
func Connect(ctx context.Context, cfg config.TSDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	c := &Client{
		url:         strings.TrimRight(cfg.URL, "/"),
		httpClient:  &http.Client{Timeout: defaultWriteTimeout},
		batchSize:   cfg.BatchSize,
		measurement: cfg.Measurement,
	}
	if c.batchSize <= 0 {
		c.batchSize = defaultBatchSize
	}
	if c.measurement == "" {
		c.measurement = defaultMeasurement
	}

	if err := c.probe(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, c.url, err)
	}
	return c, nil
}

// Close drops idle connections. Later writes return ErrNotConnected.
func (c *Client) Close() error {
	if c == nil || c.closed.Swap(true) {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

// HealthCheck probes GET /health again.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if err := c.probe(ctx); err != nil {
		return fmt.Errorf("tsdb health check: %w", err)
	}
	return nil
}

// IsConnected reports whether the client has not been closed.
func (c *Client) IsConnected() bool {
	return c != nil && c.httpClient != nil && !c.closed.Load()
}

func (c *Client) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultHealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Drain for connection reuse

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// post sends one batch of line protocol to /write. A rejected batch is
// reported with the start of the server's error message.
func (c *Client) post(ctx context.Context, lines []string) error {
	body := strings.Join(lines, "\n")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/write", bytes.NewBufferString(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Drain for connection reuse
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // Message is best effort
	if text := strings.TrimSpace(string(msg)); text != "" {
		return fmt.Errorf("%w: HTTP %d: %s", ErrWriteFailed, resp.StatusCode, text)
	}
	return fmt.Errorf("%w: HTTP %d", ErrWriteFailed, resp.StatusCode)
}
