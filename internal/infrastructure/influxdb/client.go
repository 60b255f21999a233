package influxdb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/hwlog/internal/infrastructure/config"
)

const (
	defaultPingTimeout    = 5 * time.Second
	defaultRequestTimeout = 30 // seconds, per write request
	defaultBatchSize      = 1000
	defaultMeasurement    = "hwlog"
)

// Client exports grouped sensor series to an InfluxDB v2 bucket.
//
// Writes go through the blocking write API with second precision, which
// is the resolution of the relative time axis. A Client is safe for
// concurrent use.
type Client struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPIBlocking
	measurement string
	batchSize   int
	closed      atomic.Bool
}

// Connect creates a client for cfg and pings the server.
//
// Parameters:
//   - ctx: Bounds the ping
//   - cfg: InfluxDB configuration; zero batch size and empty measurement
//     fall back to 1000 and "hwlog"
//
// Returns:
//   - *Client: Client ready for WriteGrouping
//   - error: ErrDisabled, or ErrConnectionFailed if the ping fails
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	measurement := cfg.Measurement
	if measurement == "" {
		measurement = defaultMeasurement
	}

	opts := influxdb2.DefaultOptions().
		SetPrecision(time.Second).
		SetHTTPRequestTimeout(defaultRequestTimeout)
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, cfg.URL, err)
	}

	return &Client{
		client:      client,
		writeAPI:    client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement: measurement,
		batchSize:   batchSize,
	}, nil
}

func ping(ctx context.Context, client influxdb2.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	ok, err := client.Ping(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("server not ready")
	}
	return nil
}

// Close releases the HTTP client. Later writes return ErrNotConnected.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if !c.closed.Swap(true) {
		c.client.Close()
	}
	return nil
}

// HealthCheck pings the server again.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if err := ping(ctx, c.client); err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	return nil
}

// IsConnected reports whether the client has been connected and not closed.
func (c *Client) IsConnected() bool {
	return c != nil && c.client != nil && !c.closed.Load()
}
