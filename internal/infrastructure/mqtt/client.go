package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/hwlog/internal/infrastructure/config"
)

// Logger receives connection-loss warnings.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
}

// Client publishes run summaries to an MQTT broker.
//
// A Client lives for one hwlog command: Connect, one or two publishes,
// Close. It does not reconnect. Methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	mu     sync.RWMutex
	closed bool
	lost   error
	logger Logger
}

// Connect opens a session with the broker in cfg.
//
// Parameters:
//   - cfg: MQTT configuration
//
// Returns:
//   - *Client: Connected client
//   - error: ErrDisabled, or ErrConnectionFailed if the broker cannot be reached
func Connect(cfg config.MQTTConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	c := &Client{cfg: cfg}
	opts := buildClientOptions(cfg)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.connectionLost(err)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: no CONNACK from %s:%d after %v",
			ErrConnectionFailed, cfg.Broker.Host, cfg.Broker.Port, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return c, nil
}

func (c *Client) connectionLost(err error) {
	c.mu.Lock()
	c.lost = err
	logger := c.logger
	c.mu.Unlock()

	if logger != nil {
		logger.Warn("MQTT connection lost, run summary will not be published",
			"broker", c.cfg.Broker.Host, "error", err)
	}
}

// Close disconnects after in-flight publishes have had time to finish.
// It is safe to call on a nil or never-connected Client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}

	c.mu.Lock()
	already := c.closed
	c.closed = true
	c.mu.Unlock()

	if !already {
		c.client.Disconnect(defaultDisconnectQuiesce)
	}
	return nil
}

// HealthCheck reports ErrNotConnected once the session is closed or lost.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		c.mu.RLock()
		lost := c.lost
		c.mu.RUnlock()
		if lost != nil {
			return fmt.Errorf("%w: %w", ErrNotConnected, lost)
		}
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether publishes can be sent.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.lost == nil && c.client != nil && c.client.IsConnected()
}

// SetLogger sets the logger for connection-loss warnings.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}
