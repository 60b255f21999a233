package mqtt

import (
	"encoding/json"
	"fmt"
)

// maxPayloadSize caps a single message at 1 MiB, the common broker default.
// A summary of a few hundred series stays far below it.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic and waits for the broker acknowledgement
// required by qos.
//
// Parameters:
//   - topic: Destination topic, e.g. Topics{}.RunSummary(id)
//   - payload: Message body; nil clears a retained message
//   - qos: 0, 1 or 2
//   - retained: Keep the message for later subscribers
//
// Returns:
//   - error: ErrInvalidTopic, ErrInvalidQoS, ErrNotConnected or ErrPublishFailed
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	switch {
	case topic == "":
		return ErrInvalidTopic
	case qos > maxQoS:
		return fmt.Errorf("%w: %d", ErrInvalidQoS, qos)
	case len(payload) > maxPayloadSize:
		return fmt.Errorf("%w: payload is %d bytes, limit %d", ErrPublishFailed, len(payload), maxPayloadSize)
	case !c.IsConnected():
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s not acknowledged after %v", ErrPublishFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}

// PublishRunSummary publishes s as retained JSON on Topics.RunSummary,
// using the configured QoS. Dashboards subscribing later still see the
// latest summary of every run.
func (c *Client) PublishRunSummary(s RunSummary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: encoding summary: %w", ErrPublishFailed, err)
	}
	return c.Publish(Topics{}.RunSummary(s.RunID), payload, byte(c.cfg.QoS), true)
}
