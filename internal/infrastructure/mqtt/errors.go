package mqtt

import "errors"

// Errors returned by the run summary publisher. Check them with errors.Is.
var (
	// ErrDisabled is returned by Connect when mqtt.enabled is false.
	ErrDisabled = errors.New("mqtt: summary publishing disabled")

	// ErrConnectionFailed means the broker refused or did not answer CONNECT.
	ErrConnectionFailed = errors.New("mqtt: broker unreachable")

	// ErrNotConnected is returned when publishing on a closed or lost session.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrPublishFailed wraps oversized payloads, encode errors and broker timeouts.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrInvalidQoS rejects QoS levels other than 0, 1 and 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level")

	// ErrInvalidTopic rejects an empty topic.
	ErrInvalidTopic = errors.New("mqtt: empty topic")
)
