package mqtt

import (
	"context"
	"fmt"

	"github.com/nerrad567/gruenbeck-collector/internal/metric"
)

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20

// Publish sends a message to the specified MQTT topic and waits for the
// broker acknowledgement (for QoS > 0).
//
// Parameters:
//   - topic: The topic to publish to
//   - payload: The message payload (max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// WriteSample publishes s as JSON on gruenbeck/<type>/<type_instance>
// with the configured QoS. Samples are not retained.
func (c *Client) WriteSample(_ context.Context, s metric.Sample) error {
	payload, err := buildSamplePayload(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return c.Publish(Topics{}.Sample(s.Type, s.TypeInstance), payload, byte(c.cfg.QoS), false)
}
