package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/config"
	"github.com/nerrad567/gruenbeck-collector/internal/metric"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options from the collector config.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// statusPayload is published on the system status topic.
type statusPayload struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// samplePayload is the JSON body of a sample message.
type samplePayload struct {
	Plugin       string  `json:"plugin"`
	Type         string  `json:"type"`
	TypeInstance string  `json:"type_instance"`
	Value        float64 `json:"value"`
	Timestamp    string  `json:"timestamp"`
	CycleID      string  `json:"cycle_id,omitempty"`
}

// configureLWT makes the broker publish a retained offline status if the
// collector disconnects without Close.
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	opts.SetWill(Topics{}.SystemStatus(), string(buildStatusPayload("offline", clientID, "unexpected_disconnect")), 1, true)
}

func buildStatusPayload(status, clientID, reason string) []byte {
	// Marshalling a struct of strings cannot fail.
	b, _ := json.Marshal(statusPayload{ //nolint:errcheck // see above
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return b
}

// buildSamplePayload encodes s as the JSON sample message.
func buildSamplePayload(s metric.Sample) ([]byte, error) {
	b, err := json.Marshal(samplePayload{
		Plugin:       s.Plugin,
		Type:         s.Type,
		TypeInstance: s.TypeInstance,
		Value:        s.Value,
		Timestamp:    s.Time.UTC().Format(time.RFC3339),
		CycleID:      s.CycleID,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding sample: %w", err)
	}
	return b, nil
}
