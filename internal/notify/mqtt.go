package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"carecircle-server/internal/config"
)

// QoS for alerts: at least once.
const alertQoS byte = 1

// Publisher is the broker side of MQTTNotifier.
type Publisher interface {
	Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error
}

// MQTTNotifier publishes alerts as JSON on a per-patient topic.
type MQTTNotifier struct {
	pub    Publisher
	prefix string
	logger *zap.Logger
}

func NewMQTTNotifier(pub Publisher, prefix string, logger *zap.Logger) *MQTTNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MQTTNotifier{pub: pub, prefix: prefix, logger: logger}
}

// Topic is <prefix>/patients/<patientID>/alerts.
func Topic(prefix, patientID string) string {
	return fmt.Sprintf("%s/patients/%s/alerts", prefix, patientID)
}

func (n *MQTTNotifier) NotifyCaregivers(ctx context.Context, a Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("notify: marshal alert: %w", err)
	}
	topic := Topic(n.prefix, a.PatientID)
	if err := n.pub.Publish(ctx, topic, alertQoS, false, payload); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	n.logger.Info("caregiver alert published",
		zap.String("topic", topic),
		zap.String("kind", string(a.Kind)),
		zap.Int("caregivers", len(a.CaregiverIDs)),
	)
	return nil
}

// Client wraps a paho connection.
type Client struct {
	client  mqtt.Client
	timeout time.Duration
}

// Dial connects to the broker in cfg.
func Dial(cfg config.MQTTConfig) (*Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &Client{client: client, timeout: cfg.PublishTimeout}, nil
}

var _ Publisher = (*Client)(nil)

// Publish waits for the broker acknowledgement until ctx ends or the
// client's publish timeout passes, whichever comes first.
func (c *Client) Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	token := c.client.Publish(topic, qos, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish to %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

// Close disconnects, waiting up to 250ms for in-flight messages.
func (c *Client) Close() {
	c.client.Disconnect(250)
}
