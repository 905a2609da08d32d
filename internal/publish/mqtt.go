package publish

import (
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/muurk/ookbridge/internal/logging"
	"go.uber.org/zap"
)

// DefaultMQTTClientID is the client id the bridge has always used.
const DefaultMQTTClientID = "NX6331_F007TP_ESP"

// MQTTConfig configures an MQTTPublisher.
type MQTTConfig struct {
	Broker   string // e.g. tcp://192.168.99.99:1883
	ClientID string
	Username string
	Password string
	QoS      byte
	Retain   bool

	// Timeout bounds both connecting and waiting for a publish to be
	// handed to the broker. Zero means 5 seconds.
	Timeout time.Duration
}

func (c MQTTConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 5 * time.Second
	}
	return c.Timeout
}

// ErrPublishTimeout is returned when the broker does not acknowledge a
// publish within the configured timeout.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// MQTTPublisher publishes to an MQTT broker. When the connection is down,
// the next Publish reconnects before sending.
type MQTTPublisher struct {
	cfg    MQTTConfig
	client mqtt.Client
	mu     sync.Mutex
}

// NewMQTTPublisher creates a publisher. It does not connect; call Connect or
// let the first Publish do it.
func NewMQTTPublisher(cfg MQTTConfig) *MQTTPublisher {
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultMQTTClientID
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetConnectTimeout(cfg.timeout())
	opts.SetAutoReconnect(false)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logging.Warn("MQTT connection lost",
			zap.String("broker", cfg.Broker),
			zap.Error(err),
		)
	})

	return newMQTTPublisher(cfg, mqtt.NewClient(opts))
}

func newMQTTPublisher(cfg MQTTConfig, client mqtt.Client) *MQTTPublisher {
	return &MQTTPublisher{cfg: cfg, client: client}
}

// Connect connects to the broker if not already connected.
func (p *MQTTPublisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectLocked()
}

func (p *MQTTPublisher) connectLocked() error {
	if p.client.IsConnected() {
		return nil
	}

	logging.Info("Connecting to MQTT broker",
		zap.String("broker", p.cfg.Broker),
		zap.String("client_id", p.cfg.ClientID),
	)

	token := p.client.Connect()
	if !token.WaitTimeout(p.cfg.timeout()) {
		return fmt.Errorf("connect to %s: timed out after %s", p.cfg.Broker, p.cfg.timeout())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s: %w", p.cfg.Broker, err)
	}

	logging.Info("Connected to MQTT broker", zap.String("broker", p.cfg.Broker))
	return nil
}

// Publish implements Publisher.
func (p *MQTTPublisher) Publish(topic, payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connectLocked(); err != nil {
		return err
	}

	token := p.client.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
	if !token.WaitTimeout(p.cfg.timeout()) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// Name implements Named.
func (p *MQTTPublisher) Name() string {
	return "mqtt"
}
